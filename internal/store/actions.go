package store

import (
	"context"
	"fmt"

	"villagemart-admin/internal/models"
)

// DefaultActionLimit caps activity listings when the caller passes no limit.
const DefaultActionLimit = 50

// InsertAdminAction records one console mutation. Replayed events with the
// same event id are ignored.
func (s *Store) InsertAdminAction(ctx context.Context, action *models.AdminAction) error {
	query := `
		INSERT INTO admin_actions (event_id, actor_id, actor_email, resource, entity_id, action, detail, created_at)
		VALUES (:event_id, :actor_id, :actor_email, :resource, :entity_id, :action, :detail, :created_at)
		ON CONFLICT (event_id) DO NOTHING`

	if _, err := s.db.NamedExecContext(ctx, query, action); err != nil {
		return fmt.Errorf("failed to insert admin action: %w", err)
	}
	return nil
}

// ListRecentActions returns the newest actions first.
func (s *Store) ListRecentActions(ctx context.Context, limit int) ([]models.AdminAction, error) {
	if limit <= 0 {
		limit = DefaultActionLimit
	}
	actions := []models.AdminAction{}
	err := s.db.SelectContext(ctx, &actions,
		"SELECT * FROM admin_actions ORDER BY created_at DESC, id DESC LIMIT $1", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list admin actions: %w", err)
	}
	return actions, nil
}

// ListEntityActions returns the history of one entity, newest first.
func (s *Store) ListEntityActions(ctx context.Context, resource, entityID string, limit int) ([]models.AdminAction, error) {
	if limit <= 0 {
		limit = DefaultActionLimit
	}
	actions := []models.AdminAction{}
	err := s.db.SelectContext(ctx, &actions,
		`SELECT * FROM admin_actions
		 WHERE resource = $1 AND entity_id = $2
		 ORDER BY created_at DESC, id DESC LIMIT $3`, resource, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list actions for %s %s: %w", resource, entityID, err)
	}
	return actions, nil
}
