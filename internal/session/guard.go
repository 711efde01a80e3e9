package session

import (
	"context"
	"errors"
)

// Guard admits only sessions whose user holds the required role.
type Guard struct {
	manager *Manager
	role    string
}

func NewGuard(manager *Manager, requiredRole string) *Guard {
	return &Guard{manager: manager, role: requiredRole}
}

// Check loads the session for id. A missing or incomplete credential yields
// ErrNoSession; a wrong role yields ErrRoleMismatch. In both failure cases any
// stored session is cleared before returning.
func (g *Guard) Check(ctx context.Context, id string) (*Session, error) {
	s, err := g.manager.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}

	if !s.Complete() {
		_ = g.manager.Clear(ctx, id, ReasonIncomplete)
		return nil, ErrNoSession
	}

	if g.role != "" && s.User.Role != g.role {
		_ = g.manager.Clear(ctx, id, ReasonRole)
		return nil, ErrRoleMismatch
	}

	return s, nil
}
