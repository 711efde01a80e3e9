// Package service implements one page service per admin resource on top of
// the API client and the shared table controller.
package service

import (
	"context"
	"net/url"
	"time"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TableConfig is shared by every list page.
type TableConfig struct {
	Timeout        time.Duration
	SampleFallback bool
}

func fallback[T any](cfg TableConfig, sample func() []T) []T {
	if !cfg.SampleFallback {
		return nil
	}
	return sample()
}

// ActionRecorder persists audit rows.
type ActionRecorder interface {
	InsertAdminAction(ctx context.Context, action *models.AdminAction) error
}

// ActionPublisher forwards audit events to other systems.
type ActionPublisher interface {
	PublishAdminAction(ctx context.Context, event *models.AdminActionEvent) error
}

// Auditor records successful console mutations. Both sinks are optional and
// failures never fail the mutation itself.
type Auditor struct {
	recorder  ActionRecorder
	publisher ActionPublisher
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditor creates an auditor. Pass nil for a sink that is not configured.
func NewAuditor(recorder ActionRecorder, publisher ActionPublisher) *Auditor {
	return &Auditor{
		recorder:  recorder,
		publisher: publisher,
		logger:    util.Named("audit"),
		now:       time.Now,
	}
}

// Record writes one action to every configured sink.
func (a *Auditor) Record(ctx context.Context, sess *session.Session, resource, entityID, action, detail string) {
	if a == nil || (a.recorder == nil && a.publisher == nil) {
		return
	}

	event := &models.AdminActionEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: action,
			Timestamp: a.now(),
		},
		Resource: resource,
		EntityID: entityID,
		Action:   action,
		Detail:   detail,
	}
	if sess != nil {
		event.ActorID = sess.User.ID
		event.ActorEmail = sess.User.Email
	}

	if a.recorder != nil {
		row := &models.AdminAction{
			EventID:    event.EventID,
			ActorID:    event.ActorID,
			ActorEmail: event.ActorEmail,
			Resource:   resource,
			EntityID:   entityID,
			Action:     action,
			Detail:     detail,
			CreatedAt:  event.Timestamp,
		}
		if err := a.recorder.InsertAdminAction(ctx, row); err != nil {
			util.AuditEventsFailedTotal.WithLabelValues("store").Inc()
			a.logger.Error("Failed to record admin action", zap.String("event_id", event.EventID), zap.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.PublishAdminAction(ctx, event); err != nil {
			util.AuditEventsFailedTotal.WithLabelValues("kafka").Inc()
			a.logger.Error("Failed to publish admin action", zap.String("event_id", event.EventID), zap.Error(err))
		}
	}
}

func escape(id string) string {
	return url.PathEscape(id)
}

// loadOrEnsure reloads when force is set, otherwise loads only if nothing is cached.
func loadOrEnsure[T table.Entity](ctx context.Context, c *table.Controller[T], key string, force bool, fetch table.Fetch[T]) error {
	if force {
		return c.Load(ctx, key, fetch)
	}
	return c.Ensure(ctx, key, fetch)
}

// listOf fetches a list endpoint.
func listOf[T any](api *apiclient.Client, sess *session.Session, path string) table.Fetch[T] {
	return func(ctx context.Context) ([]T, error) {
		out := []T{}
		if err := api.Get(ctx, sess, path, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}
