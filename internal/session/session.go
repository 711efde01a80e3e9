// Package session replaces the browser-held token/user pair with an explicit
// session object. A session is created at sign-in, loaded on every admin
// request, handed to every backend call, and cleared on logout or on the
// first 401 from the storefront API.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"villagemart-admin/internal/models"
	"villagemart-admin/internal/util"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned by a Store when no session exists for an id.
	ErrNotFound = errors.New("session not found")
	// ErrNoSession means the request carries no usable credential.
	ErrNoSession = errors.New("no active session")
	// ErrRoleMismatch means the stored user lacks the required role.
	ErrRoleMismatch = errors.New("user role not permitted")
)

// Clear reasons, used as metric labels.
const (
	ReasonLogout       = "logout"
	ReasonUnauthorized = "unauthorized"
	ReasonRole         = "role_mismatch"
	ReasonIncomplete   = "incomplete"
)

// Session is the credential the console holds for one signed-in operator.
type Session struct {
	ID        string           `json:"id"`
	Token     string           `json:"token"`
	User      models.AdminUser `json:"user"`
	CreatedAt time.Time        `json:"createdAt"`
}

// Complete reports whether both halves of the credential are present.
func (s *Session) Complete() bool {
	return s != nil && s.Token != "" && (s.User.ID != "" || s.User.Email != "")
}

// Store persists sessions.
type Store interface {
	Save(ctx context.Context, s *Session, ttl time.Duration) error
	Load(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Manager owns the session lifecycle.
type Manager struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{
		store:  store,
		ttl:    ttl,
		logger: util.Named("session"),
	}
}

// Create stores a new session for a freshly signed-in user.
func (m *Manager) Create(ctx context.Context, token string, user models.AdminUser) (*Session, error) {
	s := &Session{
		ID:        uuid.New().String(),
		Token:     token,
		User:      user,
		CreatedAt: time.Now().UTC(),
	}
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	util.SessionsCreatedTotal.Inc()
	m.logger.Info("Session created", zap.String("user", user.Email), zap.String("role", user.Role))
	return s, nil
}

// Load returns the stored session or ErrNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return m.store.Load(ctx, id)
}

// Clear removes a session. Clearing an unknown id is not an error.
func (m *Manager) Clear(ctx context.Context, id, reason string) error {
	if id == "" {
		return nil
	}
	if err := m.store.Delete(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	util.SessionsClearedTotal.WithLabelValues(reason).Inc()
	m.logger.Info("Session cleared", zap.String("reason", reason))
	return nil
}

// UpdateUser replaces the stored user, e.g. after a profile edit.
func (m *Manager) UpdateUser(ctx context.Context, id string, user models.AdminUser) (*Session, error) {
	s, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role == "" {
		user.Role = s.User.Role
	}
	if user.ID == "" {
		user.ID = s.User.ID
	}
	s.User = user
	if err := m.store.Save(ctx, s, m.ttl); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return s, nil
}
