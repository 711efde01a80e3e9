package service

import (
	"context"
	"errors"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/util"

	"go.uber.org/zap"
)

// ErrAccessDenied is returned when valid credentials belong to a non-admin user.
var ErrAccessDenied = errors.New("access denied: admin privileges required")

// AuthService signs operators in and out.
type AuthService struct {
	api      *apiclient.Client
	sessions *session.Manager
	role     string
	audit    *Auditor
	logger   *zap.Logger
}

func NewAuthService(api *apiclient.Client, sessions *session.Manager, requiredRole string, audit *Auditor) *AuthService {
	return &AuthService{
		api:      api,
		sessions: sessions,
		role:     requiredRole,
		audit:    audit,
		logger:   util.Named("auth"),
	}
}

// Login exchanges credentials for a token and opens a session. Users without
// the required role are refused before any session is stored.
func (s *AuthService) Login(ctx context.Context, draft form.LoginDraft) (*session.Session, error) {
	resp, err := s.api.Signin(ctx, draft.Email, draft.Password)
	if err != nil {
		return nil, err
	}
	if s.role != "" && resp.User.Role != s.role {
		s.logger.Warn("Sign-in refused", zap.String("user", resp.User.Email), zap.String("role", resp.User.Role))
		return nil, ErrAccessDenied
	}

	sess, err := s.sessions.Create(ctx, resp.Token, resp.User)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, sess, "auth", sess.User.ID, models.ActionSignIn, sess.User.Email)
	return sess, nil
}

// Logout clears the session. A nil session is a no-op.
func (s *AuthService) Logout(ctx context.Context, sess *session.Session) error {
	if sess == nil {
		return nil
	}
	if err := s.sessions.Clear(ctx, sess.ID, session.ReasonLogout); err != nil {
		return err
	}
	s.audit.Record(ctx, sess, "auth", sess.User.ID, models.ActionSignOut, sess.User.Email)
	return nil
}

// Expire clears a session after the API rejected its token.
func (s *AuthService) Expire(ctx context.Context, sess *session.Session) {
	if sess == nil {
		return
	}
	if err := s.sessions.Clear(ctx, sess.ID, session.ReasonUnauthorized); err != nil {
		s.logger.Error("Failed to clear expired session", zap.Error(err))
	}
}
