package service

import (
	"context"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/session"
)

// SettingsService edits the signed-in operator's own account and the console appearance.
type SettingsService struct {
	api      *apiclient.Client
	sessions *session.Manager
	audit    *Auditor
}

func NewSettingsService(api *apiclient.Client, sessions *session.Manager, audit *Auditor) *SettingsService {
	return &SettingsService{api: api, sessions: sessions, audit: audit}
}

// UpdateProfile patches the profile and writes the result back into the session.
func (s *SettingsService) UpdateProfile(ctx context.Context, sess *session.Session, draft form.ProfileDraft) (*session.Session, error) {
	var user models.AdminUser
	if err := s.api.Patch(ctx, sess, "/admin/profile", draft, &user); err != nil {
		return nil, err
	}
	if user.Email == "" {
		user = sess.User
		user.FirstName = draft.FirstName
		user.LastName = draft.LastName
		user.Email = draft.Email
		user.Phone = draft.Phone
	}

	updated, err := s.sessions.UpdateUser(ctx, sess.ID, user)
	if err != nil {
		return nil, err
	}
	s.audit.Record(ctx, sess, "profile", updated.User.ID, models.ActionUpdate, updated.User.Email)
	return updated, nil
}

// ChangePassword sends PATCH /admin/change-password. Only the current and
// new password are sent.
func (s *SettingsService) ChangePassword(ctx context.Context, sess *session.Session, draft form.PasswordDraft) error {
	body := map[string]string{
		"currentPassword": draft.CurrentPassword,
		"newPassword":     draft.NewPassword,
	}
	if err := s.api.Patch(ctx, sess, "/admin/change-password", body, nil); err != nil {
		return err
	}
	s.audit.Record(ctx, sess, "profile", sess.User.ID, models.ActionUpdate, "password")
	return nil
}

func (s *SettingsService) Appearance(ctx context.Context, sess *session.Session) (models.Appearance, error) {
	var a models.Appearance
	err := s.api.Get(ctx, sess, "/admin/settings/appearance", &a)
	return a, err
}

func (s *SettingsService) UpdateAppearance(ctx context.Context, sess *session.Session, draft form.AppearanceDraft) (models.Appearance, error) {
	want := draft.Appearance()
	var got models.Appearance
	if err := s.api.Patch(ctx, sess, "/admin/settings/appearance", want, &got); err != nil {
		return models.Appearance{}, err
	}
	if got.Theme == "" {
		got = want
	}
	s.audit.Record(ctx, sess, "settings", "appearance", models.ActionUpdate, got.Theme)
	return got, nil
}
