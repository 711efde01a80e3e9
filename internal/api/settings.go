package api

import (
	"context"
	"net/http"
	"strconv"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/store"
	"villagemart-admin/internal/worker"
	"villagemart-admin/internal/workspace"

	"github.com/gin-gonic/gin"
)

func (h *Handler) updateProfile(c *gin.Context) {
	var draft form.ProfileDraft
	if !bind(c, &draft) {
		return
	}
	sess := currentSession(c)
	submit(h, c, "profile", draft, http.StatusOK, func(ctx context.Context, d form.ProfileDraft) (any, error) {
		updated, err := h.svc.Settings.UpdateProfile(ctx, sess, d)
		if err != nil {
			return nil, err
		}
		return updated.User, nil
	})
}

func (h *Handler) changePassword(c *gin.Context) {
	var draft form.PasswordDraft
	if !bind(c, &draft) {
		return
	}
	sess := currentSession(c)
	submit(h, c, "password", draft, http.StatusOK, func(ctx context.Context, d form.PasswordDraft) (any, error) {
		if err := h.svc.Settings.ChangePassword(ctx, sess, d); err != nil {
			return nil, err
		}
		return gin.H{"message": "Password updated successfully"}, nil
	})
}

func (h *Handler) getAppearance(c *gin.Context) {
	a, err := h.svc.Settings.Appearance(c.Request.Context(), currentSession(c))
	if err != nil {
		h.fail(c, err, "Failed to load appearance settings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": a})
}

func (h *Handler) updateAppearance(c *gin.Context) {
	var draft form.AppearanceDraft
	if !bind(c, &draft) {
		return
	}
	sess := currentSession(c)
	submit(h, c, "appearance", draft, http.StatusOK, func(ctx context.Context, d form.AppearanceDraft) (any, error) {
		return h.svc.Settings.UpdateAppearance(ctx, sess, d)
	})
}

// dashboard refreshes synchronously on first view, then leaves the periodic
// refresh to the workspace poller.
func (h *Handler) dashboard(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)

	var err error
	if !ws.Dashboard.Loaded() || forceRefresh(c) {
		err = h.svc.Dashboard.Refresh(c.Request.Context(), sess, ws.Dashboard)
		if h.expired(c, err) {
			return
		}
	}
	ws.StartDashboard(h.opts.PollInterval, h.pollDashboard(sess, ws))

	if err != nil && !ws.Dashboard.Loaded() {
		c.JSON(statusFor(err), gin.H{
			"error":   apiclient.UserMessage(err),
			"details": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, ws.Dashboard.Snapshot())
}

// refreshDashboard queues an immediate refresh, e.g. when the operator
// returns to the tab.
func (h *Handler) refreshDashboard(c *gin.Context) {
	sess, ws := currentSession(c), currentWorkspace(c)
	p := ws.StartDashboard(h.opts.PollInterval, h.pollDashboard(sess, ws))
	queued := p.Trigger()
	c.JSON(http.StatusAccepted, gin.H{
		"queued":    queued,
		"dashboard": ws.Dashboard.Snapshot(),
	})
}

// pollDashboard is the background refresh. A 401 clears the session and
// stops polling; the next request is then sent to login.
func (h *Handler) pollDashboard(sess *session.Session, ws *workspace.Workspace) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		err := h.svc.Dashboard.Refresh(ctx, sess, ws.Dashboard)
		if apiclient.IsUnauthorized(err) {
			h.svc.Auth.Expire(ctx, sess)
			return worker.ErrStop
		}
		return err
	}
}

// activity lists recent audit entries, optionally for one entity.
func (h *Handler) activity(c *gin.Context) {
	if h.opts.Activity == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Activity log is not configured"})
		return
	}

	limit := store.DefaultActionLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit"})
			return
		}
		limit = n
	}

	ctx := c.Request.Context()
	resource, id := c.Query("resource"), c.Query("id")

	var (
		actions []models.AdminAction
		err     error
	)
	if resource != "" && id != "" {
		actions, err = h.opts.Activity.ListEntityActions(ctx, resource, id, limit)
	} else {
		actions, err = h.opts.Activity.ListRecentActions(ctx, limit)
	}
	if err != nil {
		h.fail(c, err, "Failed to load activity")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": actions})
}
