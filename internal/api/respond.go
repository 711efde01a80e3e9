package api

import (
	"context"
	"errors"
	"net/http"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/service"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/view"
	"villagemart-admin/internal/workspace"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ctxSession   = "session"
	ctxWorkspace = "workspace"
)

func currentSession(c *gin.Context) *session.Session {
	return c.MustGet(ctxSession).(*session.Session)
}

func currentWorkspace(c *gin.Context) *workspace.Workspace {
	return c.MustGet(ctxWorkspace).(*workspace.Workspace)
}

func forceRefresh(c *gin.Context) bool {
	v := c.Query("refresh")
	return v == "1" || v == "true"
}

// statusFor maps an error to the HTTP status the console answers with.
func statusFor(err error) int {
	if _, ok := form.AsFieldErrors(err); ok {
		return http.StatusUnprocessableEntity
	}
	switch {
	case errors.Is(err, service.ErrInvalid):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotLoaded):
		return http.StatusNotFound
	case errors.Is(err, service.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, table.ErrStale):
		return http.StatusConflict
	}

	var apiErr *apiclient.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError
	}
	switch apiErr.Kind {
	case apiclient.KindUnauthorized:
		return http.StatusUnauthorized
	case apiclient.KindForbidden:
		return http.StatusForbidden
	case apiclient.KindNotFound:
		return http.StatusNotFound
	case apiclient.KindTimeout:
		return http.StatusGatewayTimeout
	case apiclient.KindHTTP:
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
	}
	return http.StatusBadGateway
}

// expired handles a 401 from the API: the session is cleared, its
// workspace discarded and the operator sent to the login route.
func (h *Handler) expired(c *gin.Context, err error) bool {
	if !apiclient.IsUnauthorized(err) {
		return false
	}
	if v, ok := c.Get(ctxSession); ok {
		sess := v.(*session.Session)
		h.svc.Auth.Expire(c.Request.Context(), sess)
		h.workspaces.Close(sess.ID)
	}
	h.clearCookie(c)
	c.Redirect(http.StatusFound, h.opts.LoginPath)
	c.Abort()
	return true
}

// fail writes err, unless it was a 401, which redirects.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	if h.expired(c, err) {
		return
	}
	if fe, ok := form.AsFieldErrors(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"errors": fe,
		})
		return
	}

	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error(fallback, zap.Error(err), zap.String("path", c.FullPath()))
	}
	c.JSON(status, gin.H{
		"error":   apiclient.MessageOr(err, fallback),
		"details": err.Error(),
	})
}

// submit runs a modal save. Validation failures answer 422 without calling
// the API; save errors keep the modal open with the API's message.
func submit[T any](h *Handler, c *gin.Context, name string, draft T, okStatus int, save func(ctx context.Context, d T) (any, error)) {
	modal := form.NewModal(name, draft)

	var result any
	err := modal.Submit(c.Request.Context(), func(ctx context.Context, d T) error {
		var err error
		result, err = save(ctx, d)
		return err
	})
	if err == nil {
		c.JSON(okStatus, gin.H{"data": result})
		return
	}
	if h.expired(c, err) {
		return
	}
	if modal.Errors != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":  "Validation failed",
			"errors": modal.Errors,
			"modal":  modal,
		})
		return
	}
	c.JSON(statusFor(err), gin.H{
		"error":   modal.Err,
		"details": err.Error(),
		"modal":   modal,
	})
}

// bind decodes the JSON body into draft, answering 400 when it cannot.
func bind(c *gin.Context, draft any) bool {
	if err := c.ShouldBindJSON(draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

// page renders the cached list after a load. A failed load still renders
// when there is something to show: sample data or the previous list. An
// overtaken load with nothing cached answers 409.
func page[T table.Entity](h *Handler, c *gin.Context, ctrl *table.Controller[T], loadErr error, filters []string) (table.Page[T], bool) {
	if loadErr != nil && !errors.Is(loadErr, table.ErrStale) {
		if h.expired(c, loadErr) {
			return table.Page[T]{}, false
		}
	}

	p := ctrl.Snapshot(view.ParseQuery(c.Request.URL.Query(), filters...))
	if errors.Is(loadErr, table.ErrStale) && p.LoadedAt.IsZero() {
		c.JSON(statusFor(loadErr), gin.H{
			"error":   "The list is still loading. Please try again.",
			"details": loadErr.Error(),
		})
		return p, false
	}
	if loadErr != nil && !errors.Is(loadErr, table.ErrStale) && !p.Fallback && p.Total == 0 {
		c.JSON(statusFor(loadErr), gin.H{
			"error":   p.Banner,
			"details": loadErr.Error(),
		})
		return p, false
	}
	return p, true
}
