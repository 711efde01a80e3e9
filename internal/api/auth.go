package api

import (
	"errors"
	"net/http"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/service"
	"villagemart-admin/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// requireSession admits requests whose cookie names a complete session with
// the admin role. Everything else is sent to the login route.
func (h *Handler) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, _ := c.Cookie(h.opts.CookieName)

		sess, err := h.guard.Check(c.Request.Context(), id)
		if err != nil {
			if id != "" {
				h.workspaces.Close(id)
			}
			h.clearCookie(c)
			if errors.Is(err, session.ErrNoSession) || errors.Is(err, session.ErrRoleMismatch) {
				c.Redirect(http.StatusFound, h.opts.LoginPath)
				c.Abort()
				return
			}
			h.logger.Error("Failed to load session", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":   "Failed to load session",
				"details": err.Error(),
			})
			return
		}

		c.Set(ctxSession, sess)
		c.Set(ctxWorkspace, h.workspaces.Get(sess.ID))
		c.Next()
	}
}

func (h *Handler) setCookie(c *gin.Context, id string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, id, int(h.opts.SessionTTL.Seconds()), "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) clearCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.opts.CookieName, "", -1, "/", "", h.opts.CookieSecure, true)
}

func (h *Handler) loginPage(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"login":   true,
		"message": "Sign in with an administrator account",
	})
}

// login signs in through the API and sets the session cookie.
func (h *Handler) login(c *gin.Context) {
	var draft form.LoginDraft
	if !bind(c, &draft) {
		return
	}
	if err := form.Validate("login", &draft); err != nil {
		h.fail(c, err, "Login failed")
		return
	}

	sess, err := h.svc.Auth.Login(c.Request.Context(), draft)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAccessDenied):
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied. Admin privileges required."})
		case apiclient.IsUnauthorized(err):
			c.JSON(http.StatusUnauthorized, gin.H{"error": apiclient.MessageOr(err, "Login failed")})
		default:
			c.JSON(statusFor(err), gin.H{
				"error":   apiclient.MessageOr(err, "Login failed"),
				"details": err.Error(),
			})
		}
		return
	}

	h.setCookie(c, sess.ID)
	c.JSON(http.StatusOK, gin.H{"user": sess.User})
}

// logout clears the session and its workspace, then redirects to login.
func (h *Handler) logout(c *gin.Context) {
	id, _ := c.Cookie(h.opts.CookieName)
	if id != "" {
		sess, err := h.sessions.Load(c.Request.Context(), id)
		if err == nil {
			if err := h.svc.Auth.Logout(c.Request.Context(), sess); err != nil {
				h.logger.Error("Failed to clear session", zap.Error(err))
			}
		}
		h.workspaces.Close(id)
	}
	h.clearCookie(c)
	c.Redirect(http.StatusFound, h.opts.LoginPath)
}

func (h *Handler) me(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user": currentSession(c).User})
}
