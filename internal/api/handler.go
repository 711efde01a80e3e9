package api

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"time"

	"villagemart-admin/internal/models"
	"villagemart-admin/internal/service"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/util"
	"villagemart-admin/internal/workspace"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ActivityReader lists recorded admin actions.
type ActivityReader interface {
	ListRecentActions(ctx context.Context, limit int) ([]models.AdminAction, error)
	ListEntityActions(ctx context.Context, resource, entityID string, limit int) ([]models.AdminAction, error)
}

// Services groups the per-resource services the handler drives.
type Services struct {
	Auth       *service.AuthService
	Products   *service.ProductService
	Categories *service.CategoryService
	Orders     *service.OrderService
	Customers  *service.CustomerService
	Inventory  *service.InventoryService
	Settings   *service.SettingsService
	Dashboard  *service.DashboardService
}

// Options configure the HTTP surface.
type Options struct {
	CookieName   string
	CookieSecure bool
	SessionTTL   time.Duration
	LoginPath    string
	PollInterval time.Duration
	// Activity is nil when no audit store is configured.
	Activity ActivityReader
	Checks   map[string]Pinger
}

// Handler contains HTTP handlers
type Handler struct {
	svc        Services
	sessions   *session.Manager
	guard      *session.Guard
	workspaces *workspace.Manager
	opts       Options
	logger     *zap.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(svc Services, sessions *session.Manager, guard *session.Guard, workspaces *workspace.Manager, opts Options) *Handler {
	if opts.LoginPath == "" {
		opts.LoginPath = "/login"
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 5 * time.Minute
	}
	return &Handler{
		svc:        svc,
		sessions:   sessions,
		guard:      guard,
		workspaces: workspaces,
		opts:       opts,
		logger:     util.Named("api"),
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/login", h.loginPage)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)

	admin := router.Group("/admin", h.requireSession())
	{
		admin.GET("/me", h.me)

		admin.GET("/dashboard", h.dashboard)
		admin.POST("/dashboard/refresh", h.refreshDashboard)

		admin.GET("/products", h.listProducts)
		admin.POST("/products", h.createProduct)
		admin.POST("/products/upload", h.uploadProductImage)
		admin.PATCH("/products/:id", h.updateProduct)
		admin.DELETE("/products/:id", h.deleteProduct)
		admin.POST("/products/:id/toggle", h.toggleProduct)

		admin.GET("/categories", h.listCategories)
		admin.POST("/categories", h.createCategory)
		admin.PATCH("/categories/:id", h.updateCategory)
		admin.DELETE("/categories/:id", h.deleteCategory)

		admin.GET("/orders", h.listOrders)
		admin.GET("/orders/:id", h.getOrder)
		admin.PATCH("/orders/:id/status", h.updateOrderStatus)
		admin.PATCH("/orders/:id/payment", h.updateOrderPayment)

		admin.GET("/customers", h.listCustomers)
		admin.POST("/customers", h.createCustomer)
		admin.PATCH("/customers/:id", h.updateCustomer)
		admin.DELETE("/customers/:id", h.deleteCustomer)

		admin.GET("/inventory", h.listInventory)
		admin.POST("/inventory/:productId/adjust", h.adjustStock)

		admin.PATCH("/profile", h.updateProfile)
		admin.PATCH("/change-password", h.changePassword)
		admin.GET("/settings/appearance", h.getAppearance)
		admin.PATCH("/settings/appearance", h.updateAppearance)

		admin.GET("/activity", h.activity)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck pings every configured dependency.
func (h *Handler) readinessCheck(c *gin.Context) {
	names := make([]string, 0, len(h.opts.Checks))
	for name := range h.opts.Checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		err := h.opts.Checks[name].Ping(ctx)
		cancel()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "not ready",
				"failed":  name,
				"details": err.Error(),
				"time":    time.Now().Unix(),
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
