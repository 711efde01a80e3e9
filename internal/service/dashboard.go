package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/sample"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RecentOrderLimit is how many orders the dashboard lists.
const RecentOrderLimit = 5

// Dashboard refresh sources.
const (
	SourceStats     = "stats"
	SourceAggregate = "aggregate"
	SourceSample    = "sample"
)

// DashboardState is the last dashboard the operator was shown.
type DashboardState struct {
	mu       sync.Mutex
	stats    models.DashboardStats
	source   string
	banner   string
	loadedAt time.Time
}

// DashboardView is what the dashboard endpoint renders.
type DashboardView struct {
	Stats    models.DashboardStats `json:"stats"`
	Source   string                `json:"source,omitempty"`
	Banner   string                `json:"banner,omitempty"`
	LoadedAt time.Time             `json:"loadedAt"`
}

func (d *DashboardState) Snapshot() DashboardView {
	d.mu.Lock()
	defer d.mu.Unlock()
	stats := d.stats
	stats.RecentOrders = make([]models.RecentOrder, len(d.stats.RecentOrders))
	copy(stats.RecentOrders, d.stats.RecentOrders)
	return DashboardView{Stats: stats, Source: d.source, Banner: d.banner, LoadedAt: d.loadedAt}
}

// Loaded reports whether any refresh has succeeded yet.
func (d *DashboardState) Loaded() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return !d.loadedAt.IsZero()
}

func (d *DashboardState) set(stats models.DashboardStats, source, banner string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if stats.RecentOrders == nil {
		stats.RecentOrders = []models.RecentOrder{}
	}
	d.stats = stats
	d.source = source
	d.banner = banner
	d.loadedAt = time.Now()
}

func (d *DashboardState) setBanner(banner string) {
	d.mu.Lock()
	d.banner = banner
	d.mu.Unlock()
}

// DashboardService computes the overview cards.
type DashboardService struct {
	api    *apiclient.Client
	cfg    TableConfig
	logger *zap.Logger
}

func NewDashboardService(api *apiclient.Client, cfg TableConfig) *DashboardService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = table.DefaultTimeout
	}
	return &DashboardService{api: api, cfg: cfg, logger: util.Named("dashboard")}
}

// Refresh reads GET /admin/stats. When that fails for any reason other than
// a 401 the figures are aggregated from the orders, customers and products
// lists instead, and failing that from sample data if enabled.
func (s *DashboardService) Refresh(ctx context.Context, sess *session.Session, state *DashboardState) (err error) {
	ctx, span := util.StartSpan(ctx, "dashboard.Refresh")
	defer func() { util.EndSpan(span, err) }()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	var stats models.DashboardStats
	statsErr := s.api.Get(ctx, sess, "/admin/stats", &stats)
	if statsErr == nil {
		util.DashboardRefreshTotal.WithLabelValues(SourceStats).Inc()
		state.set(stats, SourceStats, "")
		return nil
	}
	if apiclient.IsUnauthorized(statsErr) {
		return statsErr
	}

	s.logger.Info("Stats endpoint unavailable, aggregating", zap.Error(statsErr))
	stats, aggErr := s.aggregate(ctx, sess)
	if aggErr == nil {
		util.DashboardRefreshTotal.WithLabelValues(SourceAggregate).Inc()
		state.set(stats, SourceAggregate, "")
		return nil
	}
	if apiclient.IsUnauthorized(aggErr) {
		return aggErr
	}

	msg := apiclient.UserMessage(aggErr)
	if s.cfg.SampleFallback {
		util.DashboardRefreshTotal.WithLabelValues(SourceSample).Inc()
		state.set(Aggregate(sample.Orders(), len(sample.Customers()), len(sample.Products())), SourceSample, msg+table.FallbackSuffix)
		s.logger.Warn("Dashboard aggregation failed, showing sample data", zap.Error(aggErr))
		return aggErr
	}
	state.setBanner(msg)
	return aggErr
}

func (s *DashboardService) aggregate(ctx context.Context, sess *session.Session) (models.DashboardStats, error) {
	var (
		orders       []models.Order
		customers    []models.Customer
		products     []models.Product
		customersErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.api.Get(gctx, sess, "/orders", &orders)
	})
	g.Go(func() error {
		customersErr = s.api.Get(gctx, sess, customersPath, &customers)
		if apiclient.IsUnauthorized(customersErr) {
			return customersErr
		}
		return nil
	})
	g.Go(func() error {
		return s.api.Get(gctx, sess, "/products", &products)
	})
	if err := g.Wait(); err != nil {
		return models.DashboardStats{}, err
	}

	customerCount := len(customers)
	if customersErr != nil {
		customerCount = distinctCustomers(orders)
	}
	return Aggregate(orders, customerCount, len(products)), nil
}

// Aggregate derives dashboard figures from raw lists.
func Aggregate(orders []models.Order, customers, products int) models.DashboardStats {
	stats := models.DashboardStats{
		TotalOrders:    len(orders),
		TotalCustomers: customers,
		TotalProducts:  products,
		OrdersByStatus: make(map[models.OrderStatus]int),
	}
	for _, o := range orders {
		stats.TotalRevenue += o.Total
		stats.OrdersByStatus[o.Status]++
	}

	sorted := append([]models.Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > RecentOrderLimit {
		sorted = sorted[:RecentOrderLimit]
	}
	stats.RecentOrders = make([]models.RecentOrder, 0, len(sorted))
	for _, o := range sorted {
		status := o.Status
		if status == "" {
			status = models.OrderStatusPending
		}
		stats.RecentOrders = append(stats.RecentOrders, models.RecentOrder{
			ID:           o.ID,
			CustomerName: customerName(o.User),
			Total:        o.Total,
			Status:       status,
			Date:         o.CreatedAt,
		})
	}
	return stats
}

func customerName(u models.UserRef) string {
	if name := u.FullName(); name != "" {
		return name
	}
	if at := strings.Index(u.Email, "@"); at > 0 {
		return u.Email[:at]
	}
	return "Unknown Customer"
}

// distinctCustomers counts unique buyers when the customers endpoint is unavailable.
func distinctCustomers(orders []models.Order) int {
	seen := make(map[string]bool)
	for _, o := range orders {
		key := o.User.Email
		if key == "" {
			key = o.User.ID
		}
		if key != "" {
			seen[key] = true
		}
	}
	return len(seen)
}
