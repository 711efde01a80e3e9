package service

import (
	"context"
	"fmt"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/sample"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/view"
)

// OrderFilters are the query keys the orders page filters on.
var OrderFilters = []string{"status", "paymentStatus"}

// OrderView searches order id, customer name and email.
var OrderView = view.Spec[models.Order]{
	Search: func(o models.Order) []string { return []string{o.ID, o.User.FullName(), o.User.Email} },
	Filters: map[string]func(models.Order) string{
		"status":        func(o models.Order) string { return string(o.Status) },
		"paymentStatus": func(o models.Order) string { return string(o.PaymentStatus) },
	},
	Sorts: map[string]view.Compare[models.Order]{
		"createdAt": view.By(func(o models.Order) int64 { return o.CreatedAt.UnixNano() }, view.Ordered[int64]),
		"total":     view.By(func(o models.Order) models.Money { return o.Total }, view.Ordered[models.Money]),
		"customer":  view.By(func(o models.Order) string { return o.User.FullName() }, view.Strings),
		"status":    view.By(func(o models.Order) string { return string(o.Status) }, view.Strings),
	},
	DefaultSort: "createdAt",
	DefaultDesc: true,
}

// OrderStats are the summary cards on the orders page.
type OrderStats struct {
	TotalOrders     int          `json:"totalOrders"`
	PendingOrders   int          `json:"pendingOrders"`
	TotalRevenue    models.Money `json:"totalRevenue"`
	PaidOrders      int          `json:"paidOrders"`
	CompletedOrders int          `json:"completedOrders"`
	AvgOrderValue   models.Money `json:"avgOrderValue"`
}

// SummarizeOrders computes the order cards.
func SummarizeOrders(orders []models.Order) OrderStats {
	stats := OrderStats{TotalOrders: len(orders)}
	for _, o := range orders {
		switch o.Status {
		case models.OrderStatusPending:
			stats.PendingOrders++
		case models.OrderStatusDelivered:
			stats.CompletedOrders++
		}
		if o.PaymentStatus == models.PaymentStatusPaid {
			stats.PaidOrders++
		}
		stats.TotalRevenue += o.Total
	}
	if stats.TotalOrders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / models.Money(stats.TotalOrders)
	}
	return stats
}

// NewOrderTable builds the orders controller.
func NewOrderTable(cfg TableConfig) *table.Controller[models.Order] {
	return table.New(table.Options[models.Order]{
		Resource: "orders",
		Timeout:  cfg.Timeout,
		Fallback: fallback(cfg, sample.Orders),
		View:     OrderView,
	})
}

// OrderService reads orders and changes their status. Any status may be set
// from any other; the API decides what is legal.
type OrderService struct {
	api   *apiclient.Client
	audit *Auditor
}

// NewOrderService creates a new order service
func NewOrderService(api *apiclient.Client, audit *Auditor) *OrderService {
	return &OrderService{api: api, audit: audit}
}

func (s *OrderService) Load(ctx context.Context, sess *session.Session, c *table.Controller[models.Order], force bool) error {
	return loadOrEnsure(ctx, c, "orders", force, listOf[models.Order](s.api, sess, "/orders"))
}

// Get fetches one order for the details modal and refreshes the cached copy.
func (s *OrderService) Get(ctx context.Context, sess *session.Session, c *table.Controller[models.Order], id string) (models.Order, error) {
	var o models.Order
	if err := s.api.Get(ctx, sess, "/orders/"+escape(id), &o); err != nil {
		if cached, ok := c.Get(id); ok && !apiclient.IsUnauthorized(err) {
			return cached, nil
		}
		return o, err
	}
	c.Patch(id, func(cur *models.Order) { *cur = o })
	return o, nil
}

// UpdateStatus sends PATCH /orders/:id/status.
func (s *OrderService) UpdateStatus(ctx context.Context, sess *session.Session, c *table.Controller[models.Order], id string, status models.OrderStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: order status %q", ErrInvalid, status)
	}
	updated, err := c.Update(ctx, id, func(ctx context.Context) (models.Order, error) {
		var o models.Order
		err := s.api.Patch(ctx, sess, "/orders/"+escape(id)+"/status", map[string]models.OrderStatus{"status": status}, &o)
		return o, err
	})
	if err != nil {
		return updated, err
	}
	s.audit.Record(ctx, sess, "orders", id, models.ActionStatusChange, string(status))
	return updated, nil
}

// UpdatePayment sends PATCH /orders/:id/payment.
func (s *OrderService) UpdatePayment(ctx context.Context, sess *session.Session, c *table.Controller[models.Order], id string, status models.PaymentStatus) (models.Order, error) {
	if !status.Valid() {
		return models.Order{}, fmt.Errorf("%w: payment status %q", ErrInvalid, status)
	}
	updated, err := c.Update(ctx, id, func(ctx context.Context) (models.Order, error) {
		var o models.Order
		err := s.api.Patch(ctx, sess, "/orders/"+escape(id)+"/payment", map[string]models.PaymentStatus{"paymentStatus": status}, &o)
		return o, err
	})
	if err != nil {
		return updated, err
	}
	s.audit.Record(ctx, sess, "orders", id, models.ActionPaymentChange, string(status))
	return updated, nil
}
