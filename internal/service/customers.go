package service

import (
	"context"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/sample"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/view"
)

const customersPath = "/admin/customers"

// CustomerFilters are the query keys the customers page filters on.
var CustomerFilters = []string{"status"}

// CustomerView searches first name, last name and email.
var CustomerView = view.Spec[models.Customer]{
	Search: func(c models.Customer) []string { return []string{c.FirstName, c.LastName, c.Email} },
	Filters: map[string]func(models.Customer) string{
		"status": func(c models.Customer) string { return activeLabel(c.IsActive) },
	},
	Sorts: map[string]view.Compare[models.Customer]{
		"firstName":   view.By(func(c models.Customer) string { return c.FirstName }, view.Strings),
		"lastName":    view.By(func(c models.Customer) string { return c.LastName }, view.Strings),
		"email":       view.By(func(c models.Customer) string { return c.Email }, view.Strings),
		"createdAt":   view.By(func(c models.Customer) int64 { return c.CreatedAt.UnixNano() }, view.Ordered[int64]),
		"totalOrders": view.By(func(c models.Customer) int { return c.Stats.TotalOrders }, view.Ordered[int]),
		"totalSpent":  view.By(func(c models.Customer) models.Money { return c.Stats.TotalSpent }, view.Ordered[models.Money]),
	},
	DefaultSort: "createdAt",
	DefaultDesc: true,
}

// CustomerStats are the customers page cards. A customer counts as active
// once they have placed an order.
type CustomerStats struct {
	Total         int          `json:"totalCustomers"`
	Active        int          `json:"activeCustomers"`
	TotalRevenue  models.Money `json:"totalRevenue"`
	AvgOrderValue models.Money `json:"avgOrderValue"`
}

func SummarizeCustomers(customers []models.Customer) CustomerStats {
	stats := CustomerStats{Total: len(customers)}
	orders := 0
	for _, c := range customers {
		if c.Stats.TotalOrders > 0 {
			stats.Active++
		}
		orders += c.Stats.TotalOrders
		stats.TotalRevenue += c.Stats.TotalSpent
	}
	if orders > 0 {
		stats.AvgOrderValue = stats.TotalRevenue / models.Money(orders)
	}
	return stats
}

func NewCustomerTable(cfg TableConfig) *table.Controller[models.Customer] {
	return table.New(table.Options[models.Customer]{
		Resource: "customers",
		Timeout:  cfg.Timeout,
		Fallback: fallback(cfg, sample.Customers),
		View:     CustomerView,
	})
}

// CustomerService manages storefront accounts through the admin endpoints.
// Mutations reconcile the cached list by id instead of refetching it.
type CustomerService struct {
	api   *apiclient.Client
	audit *Auditor
}

func NewCustomerService(api *apiclient.Client, audit *Auditor) *CustomerService {
	return &CustomerService{api: api, audit: audit}
}

func (s *CustomerService) Load(ctx context.Context, sess *session.Session, c *table.Controller[models.Customer], force bool) error {
	return loadOrEnsure(ctx, c, "customers", force, listOf[models.Customer](s.api, sess, customersPath))
}

// Create registers a customer. The draft must carry a password.
func (s *CustomerService) Create(ctx context.Context, sess *session.Session, c *table.Controller[models.Customer], draft form.CustomerDraft) (models.Customer, error) {
	created, err := c.Create(ctx, func(ctx context.Context) (models.Customer, error) {
		var cust models.Customer
		err := s.api.Post(ctx, sess, customersPath, draft, &cust)
		return cust, err
	})
	if err != nil {
		return created, err
	}
	s.audit.Record(ctx, sess, "customers", created.ID, models.ActionCreate, created.Email)
	return created, nil
}

// Update patches a customer. An empty password leaves the current one unchanged.
func (s *CustomerService) Update(ctx context.Context, sess *session.Session, c *table.Controller[models.Customer], id string, draft form.CustomerDraft) (models.Customer, error) {
	updated, err := c.Update(ctx, id, func(ctx context.Context) (models.Customer, error) {
		var cust models.Customer
		err := s.api.Patch(ctx, sess, customersPath+"/"+escape(id), draft, &cust)
		return cust, err
	})
	if err != nil {
		return updated, err
	}
	s.audit.Record(ctx, sess, "customers", id, models.ActionUpdate, updated.Email)
	return updated, nil
}

func (s *CustomerService) Delete(ctx context.Context, sess *session.Session, c *table.Controller[models.Customer], id string) error {
	err := c.Delete(ctx, id, func(ctx context.Context) error {
		return s.api.Delete(ctx, sess, customersPath+"/"+escape(id), nil)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, sess, "customers", id, models.ActionDelete, "")
	return nil
}
