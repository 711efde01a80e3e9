package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/sample"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/util"
	"villagemart-admin/internal/view"

	"go.uber.org/zap"
)

var (
	// ErrNotLoaded is returned when an operation names an id that is not in the cached list.
	ErrNotLoaded = errors.New("entity not in the loaded list")
	// ErrInvalid is returned for enum values outside their fixed set.
	ErrInvalid = errors.New("invalid value")
)

// LowStockThreshold is where the products page starts flagging stock.
const LowStockThreshold = 10

// ProductFilters are the query keys the products page filters on.
var ProductFilters = []string{"category", "status", "stock"}

// ProductView searches name, description and SKU.
var ProductView = view.Spec[models.Product]{
	Search: func(p models.Product) []string { return []string{p.Name, p.Description, p.SKU} },
	Filters: map[string]func(models.Product) string{
		"category": func(p models.Product) string {
			if p.Category == nil {
				return ""
			}
			return p.Category.ID
		},
		"status": func(p models.Product) string { return activeLabel(p.IsActive) },
		"stock":  func(p models.Product) string { return string(StockBucket(p.Stock)) },
	},
	Sorts: map[string]view.Compare[models.Product]{
		"name":      view.By(func(p models.Product) string { return p.Name }, view.Strings),
		"price":     view.By(func(p models.Product) models.Money { return p.Price }, view.Ordered[models.Money]),
		"stock":     view.By(func(p models.Product) int { return p.Stock }, view.Ordered[int]),
		"createdAt": view.By(func(p models.Product) int64 { return p.CreatedAt.UnixNano() }, view.Ordered[int64]),
	},
	DefaultSort: "name",
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

// StockBucket groups a product's stock for the stock filter.
func StockBucket(stock int) models.StockStatus {
	switch {
	case stock <= 0:
		return models.StockOut
	case stock < LowStockThreshold:
		return models.StockLow
	default:
		return models.StockInStock
	}
}

// ProductStats are the summary cards above the products table.
type ProductStats struct {
	Total    int `json:"total"`
	Active   int `json:"active"`
	LowStock int `json:"lowStock"`
}

// SummarizeProducts computes the product cards.
func SummarizeProducts(products []models.Product) ProductStats {
	stats := ProductStats{Total: len(products)}
	for _, p := range products {
		if p.IsActive {
			stats.Active++
		}
		if p.Stock < LowStockThreshold {
			stats.LowStock++
		}
	}
	return stats
}

// NewProductTable builds the products controller.
func NewProductTable(cfg TableConfig) *table.Controller[models.Product] {
	return table.New(table.Options[models.Product]{
		Resource: "products",
		Timeout:  cfg.Timeout,
		Fallback: fallback(cfg, sample.Products),
		View:     ProductView,
	})
}

// ProductService manages the catalog.
type ProductService struct {
	api    *apiclient.Client
	audit  *Auditor
	logger *zap.Logger
}

// NewProductService creates a new product service
func NewProductService(api *apiclient.Client, audit *Auditor) *ProductService {
	return &ProductService{api: api, audit: audit, logger: util.Named("products")}
}

// Load fills c from GET /products.
func (s *ProductService) Load(ctx context.Context, sess *session.Session, c *table.Controller[models.Product], force bool) error {
	return loadOrEnsure(ctx, c, "products", force, listOf[models.Product](s.api, sess, "/products"))
}

// Create posts a new product and appends it.
func (s *ProductService) Create(ctx context.Context, sess *session.Session, c *table.Controller[models.Product], draft form.ProductDraft) (models.Product, error) {
	created, err := c.Create(ctx, func(ctx context.Context) (models.Product, error) {
		var p models.Product
		err := s.api.Post(ctx, sess, "/products", draft, &p)
		return p, err
	})
	if err != nil {
		return created, err
	}
	s.audit.Record(ctx, sess, "products", created.ID, models.ActionCreate, created.Name)
	return created, nil
}

// Update patches a product and replaces it in place.
func (s *ProductService) Update(ctx context.Context, sess *session.Session, c *table.Controller[models.Product], id string, draft form.ProductDraft) (models.Product, error) {
	updated, err := c.Update(ctx, id, func(ctx context.Context) (models.Product, error) {
		var p models.Product
		err := s.api.Patch(ctx, sess, "/products/"+escape(id), draft, &p)
		return p, err
	})
	if err != nil {
		return updated, err
	}
	s.audit.Record(ctx, sess, "products", id, models.ActionUpdate, updated.Name)
	return updated, nil
}

// Delete removes a product.
func (s *ProductService) Delete(ctx context.Context, sess *session.Session, c *table.Controller[models.Product], id string) error {
	err := c.Delete(ctx, id, func(ctx context.Context) error {
		return s.api.Delete(ctx, sess, "/products/"+escape(id), nil)
	})
	if err != nil {
		return err
	}
	s.audit.Record(ctx, sess, "products", id, models.ActionDelete, "")
	return nil
}

// ToggleActive flips isActive immediately and rolls back if the API rejects it.
func (s *ProductService) ToggleActive(ctx context.Context, sess *session.Session, c *table.Controller[models.Product], id string) (models.Product, error) {
	current, ok := c.Get(id)
	if !ok {
		return models.Product{}, fmt.Errorf("product %s: %w", id, ErrNotLoaded)
	}
	next := !current.IsActive

	updated, err := c.UpdateOptimistic(ctx, id,
		func(p *models.Product) { p.IsActive = next },
		func(ctx context.Context) (models.Product, error) {
			var p models.Product
			err := s.api.Patch(ctx, sess, "/products/"+escape(id), map[string]bool{"isActive": next}, &p)
			return p, err
		})
	if err != nil {
		return updated, err
	}
	s.audit.Record(ctx, sess, "products", id, models.ActionToggleActive, activeLabel(next))
	return updated, nil
}

type uploadResult struct {
	Path string `json:"path"`
}

// UploadImage checks and uploads a product image and returns its absolute URL.
func (s *ProductService) UploadImage(ctx context.Context, sess *session.Session, filename, contentType string, data []byte) (string, error) {
	if err := form.CheckImage(contentType, int64(len(data))); err != nil {
		return "", err
	}

	var res uploadResult
	if err := s.api.Upload(ctx, sess, "/products/upload", "image", filename, contentType, data, &res); err != nil {
		return "", err
	}
	if res.Path == "" {
		return "", &apiclient.APIError{
			Kind:     apiclient.KindShape,
			Method:   http.MethodPost,
			Path:     "/products/upload",
			Resource: "products",
			Message:  "Invalid response from server",
		}
	}

	s.logger.Info("Uploaded product image", zap.String("path", res.Path))
	return form.ImageURL(s.api.BaseURL(), res.Path), nil
}
