package service

import (
	"context"
	"fmt"
	"time"

	"villagemart-admin/internal/apiclient"
	"villagemart-admin/internal/form"
	"villagemart-admin/internal/models"
	"villagemart-admin/internal/sample"
	"villagemart-admin/internal/session"
	"villagemart-admin/internal/table"
	"villagemart-admin/internal/util"
	"villagemart-admin/internal/view"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Defaults for inventory rows derived from product data.
const (
	DefaultMinStock     = 10
	DefaultMaxStock     = 100
	DefaultReorderPoint = 20
	DefaultSupplier     = "Unknown Supplier"
	DefaultLocation     = "A1-B1"
	DefaultCategory     = "Uncategorized"
)

var InventoryFilters = []string{"category", "status"}

// InventoryView searches product name, SKU and supplier.
var InventoryView = view.Spec[models.InventoryItem]{
	Search: func(i models.InventoryItem) []string { return []string{i.ProductName, i.ProductSKU, i.Supplier} },
	Filters: map[string]func(models.InventoryItem) string{
		"category": func(i models.InventoryItem) string { return i.Category },
		"status":   func(i models.InventoryItem) string { return string(i.Status) },
	},
	Sorts: map[string]view.Compare[models.InventoryItem]{
		"productName":  view.By(func(i models.InventoryItem) string { return i.ProductName }, view.Strings),
		"currentStock": view.By(func(i models.InventoryItem) int { return i.CurrentStock }, view.Ordered[int]),
		"totalValue":   view.By(func(i models.InventoryItem) models.Money { return i.TotalValue }, view.Ordered[models.Money]),
		"lastUpdated":  view.By(func(i models.InventoryItem) int64 { return i.LastUpdated.UnixNano() }, view.Ordered[int64]),
	},
	DefaultSort: "productName",
}

// InventorySummary are the inventory page cards.
type InventorySummary struct {
	TotalItems int          `json:"totalItems"`
	TotalValue models.Money `json:"totalValue"`
	LowStock   int          `json:"lowStock"`
	OutOfStock int          `json:"outOfStock"`
}

func SummarizeInventory(items []models.InventoryItem) InventorySummary {
	sum := InventorySummary{TotalItems: len(items)}
	for _, i := range items {
		sum.TotalValue += i.TotalValue
		switch i.Status {
		case models.StockLow:
			sum.LowStock++
		case models.StockOut:
			sum.OutOfStock++
		}
	}
	return sum
}

// Categories lists the distinct categories for the filter dropdown.
func Categories(items []models.InventoryItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, i := range items {
		if i.Category == "" || seen[i.Category] {
			continue
		}
		seen[i.Category] = true
		out = append(out, i.Category)
	}
	return out
}

// InventoryFromProduct converts a catalog product into a stock row.
func InventoryFromProduct(p models.Product) models.InventoryItem {
	category := p.CategoryName()
	if category == "" {
		category = DefaultCategory
	}
	item := models.InventoryItem{
		ID:            p.ID,
		ProductID:     p.ID,
		ProductName:   p.Name,
		ProductSKU:    p.SKU,
		Category:      category,
		CurrentStock:  p.Stock,
		MinStockLevel: DefaultMinStock,
		MaxStockLevel: DefaultMaxStock,
		ReorderPoint:  DefaultReorderPoint,
		UnitCost:      p.Price,
		Supplier:      DefaultSupplier,
		Location:      DefaultLocation,
		LastUpdated:   p.UpdatedAt,
		Movements:     []models.StockMovement{},
	}
	item.Refresh()
	return item
}

// normalizeInventory fills missing levels and re-derives status client side.
func normalizeInventory(item models.InventoryItem) models.InventoryItem {
	if item.MinStockLevel == 0 {
		item.MinStockLevel = DefaultMinStock
	}
	if item.MaxStockLevel == 0 {
		item.MaxStockLevel = DefaultMaxStock
	}
	if item.ProductID == "" {
		item.ProductID = item.ID
	}
	if item.Movements == nil {
		item.Movements = []models.StockMovement{}
	}
	item.Refresh()
	return item
}

func NewInventoryTable(cfg TableConfig) *table.Controller[models.InventoryItem] {
	return table.New(table.Options[models.InventoryItem]{
		Resource: "inventory",
		Timeout:  cfg.Timeout,
		Fallback: fallback(cfg, sample.Inventory),
		View:     InventoryView,
	})
}

type InventoryService struct {
	api    *apiclient.Client
	audit  *Auditor
	logger *zap.Logger
	now    func() time.Time
}

func NewInventoryService(api *apiclient.Client, audit *Auditor) *InventoryService {
	return &InventoryService{api: api, audit: audit, logger: util.Named("inventory"), now: time.Now}
}

// Load reads /inventory. When that endpoint is unavailable the product list
// is converted instead. A 401 stops the chain.
func (s *InventoryService) Load(ctx context.Context, sess *session.Session, c *table.Controller[models.InventoryItem], force bool) error {
	return loadOrEnsure(ctx, c, "inventory", force, s.fetch(sess))
}

func (s *InventoryService) fetch(sess *session.Session) table.Fetch[models.InventoryItem] {
	return func(ctx context.Context) ([]models.InventoryItem, error) {
		var rows []models.InventoryItem
		err := s.api.Get(ctx, sess, "/inventory", &rows)
		if err == nil {
			out := make([]models.InventoryItem, 0, len(rows))
			for _, r := range rows {
				out = append(out, normalizeInventory(r))
			}
			return out, nil
		}
		if apiclient.IsUnauthorized(err) || ctx.Err() != nil {
			return nil, err
		}

		s.logger.Info("Inventory endpoint unavailable, deriving rows from products", zap.Error(err))
		var products []models.Product
		if perr := s.api.Get(ctx, sess, "/products", &products); perr != nil {
			return nil, perr
		}
		out := make([]models.InventoryItem, 0, len(products))
		for _, p := range products {
			out = append(out, InventoryFromProduct(p))
		}
		return out, nil
	}
}

// Adjust posts a stock adjustment and reconciles the row locally: the new
// level is clamped at zero and a movement is prepended.
func (s *InventoryService) Adjust(ctx context.Context, sess *session.Session, c *table.Controller[models.InventoryItem], draft form.StockAdjustmentDraft) (models.InventoryItem, error) {
	adj := draft.Adjustment()
	if _, ok := c.Get(adj.ProductID); !ok {
		return models.InventoryItem{}, fmt.Errorf("inventory item %s: %w", adj.ProductID, ErrNotLoaded)
	}

	updated, err := c.Update(ctx, adj.ProductID, func(ctx context.Context) (models.InventoryItem, error) {
		if err := s.api.Post(ctx, sess, "/inventory/"+escape(adj.ProductID)+"/adjust", adj, nil); err != nil {
			return models.InventoryItem{}, err
		}
		current, _ := c.Get(adj.ProductID)
		return s.applyAdjustment(current, adj, sess), nil
	})
	if err != nil {
		return updated, err
	}

	s.audit.Record(ctx, sess, "inventory", adj.ProductID, models.ActionStockAdjust,
		fmt.Sprintf("%s %d: %s", adj.Type, adj.NewQuantity, adj.Reason))
	return updated, nil
}

func (s *InventoryService) applyAdjustment(item models.InventoryItem, adj models.StockAdjustment, sess *session.Session) models.InventoryItem {
	now := s.now()
	movement := models.StockMovement{
		ID:        "mov-" + uuid.New().String(),
		Type:      movementFor(adj.Type),
		Quantity:  adj.NewQuantity,
		Reason:    adj.Reason,
		Timestamp: now,
	}
	if sess != nil {
		movement.UserID = sess.User.ID
	}

	item.CurrentStock = adj.Apply(item.CurrentStock)
	item.LastUpdated = now
	item.Movements = append([]models.StockMovement{movement}, item.Movements...)
	item.Refresh()
	return item
}

func movementFor(t models.AdjustmentType) models.MovementType {
	switch t {
	case models.AdjustIncrease:
		return models.MovementIn
	case models.AdjustDecrease:
		return models.MovementOut
	default:
		return models.MovementAdjustment
	}
}
