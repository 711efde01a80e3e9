package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Money is a decimal amount. The storefront API serialises decimals either as
// JSON numbers or as numeric strings; both decode to the same value.
type Money float64

// UnmarshalJSON accepts 4.99, "4.99", "" and null.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*m = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("invalid money value %q: %w", s, err)
		}
		*m = Money(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	*m = Money(f)
	return nil
}

// String renders the amount with two decimals.
func (m Money) String() string {
	return strconv.FormatFloat(float64(m), 'f', 2, 64)
}

// CategoryRef is the category embedded in a product.
type CategoryRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// Product represents a product in the catalog
type Product struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	Description     string       `json:"description,omitempty"`
	SKU             string       `json:"sku"`
	Price           Money        `json:"price"`
	Stock           int          `json:"stock"`
	Category        *CategoryRef `json:"category,omitempty"`
	ImageURL        string       `json:"imageUrl,omitempty"`
	IsActive        bool         `json:"isActive"`
	Brand           string       `json:"brand,omitempty"`
	Weight          float64      `json:"weight,omitempty"`
	Dimensions      string       `json:"dimensions,omitempty"`
	MetaTitle       string       `json:"metaTitle,omitempty"`
	MetaDescription string       `json:"metaDescription,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

func (p Product) EntityID() string { return p.ID }

// CategoryName returns the category name or "" when the product is uncategorised.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}

// Category groups products.
type Category struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	MetaTitle       string    `json:"metaTitle,omitempty"`
	MetaDescription string    `json:"metaDescription,omitempty"`
	IsActive        bool      `json:"isActive"`
	ProductCount    int       `json:"productCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (c Category) EntityID() string { return c.ID }

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusShipped    OrderStatus = "shipped"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusRefunded   OrderStatus = "refunded"
)

// OrderStatuses lists every order status in display order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
	OrderStatusRefunded,
}

// Valid reports whether s is one of the fixed order statuses.
func (s OrderStatus) Valid() bool {
	for _, v := range OrderStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// PaymentStatus is the payment state of an order.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusRefunded PaymentStatus = "refunded"
)

var PaymentStatuses = []PaymentStatus{
	PaymentStatusPending,
	PaymentStatusPaid,
	PaymentStatusFailed,
	PaymentStatusRefunded,
}

func (s PaymentStatus) Valid() bool {
	for _, v := range PaymentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// UserRef is the customer embedded in an order.
type UserRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
}

// FullName joins first and last name.
func (u UserRef) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// OrderItem represents items in an order. Subtotal is computed by the API.
type OrderItem struct {
	ID       string   `json:"id"`
	Product  *Product `json:"product,omitempty"`
	Quantity int      `json:"quantity"`
	Price    Money    `json:"price"`
	Subtotal Money    `json:"subtotal"`
}

// Order represents a customer order
type Order struct {
	ID              string        `json:"id"`
	User            UserRef       `json:"user"`
	Items           []OrderItem   `json:"items"`
	Status          OrderStatus   `json:"status"`
	PaymentStatus   PaymentStatus `json:"paymentStatus"`
	Subtotal        Money         `json:"subtotal"`
	Tax             Money         `json:"tax"`
	Shipping        Money         `json:"shipping"`
	Total           Money         `json:"total"`
	ShippingAddress string        `json:"shippingAddress"`
	BillingAddress  string        `json:"billingAddress,omitempty"`
	TrackingNumber  string        `json:"trackingNumber,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

func (o Order) EntityID() string { return o.ID }

// CustomerStats is aggregated by the API.
type CustomerStats struct {
	TotalOrders int   `json:"totalOrders"`
	TotalSpent  Money `json:"totalSpent"`
}

// Customer is a storefront user as seen by the admin console.
type Customer struct {
	ID        string        `json:"id"`
	FirstName string        `json:"firstName"`
	LastName  string        `json:"lastName"`
	Email     string        `json:"email"`
	Phone     string        `json:"phone,omitempty"`
	IsActive  bool          `json:"isActive"`
	Stats     CustomerStats `json:"stats"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

func (c Customer) EntityID() string { return c.ID }

// StockStatus is derived client side from stock thresholds.
type StockStatus string

const (
	StockInStock     StockStatus = "in_stock"
	StockLow         StockStatus = "low_stock"
	StockOut         StockStatus = "out_of_stock"
	StockOverstocked StockStatus = "overstocked"
)

// DeriveStockStatus classifies current stock against the min/max levels.
// Zero is out of stock, at or below min is low, above max is overstocked.
func DeriveStockStatus(current, min, max int) StockStatus {
	switch {
	case current == 0:
		return StockOut
	case current <= min:
		return StockLow
	case current > max:
		return StockOverstocked
	default:
		return StockInStock
	}
}

// MovementType is the direction of a stock movement.
type MovementType string

const (
	MovementIn         MovementType = "in"
	MovementOut        MovementType = "out"
	MovementAdjustment MovementType = "adjustment"
)

type StockMovement struct {
	ID        string       `json:"id"`
	Type      MovementType `json:"type"`
	Quantity  int          `json:"quantity"`
	Reason    string       `json:"reason"`
	Timestamp time.Time    `json:"timestamp"`
	UserID    string       `json:"userId"`
	Reference string       `json:"reference,omitempty"`
}

// InventoryItem is one stock row on the inventory page.
type InventoryItem struct {
	ID            string          `json:"id"`
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductSKU    string          `json:"productSku"`
	Category      string          `json:"category"`
	CurrentStock  int             `json:"currentStock"`
	MinStockLevel int             `json:"minStockLevel"`
	MaxStockLevel int             `json:"maxStockLevel"`
	ReorderPoint  int             `json:"reorderPoint"`
	UnitCost      Money           `json:"unitCost"`
	TotalValue    Money           `json:"totalValue"`
	Supplier      string          `json:"supplier"`
	Location      string          `json:"location"`
	LastUpdated   time.Time       `json:"lastUpdated"`
	Status        StockStatus     `json:"status"`
	Movements     []StockMovement `json:"movements"`
}

func (i InventoryItem) EntityID() string { return i.ProductID }

// Refresh recomputes the derived status and value after a stock change.
func (i *InventoryItem) Refresh() {
	i.Status = DeriveStockStatus(i.CurrentStock, i.MinStockLevel, i.MaxStockLevel)
	i.TotalValue = Money(float64(i.UnitCost) * float64(i.CurrentStock))
}

// AdjustmentType selects how a stock adjustment quantity is applied.
type AdjustmentType string

const (
	AdjustSet      AdjustmentType = "set"
	AdjustIncrease AdjustmentType = "increase"
	AdjustDecrease AdjustmentType = "decrease"
)

// StockAdjustment is the body of POST /inventory/:productId/adjust.
type StockAdjustment struct {
	ProductID   string         `json:"productId"`
	NewQuantity int            `json:"newQuantity"`
	Reason      string         `json:"reason"`
	Type        AdjustmentType `json:"type"`
}

// Apply returns the stock level after the adjustment, never below zero.
func (a StockAdjustment) Apply(current int) int {
	next := current
	switch a.Type {
	case AdjustSet:
		next = a.NewQuantity
	case AdjustIncrease:
		next = current + a.NewQuantity
	case AdjustDecrease:
		next = current - a.NewQuantity
	}
	if next < 0 {
		return 0
	}
	return next
}

// AdminUser is the signed-in operator.
type AdminUser struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Phone     string `json:"phone,omitempty"`
}

// AuthResponse is returned by POST /auth/signin.
type AuthResponse struct {
	User  AdminUser `json:"user"`
	Token string    `json:"token"`
}

// Appearance holds the console theme settings.
type Appearance struct {
	Theme            string `json:"theme"`
	AccentColor      string `json:"accentColor"`
	LogoURL          string `json:"logoUrl,omitempty"`
	SidebarCollapsed bool   `json:"sidebarCollapsed"`
}

// RecentOrder is a dashboard row.
type RecentOrder struct {
	ID           string      `json:"id"`
	CustomerName string      `json:"customerName"`
	Total        Money       `json:"total"`
	Status       OrderStatus `json:"status"`
	Date         time.Time   `json:"date"`
}

// DashboardStats is the payload of GET /admin/stats.
type DashboardStats struct {
	TotalOrders    int                 `json:"totalOrders"`
	TotalRevenue   Money               `json:"totalRevenue"`
	TotalCustomers int                 `json:"totalCustomers"`
	TotalProducts  int                 `json:"totalProducts"`
	RecentOrders   []RecentOrder       `json:"recentOrders"`
	OrdersByStatus map[OrderStatus]int `json:"ordersByStatus"`
}
