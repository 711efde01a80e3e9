// Package sample holds the fixed lists shown when the storefront API cannot be
// reached, so every page stays usable in a disconnected or demo setup.
// Each accessor returns a fresh copy.
package sample

import (
	"time"

	"villagemart-admin/internal/models"
)

func at(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

var (
	fruits = models.CategoryRef{ID: "cat-1", Name: "Fruits", Slug: "fruits"}
	bakery = models.CategoryRef{ID: "cat-2", Name: "Bakery", Slug: "bakery"}
	dairy  = models.CategoryRef{ID: "cat-3", Name: "Dairy", Slug: "dairy"}
	pantry = models.CategoryRef{ID: "cat-4", Name: "Pantry", Slug: "pantry"}
)

func ref(c models.CategoryRef) *models.CategoryRef { return &c }

// Products returns the sample catalog.
func Products() []models.Product {
	return []models.Product{
		{ID: "1", Name: "Organic Apples", Description: "Fresh organic apples from local farms", Price: 4.99, Stock: 150, Category: ref(fruits), SKU: "ORG-APP-001", IsActive: true, CreatedAt: at("2024-01-15T00:00:00Z"), UpdatedAt: at("2024-01-15T00:00:00Z")},
		{ID: "2", Name: "Whole Grain Bread", Description: "Freshly baked whole grain bread", Price: 3.49, Stock: 75, Category: ref(bakery), SKU: "WG-BREAD-001", IsActive: true, CreatedAt: at("2024-01-16T00:00:00Z"), UpdatedAt: at("2024-01-16T00:00:00Z")},
		{ID: "3", Name: "Free Range Eggs", Description: "Farm fresh free range eggs (dozen)", Price: 5.99, Stock: 200, Category: ref(dairy), SKU: "FR-EGGS-001", IsActive: true, CreatedAt: at("2024-01-17T00:00:00Z"), UpdatedAt: at("2024-01-17T00:00:00Z")},
		{ID: "4", Name: "Organic Milk", Description: "Fresh organic milk (1 gallon)", Price: 6.49, Stock: 50, Category: ref(dairy), SKU: "ORG-MILK-001", IsActive: true, CreatedAt: at("2024-01-18T00:00:00Z"), UpdatedAt: at("2024-01-18T00:00:00Z")},
		{ID: "5", Name: "Local Honey", Description: "Pure local wildflower honey", Price: 8.99, Stock: 25, Category: ref(pantry), SKU: "LOC-HONEY-001", IsActive: true, CreatedAt: at("2024-01-19T00:00:00Z"), UpdatedAt: at("2024-01-19T00:00:00Z")},
	}
}

// Categories returns the sample categories.
func Categories() []models.Category {
	return []models.Category{
		{ID: "cat-1", Name: "Fruits", Slug: "fruits", Description: "Seasonal and organic fruit", IsActive: true, ProductCount: 1, CreatedAt: at("2024-01-15T00:00:00Z"), UpdatedAt: at("2024-01-15T00:00:00Z")},
		{ID: "cat-2", Name: "Bakery", Slug: "bakery", Description: "Bread and baked goods", IsActive: true, ProductCount: 1, CreatedAt: at("2024-01-16T00:00:00Z"), UpdatedAt: at("2024-01-16T00:00:00Z")},
		{ID: "cat-3", Name: "Dairy", Slug: "dairy", Description: "Milk, eggs and cheese", IsActive: true, ProductCount: 2, CreatedAt: at("2024-01-17T00:00:00Z"), UpdatedAt: at("2024-01-17T00:00:00Z")},
		{ID: "cat-4", Name: "Pantry", Slug: "pantry", Description: "Shelf-stable staples", IsActive: true, ProductCount: 1, CreatedAt: at("2024-01-18T00:00:00Z"), UpdatedAt: at("2024-01-18T00:00:00Z")},
	}
}

var (
	john = models.UserRef{ID: "1", FirstName: "John", LastName: "Doe", Email: "john.doe@example.com", Phone: "+1234567890"}
	jane = models.UserRef{ID: "2", FirstName: "Jane", LastName: "Smith", Email: "jane.smith@example.com", Phone: "+1234567891"}
)

// Orders returns the sample orders.
func Orders() []models.Order {
	return []models.Order{
		{
			ID:   "ORD-001",
			User: john,
			Items: []models.OrderItem{{
				ID:       "item-1",
				Product:  &models.Product{ID: "prod-1", Name: "Sample Product 1", SKU: "SKU-001", Price: 29.99, Stock: 100, IsActive: true},
				Quantity: 2,
				Price:    29.99,
				Subtotal: 59.98,
			}},
			Status:          models.OrderStatusPending,
			PaymentStatus:   models.PaymentStatusPending,
			Subtotal:        59.98,
			Tax:             4.80,
			Shipping:        9.99,
			Total:           74.77,
			ShippingAddress: "123 Main St, Anytown, USA",
			BillingAddress:  "123 Main St, Anytown, USA",
			CreatedAt:       at("2024-01-15T00:00:00Z"),
			UpdatedAt:       at("2024-01-15T00:00:00Z"),
		},
		{
			ID:   "ORD-002",
			User: jane,
			Items: []models.OrderItem{{
				ID:       "item-2",
				Product:  &models.Product{ID: "prod-2", Name: "Sample Product 2", SKU: "SKU-002", Price: 45.00, Stock: 50, IsActive: true},
				Quantity: 1,
				Price:    45.00,
				Subtotal: 45.00,
			}},
			Status:          models.OrderStatusDelivered,
			PaymentStatus:   models.PaymentStatusPaid,
			Subtotal:        45.00,
			Tax:             3.60,
			Shipping:        9.99,
			Total:           58.59,
			ShippingAddress: "456 Oak Ave, Springfield, USA",
			BillingAddress:  "456 Oak Ave, Springfield, USA",
			TrackingNumber:  "TRK123456789",
			CreatedAt:       at("2024-01-16T00:00:00Z"),
			UpdatedAt:       at("2024-01-16T00:00:00Z"),
		},
	}
}

// Customers returns the sample customers.
func Customers() []models.Customer {
	return []models.Customer{
		{ID: john.ID, FirstName: john.FirstName, LastName: john.LastName, Email: john.Email, Phone: john.Phone, IsActive: true, Stats: models.CustomerStats{TotalOrders: 1, TotalSpent: 74.77}, CreatedAt: at("2024-01-15T00:00:00Z"), UpdatedAt: at("2024-01-15T00:00:00Z")},
		{ID: jane.ID, FirstName: jane.FirstName, LastName: jane.LastName, Email: jane.Email, Phone: jane.Phone, IsActive: true, Stats: models.CustomerStats{TotalOrders: 1, TotalSpent: 58.59}, CreatedAt: at("2024-01-16T00:00:00Z"), UpdatedAt: at("2024-01-16T00:00:00Z")},
	}
}

// Inventory returns the sample stock rows.
func Inventory() []models.InventoryItem {
	items := []models.InventoryItem{
		{
			ID: "1", ProductID: "prod-1", ProductName: "Organic Apples", ProductSKU: "ORG-APP-001", Category: "Fruits",
			CurrentStock: 45, MinStockLevel: 20, MaxStockLevel: 200, ReorderPoint: 30, UnitCost: 2.50,
			Supplier: "Local Farm Co.", Location: "A1-B3", LastUpdated: at("2024-06-28T10:30:00Z"),
			Movements: []models.StockMovement{
				{ID: "mov-1", Type: models.MovementIn, Quantity: 50, Reason: "Stock replenishment", Timestamp: at("2024-06-27T14:00:00Z"), UserID: "user-1", Reference: "PO-2024-001"},
				{ID: "mov-2", Type: models.MovementOut, Quantity: 5, Reason: "Customer sale", Timestamp: at("2024-06-28T09:15:00Z"), UserID: "user-2"},
			},
		},
		{
			ID: "2", ProductID: "prod-2", ProductName: "Whole Grain Bread", ProductSKU: "WG-BREAD-001", Category: "Bakery",
			CurrentStock: 12, MinStockLevel: 15, MaxStockLevel: 100, ReorderPoint: 20, UnitCost: 1.75,
			Supplier: "Artisan Bakery", Location: "B2-C1", LastUpdated: at("2024-06-28T08:45:00Z"),
			Movements: []models.StockMovement{
				{ID: "mov-3", Type: models.MovementOut, Quantity: 8, Reason: "Customer sale", Timestamp: at("2024-06-28T08:45:00Z"), UserID: "user-2"},
			},
		},
		{
			ID: "3", ProductID: "prod-3", ProductName: "Free Range Eggs", ProductSKU: "FR-EGGS-001", Category: "Dairy",
			CurrentStock: 0, MinStockLevel: 10, MaxStockLevel: 150, ReorderPoint: 15, UnitCost: 4.00,
			Supplier: "Happy Farms", Location: "C1-D2", LastUpdated: at("2024-06-27T16:20:00Z"),
			Movements: []models.StockMovement{
				{ID: "mov-4", Type: models.MovementOut, Quantity: 15, Reason: "Customer sale", Timestamp: at("2024-06-27T16:20:00Z"), UserID: "user-2"},
			},
		},
		{
			ID: "4", ProductID: "prod-4", ProductName: "Organic Milk", ProductSKU: "ORG-MILK-001", Category: "Dairy",
			CurrentStock: 85, MinStockLevel: 25, MaxStockLevel: 80, ReorderPoint: 35, UnitCost: 3.25,
			Supplier: "Green Valley Dairy", Location: "C2-D1", LastUpdated: at("2024-06-28T11:00:00Z"),
			Movements: []models.StockMovement{
				{ID: "mov-5", Type: models.MovementIn, Quantity: 60, Reason: "Bulk purchase", Timestamp: at("2024-06-28T11:00:00Z"), UserID: "user-1", Reference: "PO-2024-002"},
			},
		},
		{
			ID: "5", ProductID: "prod-5", ProductName: "Local Honey", ProductSKU: "LOC-HONEY-001", Category: "Pantry",
			CurrentStock: 35, MinStockLevel: 10, MaxStockLevel: 60, ReorderPoint: 15, UnitCost: 6.50,
			Supplier: "Bee Happy Farms", Location: "D1-E2", LastUpdated: at("2024-06-26T14:30:00Z"),
			Movements: []models.StockMovement{
				{ID: "mov-6", Type: models.MovementIn, Quantity: 25, Reason: "New shipment", Timestamp: at("2024-06-26T14:30:00Z"), UserID: "user-1", Reference: "PO-2024-003"},
			},
		},
	}
	for i := range items {
		items[i].Refresh()
	}
	return items
}
