package models

import "time"

// Admin actions recorded after a successful mutation
const (
	ActionCreate        = "CREATE"
	ActionUpdate        = "UPDATE"
	ActionDelete        = "DELETE"
	ActionStatusChange  = "STATUS_CHANGE"
	ActionPaymentChange = "PAYMENT_CHANGE"
	ActionStockAdjust   = "STOCK_ADJUST"
	ActionToggleActive  = "TOGGLE_ACTIVE"
	ActionSignIn        = "SIGN_IN"
	ActionSignOut       = "SIGN_OUT"
)

// Catalog event types published by the storefront API
const (
	EventTypeProductChanged  = "PRODUCT_CHANGED"
	EventTypeCategoryChanged = "CATEGORY_CHANGED"
	EventTypeOrderChanged    = "ORDER_CHANGED"
	EventTypeCustomerChanged = "CUSTOMER_CHANGED"
	EventTypeStockChanged    = "STOCK_CHANGED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// AdminActionEvent describes one mutation performed through the console.
type AdminActionEvent struct {
	BaseEvent
	ActorID    string `json:"actor_id"`
	ActorEmail string `json:"actor_email"`
	Resource   string `json:"resource"`
	EntityID   string `json:"entity_id"`
	Action     string `json:"action"`
	Detail     string `json:"detail,omitempty"`
}

// CatalogEvent tells the console that an entity changed behind its back.
type CatalogEvent struct {
	BaseEvent
	EntityID string `json:"entity_id"`
}

// AdminAction is a persisted audit row.
type AdminAction struct {
	ID         int64     `db:"id" json:"id"`
	EventID    string    `db:"event_id" json:"eventId"`
	ActorID    string    `db:"actor_id" json:"actorId"`
	ActorEmail string    `db:"actor_email" json:"actorEmail"`
	Resource   string    `db:"resource" json:"resource"`
	EntityID   string    `db:"entity_id" json:"entityId"`
	Action     string    `db:"action" json:"action"`
	Detail     string    `db:"detail" json:"detail,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
