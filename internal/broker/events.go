package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"villagemart-admin/internal/models"
	"villagemart-admin/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher handles publishing admin action events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishAdminAction publishes one audited console mutation, keyed by entity.
func (ep *EventPublisher) PublishAdminAction(ctx context.Context, event *models.AdminActionEvent) error {
	key := fmt.Sprintf("%s-%s", event.Resource, event.EntityID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// CatalogHandler reacts to a change made outside the console.
type CatalogHandler func(ctx context.Context, resource string, event *models.CatalogEvent) error

var resourceByEventType = map[string]string{
	models.EventTypeProductChanged:  "products",
	models.EventTypeCategoryChanged: "categories",
	models.EventTypeOrderChanged:    "orders",
	models.EventTypeCustomerChanged: "customers",
	models.EventTypeStockChanged:    "inventory",
}

// ResourceFor maps a catalog event type to the console resource it affects.
func ResourceFor(eventType string) (string, bool) {
	r, ok := resourceByEventType[eventType]
	return r, ok
}

// EventHandler handles incoming catalog events
type EventHandler struct {
	onCatalogChange CatalogHandler
	logger          *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.Named("broker")}
}

// OnCatalogChange registers the handler for every catalog event type.
func (eh *EventHandler) OnCatalogChange(handler CatalogHandler) {
	eh.onCatalogChange = handler
}

// HandleMessage routes messages to the registered handler. Unknown event
// types are acknowledged and skipped.
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var event models.CatalogEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal catalog event: %w", err)
	}

	resource, ok := ResourceFor(event.EventType)
	if !ok {
		eh.logger.Debug("Ignoring event", zap.String("type", event.EventType), zap.String("id", event.EventID))
		return nil
	}

	eh.logger.Debug("Handling event",
		zap.String("type", event.EventType),
		zap.String("id", event.EventID),
		zap.String("resource", resource))

	if eh.onCatalogChange == nil {
		return nil
	}
	return eh.onCatalogChange(ctx, resource, &event)
}
