package services

import (
	"encoding/json"
	"log"
	"time"

	"productcatalog/internal/models"
)

// Product lifecycle routing keys.
const (
	EventProductCreated = "product.created"
	EventProductUpdated = "product.updated"
	EventProductDeleted = "product.deleted"
)

// EventPublisher publishes a message to an exchange. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ProductEvent is the message body published for every product change.
type ProductEvent struct {
	Event      string          `json:"event"`
	ProductID  string          `json:"product_id"`
	Product    *models.Product `json:"product,omitempty"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type eventSink struct {
	publisher EventPublisher
	exchange  string
}

// emit never fails the request; a lost event is logged.
func (e eventSink) emit(event ProductEvent) {
	if e.publisher == nil {
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for product %s: %v", event.Event, event.ProductID, err)
		return
	}
	if err := e.publisher.Publish(e.exchange, event.Event, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for product %s: %v", event.Event, event.ProductID, err)
	}
}
