package services

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"cardapio/internal/models"

	"github.com/shopspring/decimal"
)

// Routing keys of order events.
const (
	EventOrderCreated       = "order.created"
	EventOrderStatusChanged = "order.status_changed"
)

// EventPublisher delivers an event body to an exchange. The RabbitMQ client and
// the realtime hub both implement it.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// MultiPublisher publishes to every non-nil publisher in turn and returns the
// first error after trying them all.
type MultiPublisher []EventPublisher

func (m MultiPublisher) Publish(exchange, routingKey string, body []byte) error {
	var first error
	for _, p := range m {
		if p == nil {
			continue
		}
		if err := p.Publish(exchange, routingKey, body); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OrderEvent is the payload of every order event.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"orderId"`
	ClientID       string             `json:"clientId"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	Total          decimal.Decimal    `json:"total"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

func newOrderEvent(kind string, order *models.Order, previous models.OrderStatus) OrderEvent {
	return OrderEvent{
		Type:           kind,
		OrderID:        order.ID,
		ClientID:       order.ClientID,
		Status:         order.Status,
		PreviousStatus: previous,
		Total:          order.Total,
		OccurredAt:     time.Now().UTC(),
	}
}

// publish never fails the caller; the order is already committed.
func publish(p EventPublisher, exchange string, event OrderEvent) {
	if p == nil {
		log.Println("Event publisher is not initialized. Skipping message publication.")
		return
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event to JSON: %v", event.Type, err)
		return
	}
	if err := p.Publish(exchange, event.Type, body); err != nil {
		log.Printf("Warning: Failed to publish %s event for order %s: %v", event.Type, event.OrderID, err)
		return
	}
	log.Printf("Successfully published %s event for order %s", event.Type, event.OrderID)
}

// DecodeOrderEvent parses an event body produced by the order service.
func DecodeOrderEvent(body []byte) (OrderEvent, error) {
	var ev OrderEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return OrderEvent{}, fmt.Errorf("failed to decode order event: %w", err)
	}
	if ev.OrderID == "" {
		return OrderEvent{}, fmt.Errorf("order event without orderId")
	}
	return ev, nil
}
