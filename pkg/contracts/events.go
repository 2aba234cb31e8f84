package contracts

import (
	"time"

	"github.com/google/uuid"
)

type Event struct {
	EventID   string         `json:"event_id"`
	Type      string         `json:"type"`
	Subject   string         `json:"subject"`
	CreatedAt time.Time      `json:"created_at"`
	Payload   map[string]any `json:"payload"`
}

const (
	EventCustomerCreated     = "customer.created"
	EventCustomerUpdated     = "customer.updated"
	EventCustomerDeleted     = "customer.deleted"
	EventProductCreated      = "product.created"
	EventProductStockUpdated = "product.stock_updated"
	EventProductDiscounted   = "product.discounted"
	EventOrderPlaced         = "order.placed"
	EventOrderAdvanced       = "order.advanced"
	EventOrderCancelled      = "order.cancelled"
)

// NewEvent stamps a fresh id and UTC time. subject is the id of the entity the
// event is about and is used as the partition key.
func NewEvent(eventType, subject string, payload map[string]any) Event {
	return Event{
		EventID:   uuid.NewString(),
		Type:      eventType,
		Subject:   subject,
		CreatedAt: time.Now().UTC(),
		Payload:   payload,
	}
}
