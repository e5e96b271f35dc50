package orders

import (
	"encoding/json"
	"time"
)

const (
	TopicOrderPlaced = "order.placed"
	EventOrderPlaced = "OrderPlaced"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

type PlacedItem struct {
	ProductID  string `json:"product_id"`
	Qty        int    `json:"qty"`
	PriceCents int64  `json:"price_cents"`
}

type OrderPlacedPayload struct {
	OrderID       string       `json:"order_id"`
	UserID        *string      `json:"user_id,omitempty"`
	Email         string       `json:"email"`
	PaymentMethod string       `json:"payment_method"`
	Items         []PlacedItem `json:"items"`
	TotalCents    int64        `json:"total_cents"`
}

// Partition key = order_id so every event for one order keeps its order.
func PartitionKey(orderID string) []byte { return []byte(orderID) }
