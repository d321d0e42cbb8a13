package events

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

const OrderPlaced = "order.placed"

type OrderPlacedItem struct {
	ProductID       int64           `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase"`
}

// OrderPlacedEvent is published once an order has been paid and saved.
type OrderPlacedEvent struct {
	Event           string            `json:"event"`
	OrderID         string            `json:"order_id"`
	OrderNumber     string            `json:"order_number"`
	UserEmail       string            `json:"user_email"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	Currency        string            `json:"currency"`
	PaymentIntentID string            `json:"payment_intent_id"`
	Items           []OrderPlacedItem `json:"items"`
	Timestamp       time.Time         `json:"timestamp"`
}

// Publisher delivers order events to downstream consumers.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlacedEvent) error
	Close() error
}

// NopPublisher drops every event. Used when EVENTS_BACKEND=none.
type NopPublisher struct{}

func (NopPublisher) PublishOrderPlaced(context.Context, OrderPlacedEvent) error { return nil }
func (NopPublisher) Close() error                                                { return nil }
