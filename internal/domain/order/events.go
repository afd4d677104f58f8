package order

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderCreatedEvent is emitted after an order and its stock reservations are committed.
type OrderCreatedEvent struct {
	OrderID     string
	CustomerID  string
	Lines       int
	TotalAmount decimal.Decimal
	PaymentID   string
	OccurredAt  time.Time
}

func (OrderCreatedEvent) EventName() string     { return "order.created" }
func (e OrderCreatedEvent) AggregateID() string { return e.OrderID }

func NewOrderCreatedEvent(o *Order) OrderCreatedEvent {
	return OrderCreatedEvent{
		OrderID:     o.ID,
		CustomerID:  o.CustomerID,
		Lines:       len(o.Lines),
		TotalAmount: o.TotalAmount,
		PaymentID:   o.PaymentID,
		OccurredAt:  time.Now().UTC(),
	}
}
