package order

import (
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = apperr.NotFound("no order found with that id")
	ErrNoLines         = apperr.Validation("order details are required")
	ErrPaymentRequired = apperr.Validation("payment id is required")
	ErrInvalidQuantity = apperr.Validation("quantity must be greater than zero")
)

// Line is one product of an order with the unit price captured at creation.
type Line struct {
	ProductID string
	Quantity  int
	Price     decimal.Decimal
}

func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Order is immutable once created.
type Order struct {
	ID          string
	CustomerID  string
	Lines       []Line
	TotalAmount decimal.Decimal
	PaymentID   string
	CreatedAt   time.Time
}

func New(id, customerID, paymentID string, lines []Line) (*Order, error) {
	if customerID == "" {
		return nil, apperr.Unauthorized("you are not logged in! please log in to get access")
	}
	if len(lines) == 0 {
		return nil, ErrNoLines
	}
	if paymentID == "" {
		return nil, ErrPaymentRequired
	}

	total := decimal.Zero
	for _, l := range lines {
		if l.ProductID == "" {
			return nil, apperr.Validation("product id is required")
		}
		if l.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		total = total.Add(l.Subtotal())
	}

	return &Order{
		ID:          id,
		CustomerID:  customerID,
		Lines:       append([]Line(nil), lines...),
		TotalAmount: total,
		PaymentID:   paymentID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	c := *o
	c.Lines = append([]Line(nil), o.Lines...)
	return &c
}
