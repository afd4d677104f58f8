package order

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/saga"
	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

type LineInput struct {
	ProductID string
	Quantity  int
}

type CreateOrderInput struct {
	Lines     []LineInput
	PaymentID string
}

type CreateOrderResult struct {
	OrderID     string
	TotalAmount decimal.Decimal
}

// CreateOrder reserves stock for every line and records the order, all or
// nothing. Stock is taken with conditional decrements, so concurrent orders
// can never drive a quantity below zero.
func (s *Service) CreateOrder(ctx context.Context, caller application.Caller, in CreateOrderInput) (_ *CreateOrderResult, err error) {
	ctx, run := s.in.Begin(ctx, useCaseOrderCreate, "CreateOrder",
		attribute.String("order.customer_id", caller.ID),
		attribute.Int("order.lines", len(in.Lines)),
	)
	defer run.End(&err)

	if err := caller.Require(); err != nil {
		return nil, err
	}
	if len(in.Lines) == 0 {
		return nil, domain.ErrNoLines
	}
	if in.PaymentID == "" {
		return nil, domain.ErrPaymentRequired
	}

	requested, err := mergeLines(in.Lines)
	if err != nil {
		return nil, err
	}

	lines := make([]domain.Line, 0, len(requested))
	for _, l := range requested {
		p, err := s.products.FindByID(ctx, l.ProductID)
		if err != nil {
			return nil, err
		}
		if err := p.Reserve(l.Quantity); err != nil {
			run.Status("INSUFFICIENT_STOCK")
			return nil, err
		}
		lines = append(lines, domain.Line{ProductID: p.ID, Quantity: l.Quantity, Price: p.Price})
	}

	o, err := domain.New(s.ids.NewID(), caller.ID, in.PaymentID, lines)
	if err != nil {
		return nil, err
	}
	run.Field("order_id", o.ID)
	run.Span().SetAttributes(attribute.String("order.id", o.ID))

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		return s.commitSaga(o).Run(ctx)
	})
	if err != nil {
		return nil, fmt.Errorf("order: create: %w", err)
	}

	run.Field("total_amount", o.TotalAmount.String())
	run.Publish(ctx, s.publisher, domain.NewOrderCreatedEvent(o))
	return &CreateOrderResult{OrderID: o.ID, TotalAmount: o.TotalAmount}, nil
}

// commitSaga decrements stock line by line, then inserts the order.
func (s *Service) commitSaga(o *domain.Order) *saga.Saga {
	sg := saga.New(useCaseOrderCreate, s.in.Telemetry())
	for _, l := range o.Lines {
		sg.AddStep("reserve_"+l.ProductID,
			func(ctx context.Context) error { return s.products.DecrementStock(ctx, l.ProductID, l.Quantity) },
			func(ctx context.Context) error { return s.products.IncrementStock(ctx, l.ProductID, l.Quantity) },
		)
	}
	sg.AddStep("insert_order",
		func(ctx context.Context) error { return s.orders.Insert(ctx, o) },
		nil,
	)
	return sg
}

// mergeLines folds repeated products into one line, keeping first-seen order.
func mergeLines(in []LineInput) ([]LineInput, error) {
	out := make([]LineInput, 0, len(in))
	index := make(map[string]int, len(in))
	for _, l := range in {
		if l.ProductID == "" {
			return nil, product.ErrNotFound
		}
		if l.Quantity <= 0 {
			return nil, domain.ErrInvalidQuantity
		}
		if i, ok := index[l.ProductID]; ok {
			out[i].Quantity += l.Quantity
			continue
		}
		index[l.ProductID] = len(out)
		out = append(out, l)
	}
	return out, nil
}
