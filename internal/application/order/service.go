package order

import (
	"context"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	orderService       = "order-service"
	useCaseOrderCreate = "order.create"
	useCaseOrderGet    = "order.get"
)

type Service struct {
	orders    domain.Repository
	products  product.Repository
	tx        Transactor
	publisher domoutbox.Publisher
	ids       application.IDGenerator
	in        application.Instrumentation
}

func NewService(
	orders domain.Repository,
	products product.Repository,
	tx Transactor,
	publisher domoutbox.Publisher,
	ids application.IDGenerator,
	tel observability.Observability,
) *Service {
	return &Service{
		orders:    orders,
		products:  products,
		tx:        tx,
		publisher: publisher,
		ids:       ids,
		in:        application.NewInstrumentation(tel, orderService),
	}
}

// GetOrder returns an order to the customer who placed it. Orders of other
// customers are reported as not found.
func (s *Service) GetOrder(ctx context.Context, caller application.Caller, id string) (_ *domain.Order, err error) {
	ctx, run := s.in.Begin(ctx, useCaseOrderGet, "GetOrder",
		attribute.String("caller.id", caller.ID),
		attribute.String("order.id", id),
	)
	defer run.End(&err)

	if err := caller.Require(); err != nil {
		return nil, err
	}
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.CustomerID != caller.ID {
		return nil, domain.ErrNotFound
	}
	return o, nil
}
