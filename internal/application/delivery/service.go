// Package delivery assigns orders to delivery persons and tracks each
// delivery through its status lifecycle.
package delivery

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	deliveryService       = "delivery-service"
	useCaseAssign         = "delivery.assign"
	useCaseStatusForOrder = "delivery.status_for_order"
	useCaseListForPerson  = "delivery.list_for_person"
	useCaseUpdateStatus   = "delivery.update_status"
)

var (
	ErrPersonNotFound = apperr.NotFound("no delivery person found with that id")
	ErrNotDeliverer   = apperr.Validation("user is not a delivery person")
)

type Service struct {
	deliveries domain.Repository
	orders     order.Repository
	users      user.Repository
	publisher  domoutbox.Publisher
	ids        application.IDGenerator
	in         application.Instrumentation
}

func NewService(
	deliveries domain.Repository,
	orders order.Repository,
	users user.Repository,
	publisher domoutbox.Publisher,
	ids application.IDGenerator,
	tel observability.Observability,
) *Service {
	return &Service{
		deliveries: deliveries,
		orders:     orders,
		users:      users,
		publisher:  publisher,
		ids:        ids,
		in:         application.NewInstrumentation(tel, deliveryService),
	}
}

// Assign creates the delivery of an order, starting in packaging.
func (s *Service) Assign(ctx context.Context, orderID, personID string) (_ *domain.Delivery, err error) {
	ctx, run := s.in.Begin(ctx, useCaseAssign, "AssignDelivery",
		attribute.String("order.id", orderID),
		attribute.String("delivery.person_id", personID),
	)
	defer run.End(&err)

	if _, err := s.orders.FindByID(ctx, orderID); err != nil {
		return nil, err
	}
	person, err := s.users.FindByID(ctx, personID)
	if errors.Is(err, user.ErrNotFound) {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}
	if !person.HasRole(user.RoleDeliveryPerson) {
		return nil, ErrNotDeliverer
	}

	d, err := domain.New(s.ids.NewID(), orderID, personID)
	if err != nil {
		return nil, err
	}
	if err := s.deliveries.Insert(ctx, d); err != nil {
		if errors.Is(err, domain.ErrAlreadyAssigned) {
			run.Status("ALREADY_ASSIGNED")
		}
		return nil, err
	}
	run.Field("delivery_id", d.ID)
	return d, nil
}

func (s *Service) StatusForOrder(ctx context.Context, orderID string) (_ *domain.Delivery, err error) {
	ctx, run := s.in.Begin(ctx, useCaseStatusForOrder, "DeliveryForOrder", attribute.String("order.id", orderID))
	defer run.End(&err)

	return s.deliveries.FindByOrderID(ctx, orderID)
}

func (s *Service) ListForPerson(ctx context.Context, personID string) (_ []*domain.Delivery, err error) {
	ctx, run := s.in.Begin(ctx, useCaseListForPerson, "ListDeliveries", attribute.String("delivery.person_id", personID))
	defer run.End(&err)

	out, err := s.deliveries.ListByPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	run.Field("count", len(out))
	return out, nil
}

// UpdateStatus advances a delivery. Only the assigned delivery person may
// move it, and only along the lifecycle. The store write is conditional on
// the status read here, so two racing updates cannot both apply.
func (s *Service) UpdateStatus(ctx context.Context, caller application.Caller, deliveryID, status string) (_ *domain.Delivery, err error) {
	ctx, run := s.in.Begin(ctx, useCaseUpdateStatus, "UpdateDeliveryStatus",
		attribute.String("delivery.id", deliveryID),
		attribute.String("delivery.status", status),
	)
	defer run.End(&err)

	if err := caller.Require(user.RoleDeliveryPerson); err != nil {
		return nil, err
	}
	next, err := domain.ParseStatus(status)
	if err != nil {
		return nil, err
	}

	d, err := s.deliveries.FindByID(ctx, deliveryID)
	if err != nil {
		return nil, err
	}
	if d.DeliveryPersonID != caller.ID {
		return nil, domain.ErrNotAssignee
	}

	from := d.Status
	if err := d.Transition(next); err != nil {
		run.Status("INVALID_TRANSITION")
		return nil, err
	}
	if err := s.deliveries.UpdateStatus(ctx, d.ID, from, next); err != nil {
		return nil, err
	}

	run.Field("from", string(from))
	run.Field("to", string(next))
	run.Publish(ctx, s.publisher, domain.NewStatusChangedEvent(d, from))
	return d, nil
}
