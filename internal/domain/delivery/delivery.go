package delivery

import (
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
)

var (
	ErrNotFound          = apperr.NotFound("no delivery found")
	ErrAlreadyAssigned   = apperr.Validation("a delivery is already assigned to this order")
	ErrInvalidTransition = apperr.Validation("delivery status transition is not allowed")
	ErrNotAssignee       = apperr.Unauthorized("only the assigned delivery person can update this delivery")
)

type Delivery struct {
	ID               string
	OrderID          string
	DeliveryPersonID string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func New(id, orderID, deliveryPersonID string) (*Delivery, error) {
	if orderID == "" {
		return nil, apperr.Validation("order id is required")
	}
	if deliveryPersonID == "" {
		return nil, apperr.Validation("delivery person id is required")
	}
	now := time.Now().UTC()
	return &Delivery{
		ID:               id,
		OrderID:          orderID,
		DeliveryPersonID: deliveryPersonID,
		Status:           StatusPackaging,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// Transition moves the delivery to next, rejecting moves the table forbids.
func (d *Delivery) Transition(next Status) error {
	if !d.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	d.Status = next
	d.UpdatedAt = time.Now().UTC()
	return nil
}

func (d *Delivery) Clone() *Delivery {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
