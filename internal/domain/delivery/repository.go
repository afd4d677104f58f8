package delivery

import "context"

type Repository interface {
	// Insert returns ErrAlreadyAssigned when the order already has a delivery.
	Insert(ctx context.Context, d *Delivery) error
	FindByID(ctx context.Context, id string) (*Delivery, error)
	FindByOrderID(ctx context.Context, orderID string) (*Delivery, error)
	ListByPerson(ctx context.Context, personID string) ([]*Delivery, error)
	// UpdateStatus writes to only while the stored status still equals from.
	UpdateStatus(ctx context.Context, id string, from, to Status) error
}
