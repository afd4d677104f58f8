// Package memory implements the repositories on process memory. Every read
// returns a clone so callers cannot mutate stored state.
package memory

import (
	"context"
	"errors"
)

var ErrDuplicateID = errors.New("duplicate id")

// Transactor runs fn directly. Atomicity for the memory store comes from the
// conditional stock operations plus saga compensation.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// Store bundles one instance of every repository.
type Store struct {
	Users      *UserRepository
	Products   *ProductRepository
	Orders     *OrderRepository
	Deliveries *DeliveryRepository
}

func NewStore() *Store {
	return &Store{
		Users:      NewUserRepository(),
		Products:   NewProductRepository(),
		Orders:     NewOrderRepository(),
		Deliveries: NewDeliveryRepository(),
	}
}
