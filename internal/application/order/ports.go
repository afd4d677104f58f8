package order

import "context"

// Transactor runs fn in a transactional scope when the store supports one.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
