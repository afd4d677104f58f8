package product

import (
	"context"

	"github.com/shopspring/decimal"
)

// Filter narrows List. The zero value returns every product.
type Filter struct {
	ListedOnly bool
	ListedBy   string
}

type Repository interface {
	Insert(ctx context.Context, p *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	List(ctx context.Context, f Filter) ([]*Product, error)
	UpdatePrice(ctx context.Context, id string, price decimal.Decimal) error
	SetListed(ctx context.Context, id string, listed bool) error
	Delete(ctx context.Context, id string) error

	// DecrementStock subtracts qty only while the stored quantity is at least
	// qty, returning ErrInsufficientStock otherwise. It must be atomic with
	// respect to concurrent callers.
	DecrementStock(ctx context.Context, id string, qty int) error
	IncrementStock(ctx context.Context, id string, qty int) error
}
