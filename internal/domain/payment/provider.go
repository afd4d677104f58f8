package payment

import (
	"context"

	"github.com/shopspring/decimal"
)

// Listing is the product data mirrored at the payment provider.
type Listing struct {
	ProductID   string
	Name        string
	Description string
	Image       string
	Price       decimal.Decimal
}

// Provider keeps the payment provider's product catalogue in step with local listings.
// Each method either fully applies or leaves the provider unchanged.
type Provider interface {
	CreateProduct(ctx context.Context, l Listing) error
	UpdatePrice(ctx context.Context, productID string, price decimal.Decimal) error
	Deactivate(ctx context.Context, productID string) error
}
