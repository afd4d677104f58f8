package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// ListingCreatedEvent is emitted once a listing exists locally and at the payment provider.
type ListingCreatedEvent struct {
	ProductID  string
	ListedBy   string
	Price      decimal.Decimal
	Quantity   int
	OccurredAt time.Time
}

func (ListingCreatedEvent) EventName() string     { return "listing.created" }
func (e ListingCreatedEvent) AggregateID() string { return e.ProductID }

func NewListingCreatedEvent(p *Product) ListingCreatedEvent {
	return ListingCreatedEvent{
		ProductID:  p.ID,
		ListedBy:   p.ListedBy,
		Price:      p.Price,
		Quantity:   p.Quantity,
		OccurredAt: time.Now().UTC(),
	}
}

type PriceChangedEvent struct {
	ProductID  string
	OldPrice   decimal.Decimal
	NewPrice   decimal.Decimal
	OccurredAt time.Time
}

func (PriceChangedEvent) EventName() string     { return "listing.price_changed" }
func (e PriceChangedEvent) AggregateID() string { return e.ProductID }

func NewPriceChangedEvent(id string, oldPrice, newPrice decimal.Decimal) PriceChangedEvent {
	return PriceChangedEvent{
		ProductID:  id,
		OldPrice:   oldPrice,
		NewPrice:   newPrice,
		OccurredAt: time.Now().UTC(),
	}
}
