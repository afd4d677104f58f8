package stripe

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
	"github.com/shopspring/decimal"
)

// OfflineCatalogue keeps the provider catalogue in memory. It stands in for
// Stripe when no secret key is configured.
type OfflineCatalogue struct {
	mu       sync.Mutex
	products map[string]OfflineProduct
	log      observability.Logger
}

type OfflineProduct struct {
	Listing     payment.Listing
	ActivePrice int64
	Active      bool
}

var _ payment.Provider = (*OfflineCatalogue)(nil)

func NewOfflineCatalogue(tel observability.Observability) *OfflineCatalogue {
	return &OfflineCatalogue{
		products: make(map[string]OfflineProduct),
		log:      observability.OrNop(tel).Logger().With(observability.F("component", "stripe_offline")),
	}
}

func (o *OfflineCatalogue) CreateProduct(ctx context.Context, l payment.Listing) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	pid := ProductID(l.ProductID)
	if _, exists := o.products[pid]; exists {
		return apperr.Provider(nil, "product already exists at payment provider")
	}
	o.products[pid] = OfflineProduct{Listing: l, ActivePrice: MinorUnits(l.Price), Active: true}
	logctx.FromOr(ctx, o.log).Debug("offline_product_created", observability.F("product_id", pid))
	return nil
}

func (o *OfflineCatalogue) UpdatePrice(ctx context.Context, productID string, price decimal.Decimal) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	pid := ProductID(productID)
	p, ok := o.products[pid]
	if !ok {
		return apperr.Provider(nil, "product does not exist at payment provider")
	}
	p.Listing.Price = price
	p.ActivePrice = MinorUnits(price)
	o.products[pid] = p
	logctx.FromOr(ctx, o.log).Debug("offline_price_rotated", observability.F("product_id", pid))
	return nil
}

func (o *OfflineCatalogue) Deactivate(ctx context.Context, productID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	pid := ProductID(productID)
	p, ok := o.products[pid]
	if !ok {
		return apperr.Provider(nil, "product does not exist at payment provider")
	}
	p.Active = false
	o.products[pid] = p
	return nil
}

// Product returns the mirrored entry for a local product id.
func (o *OfflineCatalogue) Product(localID string) (OfflineProduct, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	p, ok := o.products[ProductID(localID)]
	return p, ok
}
