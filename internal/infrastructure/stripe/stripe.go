// Package stripe mirrors listings into the Stripe product catalogue.
package stripe

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/payment"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

const peerStripe = "stripe"

// ProductID is the provider-side id of a local product.
func ProductID(localID string) string { return "prod_" + localID }

// MinorUnits converts a major-unit price to the provider's integer minor units.
func MinorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

type Client struct {
	api      *client.API
	currency string
	timeout  time.Duration

	log          observability.Logger
	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

var _ payment.Provider = (*Client)(nil)

func New(secretKey, currency string, timeout time.Duration, tel observability.Observability) *Client {
	return newClient(client.New(secretKey, nil), currency, timeout, tel)
}

func newClient(api *client.API, currency string, timeout time.Duration, tel observability.Observability) *Client {
	tel = observability.OrNop(tel)
	if currency == "" {
		currency = "lkr"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		api:          api,
		currency:     currency,
		timeout:      timeout,
		log:          tel.Logger().With(observability.F("component", "stripe")),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

// CreateProduct creates the product and its first price. If the price cannot
// be created the product is deleted again.
func (c *Client) CreateProduct(ctx context.Context, l payment.Listing) error {
	pid := ProductID(l.ProductID)
	err := c.call(ctx, "products.create", func(ctx context.Context) error {
		params := &stripe.ProductParams{
			ID:          stripe.String(pid),
			Name:        stripe.String(l.Name),
			Description: stripe.String(l.Description),
		}
		if l.Image != "" {
			params.Images = stripe.StringSlice([]string{l.Image})
		}
		params.Context = ctx
		_, err := c.api.Products.New(params)
		return err
	})
	if err != nil {
		return apperr.Provider(err, "failed to create product at payment provider")
	}

	if err := c.createPrice(ctx, pid, l.Price); err != nil {
		if delErr := c.call(context.WithoutCancel(ctx), "products.delete", func(ctx context.Context) error {
			params := &stripe.ProductParams{}
			params.Context = ctx
			_, err := c.api.Products.Del(pid, params)
			return err
		}); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return apperr.Provider(err, "failed to create price at payment provider")
	}
	return nil
}

// UpdatePrice deactivates the product's active prices and creates a new one.
// When the new price cannot be created, the deactivated prices are restored.
func (c *Client) UpdatePrice(ctx context.Context, productID string, price decimal.Decimal) error {
	pid := ProductID(productID)

	var active []string
	err := c.call(ctx, "prices.list", func(ctx context.Context) error {
		params := &stripe.PriceListParams{
			Product: stripe.String(pid),
			Active:  stripe.Bool(true),
		}
		params.Context = ctx
		it := c.api.Prices.List(params)
		for it.Next() {
			active = append(active, it.Price().ID)
		}
		return it.Err()
	})
	if err != nil {
		return apperr.Provider(err, "failed to list prices at payment provider")
	}

	var deactivated []string
	for _, id := range active {
		if err := c.setPriceActive(ctx, id, false); err != nil {
			return apperr.Provider(c.restorePrices(ctx, deactivated, err), "failed to deactivate price at payment provider")
		}
		deactivated = append(deactivated, id)
	}

	if err := c.createPrice(ctx, pid, price); err != nil {
		return apperr.Provider(c.restorePrices(ctx, deactivated, err), "failed to create price at payment provider")
	}
	return nil
}

// Deactivate archives the product so it can no longer be sold.
func (c *Client) Deactivate(ctx context.Context, productID string) error {
	err := c.call(ctx, "products.update", func(ctx context.Context) error {
		params := &stripe.ProductParams{Active: stripe.Bool(false)}
		params.Context = ctx
		_, err := c.api.Products.Update(ProductID(productID), params)
		return err
	})
	if err != nil {
		return apperr.Provider(err, "failed to deactivate product at payment provider")
	}
	return nil
}

func (c *Client) createPrice(ctx context.Context, pid string, price decimal.Decimal) error {
	return c.call(ctx, "prices.create", func(ctx context.Context) error {
		params := &stripe.PriceParams{
			Product:    stripe.String(pid),
			UnitAmount: stripe.Int64(MinorUnits(price)),
			Currency:   stripe.String(c.currency),
		}
		params.Context = ctx
		_, err := c.api.Prices.New(params)
		return err
	})
}

func (c *Client) setPriceActive(ctx context.Context, id string, active bool) error {
	return c.call(ctx, "prices.update", func(ctx context.Context) error {
		params := &stripe.PriceParams{Active: stripe.Bool(active)}
		params.Context = ctx
		_, err := c.api.Prices.Update(id, params)
		return err
	})
}

func (c *Client) restorePrices(ctx context.Context, ids []string, cause error) error {
	errs := []error{cause}
	rctx := context.WithoutCancel(ctx)
	for _, id := range ids {
		if err := c.setPriceActive(rctx, id, true); err != nil {
			logctx.FromOr(ctx, c.log).Error("stripe_price_restore_failed",
				observability.F("price_id", id),
				observability.F("error", err),
			)
			errs = append(errs, fmt.Errorf("restore price %s: %w", id, err))
		}
	}
	return errors.Join(errs...)
}

// call runs op under the provider timeout and records it as an external request.
func (c *Client) call(ctx context.Context, endpoint string, op func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := op(ctx)
	outcome := "success"
	if err != nil {
		outcome = "error"
		var se *stripe.Error
		fields := []observability.Field{
			observability.F("endpoint", endpoint),
			observability.F("error", err),
		}
		if errors.As(err, &se) {
			fields = append(fields,
				observability.F("stripe_type", string(se.Type)),
				observability.F("stripe_code", string(se.Code)),
				observability.F("http_status", se.HTTPStatusCode),
			)
		}
		logctx.FromOr(ctx, c.log).Warn("stripe_call_failed", fields...)
	}
	c.extCounter.Add(1,
		observability.L("peer", peerStripe),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	c.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", peerStripe),
		observability.L("endpoint", endpoint),
	)
	return err
}
