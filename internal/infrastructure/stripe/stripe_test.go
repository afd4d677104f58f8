package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/payment"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

type fakePrice struct {
	ID      string
	Product string
	Amount  int64
	Active  bool
}

// fakeStripe emulates the handful of catalogue endpoints the adapter calls.
type fakeStripe struct {
	mu              sync.Mutex
	products        map[string]bool
	prices          []*fakePrice
	failPriceCreate bool
}

func (f *fakeStripe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_ = r.ParseForm()
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/v1/products":
		id := r.PostForm.Get("id")
		f.products[id] = true
		writeObj(w, map[string]any{"id": id, "object": "product", "active": true})
	case r.Method == http.MethodDelete && strings.HasPrefix(r.URL.Path, "/v1/products/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/products/")
		delete(f.products, id)
		writeObj(w, map[string]any{"id": id, "object": "product", "deleted": true})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/v1/products/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/products/")
		f.products[id] = r.PostForm.Get("active") != "false"
		writeObj(w, map[string]any{"id": id, "object": "product"})
	case r.Method == http.MethodPost && r.URL.Path == "/v1/prices":
		if f.failPriceCreate {
			w.WriteHeader(http.StatusBadRequest)
			writeObj(w, map[string]any{"error": map[string]any{"type": "invalid_request_error", "message": "nope"}})
			return
		}
		var amount int64
		fmt.Sscan(r.PostForm.Get("unit_amount"), &amount)
		p := &fakePrice{ID: fmt.Sprintf("price_%d", len(f.prices)+1), Product: r.PostForm.Get("product"), Amount: amount, Active: true}
		f.prices = append(f.prices, p)
		writeObj(w, map[string]any{"id": p.ID, "object": "price", "active": true, "currency": r.PostForm.Get("currency")})
	case r.Method == http.MethodGet && r.URL.Path == "/v1/prices":
		product := r.URL.Query().Get("product")
		data := []map[string]any{}
		for _, p := range f.prices {
			if p.Product == product && p.Active {
				data = append(data, map[string]any{"id": p.ID, "object": "price", "active": true})
			}
		}
		writeObj(w, map[string]any{"object": "list", "url": "/v1/prices", "has_more": false, "data": data})
	case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/v1/prices/"):
		id := strings.TrimPrefix(r.URL.Path, "/v1/prices/")
		for _, p := range f.prices {
			if p.ID == id {
				p.Active = r.PostForm.Get("active") == "true"
			}
		}
		writeObj(w, map[string]any{"id": id, "object": "price"})
	default:
		w.WriteHeader(http.StatusNotFound)
		writeObj(w, map[string]any{"error": map[string]any{"type": "invalid_request_error"}})
	}
}

func writeObj(w http.ResponseWriter, v any) { _ = json.NewEncoder(w).Encode(v) }

func (f *fakeStripe) activePrices(product string) []*fakePrice {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*fakePrice
	for _, p := range f.prices {
		if p.Product == product && p.Active {
			out = append(out, p)
		}
	}
	return out
}

func newTestClient(t *testing.T) (*Client, *fakeStripe) {
	t.Helper()
	fake := &fakeStripe{products: map[string]bool{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	backend := stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(srv.URL),
		HTTPClient:        srv.Client(),
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     &stripe.LeveledLogger{Level: stripe.LevelNull},
	})
	api := client.New("sk_test_123", &stripe.Backends{API: backend, Connect: backend, Uploads: backend})
	return newClient(api, "lkr", 2*time.Second, nil), fake
}

func TestMinorUnits(t *testing.T) {
	assert.Equal(t, int64(1299), MinorUnits(decimal.RequireFromString("12.99")))
	assert.Equal(t, int64(1000), MinorUnits(decimal.RequireFromString("10")))
	assert.Equal(t, int64(1), MinorUnits(decimal.RequireFromString("0.005")))
}

func TestCreateProduct(t *testing.T) {
	c, fake := newTestClient(t)
	err := c.CreateProduct(context.Background(), payment.Listing{
		ProductID: "abc", Name: "Tea", Description: "Black", Image: "tea.png",
		Price: decimal.RequireFromString("12.50"),
	})
	require.NoError(t, err)

	assert.True(t, fake.products["prod_abc"])
	prices := fake.activePrices("prod_abc")
	require.Len(t, prices, 1)
	assert.Equal(t, int64(1250), prices[0].Amount)
}

func TestCreateProductDeletesProductWhenPriceFails(t *testing.T) {
	c, fake := newTestClient(t)
	fake.failPriceCreate = true

	err := c.CreateProduct(context.Background(), payment.Listing{
		ProductID: "abc", Name: "Tea", Description: "Black", Price: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, apperr.ErrProvider)
	_, exists := fake.products["prod_abc"]
	assert.False(t, exists)
}

func TestUpdatePriceRotatesActivePrice(t *testing.T) {
	c, fake := newTestClient(t)
	require.NoError(t, c.CreateProduct(context.Background(), payment.Listing{
		ProductID: "abc", Name: "Tea", Description: "Black", Price: decimal.NewFromInt(10),
	}))

	require.NoError(t, c.UpdatePrice(context.Background(), "abc", decimal.RequireFromString("15")))
	prices := fake.activePrices("prod_abc")
	require.Len(t, prices, 1)
	assert.Equal(t, int64(1500), prices[0].Amount)
}

func TestUpdatePriceRestoresOldPriceOnFailure(t *testing.T) {
	c, fake := newTestClient(t)
	require.NoError(t, c.CreateProduct(context.Background(), payment.Listing{
		ProductID: "abc", Name: "Tea", Description: "Black", Price: decimal.NewFromInt(10),
	}))
	fake.failPriceCreate = true

	err := c.UpdatePrice(context.Background(), "abc", decimal.NewFromInt(15))
	require.ErrorIs(t, err, apperr.ErrProvider)
	prices := fake.activePrices("prod_abc")
	require.Len(t, prices, 1)
	assert.Equal(t, int64(1000), prices[0].Amount)
}

func TestDeactivate(t *testing.T) {
	c, fake := newTestClient(t)
	fake.products["prod_abc"] = true

	require.NoError(t, c.Deactivate(context.Background(), "abc"))
	assert.False(t, fake.products["prod_abc"])
}
