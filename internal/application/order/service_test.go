package order

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domoutbox.Event
}

func (p *recordingPublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

type failingOrders struct {
	*memory.OrderRepository
}

func (failingOrders) Insert(context.Context, *domain.Order) error {
	return errors.New("disk full")
}

type failingDecrement struct {
	*memory.ProductRepository
	failOn string
}

func (f failingDecrement) DecrementStock(ctx context.Context, id string, qty int) error {
	if id == f.failOn {
		return product.ErrInsufficientStock
	}
	return f.ProductRepository.DecrementStock(ctx, id, qty)
}

var customer = application.Caller{ID: "c1", Role: user.RoleCustomer}

func seed(t *testing.T, repo *memory.ProductRepository, name, price string, qty int) *product.Product {
	t.Helper()
	p, err := product.New(name, product.Draft{
		Name:        name,
		Description: name + " description",
		Price:       decimal.RequireFromString(price),
		Quantity:    qty,
		MainImage:   name + ".png",
		ListedBy:    "m1",
	})
	require.NoError(t, err)
	require.NoError(t, repo.Insert(context.Background(), p))
	return p
}

func stock(t *testing.T, repo product.Repository, id string) int {
	t.Helper()
	p, err := repo.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p.Quantity
}

func TestCreateOrder(t *testing.T) {
	products := memory.NewProductRepository()
	orders := memory.NewOrderRepository()
	pub := &recordingPublisher{}
	tea := seed(t, products, "tea", "12.50", 10)
	cup := seed(t, products, "cup", "3.25", 4)
	svc := NewService(orders, products, memory.Transactor{}, pub, id.NewUUIDGenerator(), nil)

	res, err := svc.CreateOrder(context.Background(), customer, CreateOrderInput{
		Lines: []LineInput{
			{ProductID: tea.ID, Quantity: 2},
			{ProductID: cup.ID, Quantity: 1},
			{ProductID: tea.ID, Quantity: 1},
		},
		PaymentID: "pi_123",
	})
	require.NoError(t, err)
	assert.True(t, res.TotalAmount.Equal(decimal.RequireFromString("40.75")), res.TotalAmount.String())
	assert.Equal(t, 7, stock(t, products, tea.ID))
	assert.Equal(t, 3, stock(t, products, cup.ID))

	o, err := svc.GetOrder(context.Background(), customer, res.OrderID)
	require.NoError(t, err)
	assert.Len(t, o.Lines, 2)
	assert.Equal(t, "pi_123", o.PaymentID)

	require.Len(t, pub.events, 1)
	assert.Equal(t, "order.created", pub.events[0].EventName())
	assert.Equal(t, res.OrderID, pub.events[0].AggregateID())
}

func TestCreateOrderValidation(t *testing.T) {
	products := memory.NewProductRepository()
	tea := seed(t, products, "tea", "12.50", 1)
	svc := NewService(memory.NewOrderRepository(), products, memory.Transactor{}, nil, id.NewUUIDGenerator(), nil)
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, application.Caller{}, CreateOrderInput{})
	assert.ErrorIs(t, err, application.ErrNotLoggedIn)

	_, err = svc.CreateOrder(ctx, customer, CreateOrderInput{PaymentID: "pi"})
	assert.ErrorIs(t, err, domain.ErrNoLines)

	_, err = svc.CreateOrder(ctx, customer, CreateOrderInput{Lines: []LineInput{{ProductID: tea.ID, Quantity: 1}}})
	assert.ErrorIs(t, err, domain.ErrPaymentRequired)

	_, err = svc.CreateOrder(ctx, customer, CreateOrderInput{Lines: []LineInput{{ProductID: tea.ID, Quantity: 0}}, PaymentID: "pi"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.CreateOrder(ctx, customer, CreateOrderInput{Lines: []LineInput{{ProductID: "missing", Quantity: 1}}, PaymentID: "pi"})
	assert.ErrorIs(t, err, product.ErrNotFound)

	_, err = svc.CreateOrder(ctx, customer, CreateOrderInput{Lines: []LineInput{{ProductID: tea.ID, Quantity: 2}}, PaymentID: "pi"})
	assert.ErrorIs(t, err, product.ErrInsufficientStock)
	assert.Equal(t, 1, stock(t, products, tea.ID))
}

func TestCreateOrderRejectsUnlistedProduct(t *testing.T) {
	products := memory.NewProductRepository()
	tea := seed(t, products, "tea", "12.50", 5)
	require.NoError(t, products.SetListed(context.Background(), tea.ID, false))
	svc := NewService(memory.NewOrderRepository(), products, memory.Transactor{}, nil, id.NewUUIDGenerator(), nil)

	_, err := svc.CreateOrder(context.Background(), customer, CreateOrderInput{
		Lines:     []LineInput{{ProductID: tea.ID, Quantity: 1}},
		PaymentID: "pi",
	})
	assert.ErrorIs(t, err, product.ErrNotFound)
	assert.Equal(t, 5, stock(t, products, tea.ID))
}

func TestCreateOrderRestoresStockWhenInsertFails(t *testing.T) {
	products := memory.NewProductRepository()
	tea := seed(t, products, "tea", "12.50", 5)
	cup := seed(t, products, "cup", "3.25", 5)
	orders := failingOrders{memory.NewOrderRepository()}
	svc := NewService(orders, products, memory.Transactor{}, nil, id.NewUUIDGenerator(), nil)

	_, err := svc.CreateOrder(context.Background(), customer, CreateOrderInput{
		Lines:     []LineInput{{ProductID: tea.ID, Quantity: 2}, {ProductID: cup.ID, Quantity: 3}},
		PaymentID: "pi",
	})
	require.Error(t, err)
	assert.Equal(t, 5, stock(t, products, tea.ID))
	assert.Equal(t, 5, stock(t, products, cup.ID))
}

func TestCreateOrderRestoresEarlierLinesWhenLaterLineRunsOut(t *testing.T) {
	base := memory.NewProductRepository()
	tea := seed(t, base, "tea", "12.50", 5)
	cup := seed(t, base, "cup", "3.25", 5)
	products := failingDecrement{ProductRepository: base, failOn: cup.ID}
	orders := memory.NewOrderRepository()
	svc := NewService(orders, products, memory.Transactor{}, nil, id.NewUUIDGenerator(), nil)

	_, err := svc.CreateOrder(context.Background(), customer, CreateOrderInput{
		Lines:     []LineInput{{ProductID: tea.ID, Quantity: 2}, {ProductID: cup.ID, Quantity: 1}},
		PaymentID: "pi",
	})
	require.ErrorIs(t, err, product.ErrInsufficientStock)
	assert.Equal(t, 5, stock(t, base, tea.ID))
	assert.Equal(t, 5, stock(t, base, cup.ID))
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	products := memory.NewProductRepository()
	tea := seed(t, products, "tea", "1.00", 5)
	svc := NewService(memory.NewOrderRepository(), products, memory.Transactor{}, nil, id.NewUUIDGenerator(), nil)

	var (
		wg      sync.WaitGroup
		success atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.CreateOrder(context.Background(), customer, CreateOrderInput{
				Lines:     []LineInput{{ProductID: tea.ID, Quantity: 1}},
				PaymentID: "pi",
			})
			if err == nil {
				success.Add(1)
				return
			}
			assert.ErrorIs(t, err, product.ErrInsufficientStock)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(5), success.Load())
	assert.Equal(t, 0, stock(t, products, tea.ID))
}

func TestGetOrderHidesOtherCustomersOrders(t *testing.T) {
	products := memory.NewProductRepository()
	tea := seed(t, products, "tea", "1.00", 5)
	svc := NewService(memory.NewOrderRepository(), products, memory.Transactor{}, nil, id.NewUUIDGenerator(), nil)

	res, err := svc.CreateOrder(context.Background(), customer, CreateOrderInput{
		Lines:     []LineInput{{ProductID: tea.ID, Quantity: 1}},
		PaymentID: "pi",
	})
	require.NoError(t, err)

	_, err = svc.GetOrder(context.Background(), application.Caller{ID: "c2", Role: user.RoleCustomer}, res.OrderID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.GetOrder(context.Background(), customer, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
