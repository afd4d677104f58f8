package mongostore

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoreSuite runs against a live server; set MONGODB_TEST_URL to enable it.
type StoreSuite struct {
	suite.Suite
	db       *DB
	users    *UserRepository
	products *ProductRepository
	delivery *DeliveryRepository
}

func TestStoreSuite(t *testing.T) {
	if os.Getenv("MONGODB_TEST_URL") == "" {
		t.Skip("MONGODB_TEST_URL not set, skipping mongo store tests")
	}
	suite.Run(t, new(StoreSuite))
}

func (s *StoreSuite) SetupSuite() {
	ctx := context.Background()
	db, err := Connect(ctx, Options{
		URL:      os.Getenv("MONGODB_TEST_URL"),
		Database: "minishop_test_" + primitive.NewObjectID().Hex(),
		Timeout:  5 * time.Second,
	}, nil)
	s.Require().NoError(err)
	s.Require().NoError(db.EnsureIndexes(ctx))

	s.db = db
	s.users = NewUserRepository(db)
	s.products = NewProductRepository(db)
	s.delivery = NewDeliveryRepository(db)
}

func (s *StoreSuite) TearDownSuite() {
	ctx := context.Background()
	_ = s.db.db.Drop(ctx)
	_ = s.db.Close(ctx)
}

func (s *StoreSuite) newID() string { return primitive.NewObjectID().Hex() }

func (s *StoreSuite) seedProduct(qty int) *product.Product {
	p, err := product.New(s.newID(), product.Draft{
		Name: "Tea", Description: "Black tea", Price: decimal.RequireFromString("9.99"),
		Quantity: qty, MainImage: "tea.png", ListedBy: s.newID(),
	})
	s.Require().NoError(err)
	s.Require().NoError(s.products.Insert(context.Background(), p))
	return p
}

func (s *StoreSuite) TestUserUniqueEmail() {
	ctx := context.Background()
	u, err := user.New(s.newID(), "dup@shop.lk", "Dup", "", "hash", "")
	s.Require().NoError(err)
	s.Require().NoError(s.users.Insert(ctx, u))

	again, err := user.New(s.newID(), "DUP@shop.lk", "Dup", "", "hash", "")
	s.Require().NoError(err)
	s.Require().ErrorIs(s.users.Insert(ctx, again), user.ErrDuplicateEmail)

	got, err := s.users.FindByEmail(ctx, "dup@shop.lk")
	s.Require().NoError(err)
	s.Equal(u.ID, got.ID)
}

func (s *StoreSuite) TestPriceRoundTrip() {
	ctx := context.Background()
	p := s.seedProduct(1)

	s.Require().NoError(s.products.UpdatePrice(ctx, p.ID, decimal.RequireFromString("15.50")))
	got, err := s.products.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.True(decimal.RequireFromString("15.50").Equal(got.Price))
}

func (s *StoreSuite) TestConcurrentDecrementNeverOversells() {
	ctx := context.Background()
	p := s.seedProduct(5)

	var mu sync.Mutex
	succeeded := 0
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.products.DecrementStock(ctx, p.ID, 1)
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !errors.Is(err, product.ErrInsufficientStock) {
				s.T().Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(5, succeeded)
	got, err := s.products.FindByID(ctx, p.ID)
	s.Require().NoError(err)
	s.Equal(0, got.Quantity)
}

func (s *StoreSuite) TestDecrementMissingProduct() {
	s.Require().ErrorIs(s.products.DecrementStock(context.Background(), s.newID(), 1), product.ErrNotFound)
}

func (s *StoreSuite) TestOneDeliveryPerOrder() {
	ctx := context.Background()
	orderID := s.newID()
	d, err := delivery.New(s.newID(), orderID, s.newID())
	s.Require().NoError(err)
	s.Require().NoError(s.delivery.Insert(ctx, d))

	other, err := delivery.New(s.newID(), orderID, s.newID())
	s.Require().NoError(err)
	s.Require().ErrorIs(s.delivery.Insert(ctx, other), delivery.ErrAlreadyAssigned)

	s.Require().NoError(s.delivery.UpdateStatus(ctx, d.ID, delivery.StatusPackaging, delivery.StatusPickedUp))
	got, err := s.delivery.FindByOrderID(ctx, orderID)
	s.Require().NoError(err)
	s.Equal(delivery.StatusPickedUp, got.Status)
}

func TestInvalidIDNeedsNoServer(t *testing.T) {
	repo := NewProductRepository(&DB{})
	_, err := repo.FindByID(context.Background(), "xyz")
	require.ErrorIs(t, err, ErrInvalidID)
}
