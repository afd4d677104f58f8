package httppresentation

import (
	"context"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	appauth "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/auth"
	applisting "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/listing"
	apporder "github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/order"
	domdelivery "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	domuser "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/shopspring/decimal"
)

type AuthService interface {
	Register(ctx context.Context, in appauth.RegisterInput) (*appauth.Session, error)
	Login(ctx context.Context, email, password string) (*appauth.Session, error)
	Authenticate(ctx context.Context, token string) (application.Caller, error)
}

type ListingService interface {
	ListListings(ctx context.Context) ([]*domproduct.Product, error)
	ListByUser(ctx context.Context, userID string) ([]*domproduct.Product, error)
	CreateListing(ctx context.Context, caller application.Caller, in applisting.CreateListingInput) (*domproduct.Product, error)
	UpdatePrice(ctx context.Context, caller application.Caller, id string, price decimal.Decimal) (*domproduct.Product, error)
	Unlist(ctx context.Context, caller application.Caller, id string) error
}

type OrderService interface {
	CreateOrder(ctx context.Context, caller application.Caller, in apporder.CreateOrderInput) (*apporder.CreateOrderResult, error)
	GetOrder(ctx context.Context, caller application.Caller, id string) (*domorder.Order, error)
}

type DeliveryService interface {
	Assign(ctx context.Context, orderID, personID string) (*domdelivery.Delivery, error)
	StatusForOrder(ctx context.Context, orderID string) (*domdelivery.Delivery, error)
	ListForPerson(ctx context.Context, personID string) ([]*domdelivery.Delivery, error)
	UpdateStatus(ctx context.Context, caller application.Caller, deliveryID, status string) (*domdelivery.Delivery, error)
}

type UserService interface {
	List(ctx context.Context, caller application.Caller) ([]*domuser.User, error)
	Get(ctx context.Context, id string) (*domuser.User, error)
}
