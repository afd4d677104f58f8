package listing

import (
	"context"
	"fmt"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application/saga"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/payment"
	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	listingService = "listing-service"

	useCaseList        = "listing.list"
	useCaseListByUser  = "listing.list_by_user"
	useCaseCreate      = "listing.create"
	useCaseUpdatePrice = "listing.update_price"
	useCaseUnlist      = "listing.unlist"
)

// Service manages listings and keeps the payment provider's catalogue in
// step with them.
type Service struct {
	products  domain.Repository
	provider  payment.Provider
	publisher domoutbox.Publisher
	ids       application.IDGenerator
	in        application.Instrumentation
}

func NewService(
	products domain.Repository,
	provider payment.Provider,
	publisher domoutbox.Publisher,
	ids application.IDGenerator,
	tel observability.Observability,
) *Service {
	return &Service{
		products:  products,
		provider:  provider,
		publisher: publisher,
		ids:       ids,
		in:        application.NewInstrumentation(tel, listingService),
	}
}

// ListListings returns every listed product, newest first.
func (s *Service) ListListings(ctx context.Context) (_ []*domain.Product, err error) {
	ctx, run := s.in.Begin(ctx, useCaseList, "ListListings")
	defer run.End(&err)

	out, err := s.products.List(ctx, domain.Filter{ListedOnly: true})
	if err != nil {
		return nil, fmt.Errorf("listing: list: %w", err)
	}
	run.Field("count", len(out))
	return out, nil
}

// ListByUser returns the products a user has listed, including unlisted ones.
func (s *Service) ListByUser(ctx context.Context, userID string) (_ []*domain.Product, err error) {
	ctx, run := s.in.Begin(ctx, useCaseListByUser, "ListByUser", attribute.String("listing.listed_by", userID))
	defer run.End(&err)

	out, err := s.products.List(ctx, domain.Filter{ListedBy: userID})
	if err != nil {
		return nil, fmt.Errorf("listing: list by user: %w", err)
	}
	run.Field("count", len(out))
	return out, nil
}

type CreateListingInput struct {
	Name             string
	Description      string
	Price            decimal.Decimal
	Quantity         int
	MainImage        string
	AdditionalImages []string
}

// CreateListing stores the product and registers it with the payment
// provider. If the provider rejects it, the stored product is deleted.
func (s *Service) CreateListing(ctx context.Context, caller application.Caller, in CreateListingInput) (_ *domain.Product, err error) {
	ctx, run := s.in.Begin(ctx, useCaseCreate, "CreateListing", attribute.String("caller.id", caller.ID))
	defer run.End(&err)

	if err := caller.Require(user.RoleInventoryManager); err != nil {
		return nil, err
	}
	p, err := domain.New(s.ids.NewID(), domain.Draft{
		Name:             in.Name,
		Description:      in.Description,
		Price:            in.Price,
		Quantity:         in.Quantity,
		MainImage:        in.MainImage,
		AdditionalImages: in.AdditionalImages,
		ListedBy:         caller.ID,
	})
	if err != nil {
		return nil, err
	}
	run.Field("product_id", p.ID)
	run.Span().SetAttributes(attribute.String("listing.id", p.ID))

	err = saga.New(useCaseCreate, s.in.Telemetry()).
		AddStep("insert_product",
			func(ctx context.Context) error { return s.products.Insert(ctx, p) },
			func(ctx context.Context) error { return s.products.Delete(ctx, p.ID) },
		).
		AddStep("provider_create_product",
			func(ctx context.Context) error {
				return s.provider.CreateProduct(ctx, payment.Listing{
					ProductID:   p.ID,
					Name:        p.Name,
					Description: p.Description,
					Image:       p.MainImage,
					Price:       p.Price,
				})
			},
			nil,
		).
		Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing: create: %w", err)
	}

	run.Publish(ctx, s.publisher, domain.NewListingCreatedEvent(p))
	return p, nil
}

// UpdatePrice writes the new price locally, then rotates the provider price.
// A provider failure restores the previous local price.
func (s *Service) UpdatePrice(ctx context.Context, caller application.Caller, id string, price decimal.Decimal) (_ *domain.Product, err error) {
	ctx, run := s.in.Begin(ctx, useCaseUpdatePrice, "UpdatePrice",
		attribute.String("caller.id", caller.ID),
		attribute.String("listing.id", id),
	)
	defer run.End(&err)

	if err := caller.Require(user.RoleInventoryManager); err != nil {
		return nil, err
	}
	if err := domain.ValidatePrice(price); err != nil {
		return nil, err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	oldPrice := p.Price

	err = saga.New(useCaseUpdatePrice, s.in.Telemetry()).
		AddStep("write_price",
			func(ctx context.Context) error { return s.products.UpdatePrice(ctx, id, price) },
			func(ctx context.Context) error { return s.products.UpdatePrice(ctx, id, oldPrice) },
		).
		AddStep("provider_rotate_price",
			func(ctx context.Context) error { return s.provider.UpdatePrice(ctx, id, price) },
			nil,
		).
		Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing: update price: %w", err)
	}

	p.Price = price
	run.Field("old_price", oldPrice.String())
	run.Field("new_price", price.String())
	run.Publish(ctx, s.publisher, domain.NewPriceChangedEvent(id, oldPrice, price))
	return p, nil
}

// Unlist hides a product from the public listing and archives it at the provider.
func (s *Service) Unlist(ctx context.Context, caller application.Caller, id string) (err error) {
	ctx, run := s.in.Begin(ctx, useCaseUnlist, "Unlist",
		attribute.String("caller.id", caller.ID),
		attribute.String("listing.id", id),
	)
	defer run.End(&err)

	if err := caller.Require(user.RoleInventoryManager); err != nil {
		return err
	}
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !p.IsListed {
		run.Status("ALREADY_UNLISTED")
		return nil
	}

	err = saga.New(useCaseUnlist, s.in.Telemetry()).
		AddStep("unlist",
			func(ctx context.Context) error { return s.products.SetListed(ctx, id, false) },
			func(ctx context.Context) error { return s.products.SetListed(ctx, id, true) },
		).
		AddStep("provider_deactivate",
			func(ctx context.Context) error { return s.provider.Deactivate(ctx, id) },
			nil,
		).
		Run(ctx)
	if err != nil {
		return fmt.Errorf("listing: unlist: %w", err)
	}
	return nil
}
