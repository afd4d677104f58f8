package product

import (
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound          = apperr.NotFound("no listing found with that id")
	ErrInsufficientStock = apperr.Validation("product quantity is not available")
	ErrInvalidPrice      = apperr.Validation("price must be greater than zero")
	ErrInvalidQuantity   = apperr.Validation("quantity must be zero or greater")
)

type Product struct {
	ID               string
	Name             string
	Description      string
	Price            decimal.Decimal
	Quantity         int
	MainImage        string
	AdditionalImages []string
	IsListed         bool
	ListedBy         string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Draft holds the caller-supplied fields of a new listing.
type Draft struct {
	Name             string
	Description      string
	Price            decimal.Decimal
	Quantity         int
	MainImage        string
	AdditionalImages []string
	ListedBy         string
}

func New(id string, d Draft) (*Product, error) {
	switch {
	case strings.TrimSpace(d.Name) == "":
		return nil, apperr.Validation("a listing must have a name")
	case strings.TrimSpace(d.Description) == "":
		return nil, apperr.Validation("a listing must have a description")
	case strings.TrimSpace(d.MainImage) == "":
		return nil, apperr.Validation("a listing must have a main image")
	case d.ListedBy == "":
		return nil, apperr.Validation("a listing must belong to a user")
	}
	if err := ValidatePrice(d.Price); err != nil {
		return nil, err
	}
	if d.Quantity < 0 {
		return nil, ErrInvalidQuantity
	}

	now := time.Now().UTC()
	return &Product{
		ID:               id,
		Name:             strings.TrimSpace(d.Name),
		Description:      strings.TrimSpace(d.Description),
		Price:            d.Price,
		Quantity:         d.Quantity,
		MainImage:        d.MainImage,
		AdditionalImages: append([]string(nil), d.AdditionalImages...),
		IsListed:         true,
		ListedBy:         d.ListedBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

func ValidatePrice(p decimal.Decimal) error {
	if !p.IsPositive() {
		return ErrInvalidPrice
	}
	return nil
}

// Reserve checks that qty can be taken from the current stock.
// The authoritative check is the repository's conditional decrement.
func (p *Product) Reserve(qty int) error {
	if qty <= 0 {
		return apperr.Validation("quantity must be greater than zero")
	}
	if !p.IsListed {
		return ErrNotFound
	}
	if qty > p.Quantity {
		return ErrInsufficientStock
	}
	return nil
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	c := *p
	c.AdditionalImages = append([]string(nil), p.AdditionalImages...)
	return &c
}
