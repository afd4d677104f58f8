package product

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func validDraft() Draft {
	return Draft{
		Name:        "Tea",
		Description: "Ceylon black tea",
		Price:       decimal.RequireFromString("12.99"),
		Quantity:    4,
		MainImage:   "tea.png",
		ListedBy:    "u1",
	}
}

func TestNewListing(t *testing.T) {
	p, err := New("p1", validDraft())
	require.NoError(t, err)
	require.True(t, p.IsListed)
	require.Equal(t, 4, p.Quantity)
}

func TestNewListingValidation(t *testing.T) {
	d := validDraft()
	d.Price = decimal.Zero
	_, err := New("p1", d)
	require.ErrorIs(t, err, ErrInvalidPrice)

	d = validDraft()
	d.Quantity = -1
	_, err = New("p1", d)
	require.ErrorIs(t, err, ErrInvalidQuantity)

	d = validDraft()
	d.MainImage = ""
	_, err = New("p1", d)
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestReserve(t *testing.T) {
	p, err := New("p1", validDraft())
	require.NoError(t, err)

	require.NoError(t, p.Reserve(4))
	require.ErrorIs(t, p.Reserve(5), ErrInsufficientStock)
	require.ErrorIs(t, p.Reserve(0), apperr.ErrValidation)

	p.IsListed = false
	require.ErrorIs(t, p.Reserve(1), ErrNotFound)
}
