package order

import (
	"testing"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestNewComputesTotal(t *testing.T) {
	o, err := New("o1", "c1", "pay_1", []Line{
		{ProductID: "p1", Quantity: 2, Price: decimal.RequireFromString("10.50")},
		{ProductID: "p2", Quantity: 3, Price: decimal.RequireFromString("0.10")},
	})
	require.NoError(t, err)
	require.True(t, decimal.RequireFromString("21.30").Equal(o.TotalAmount), o.TotalAmount.String())
	require.Len(t, o.Lines, 2)
}

func TestNewRejectsInvalidInput(t *testing.T) {
	line := []Line{{ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(1)}}

	_, err := New("o1", "", "pay", line)
	require.ErrorIs(t, err, apperr.ErrUnauthorized)

	_, err = New("o1", "c1", "pay", nil)
	require.ErrorIs(t, err, ErrNoLines)

	_, err = New("o1", "c1", "", line)
	require.ErrorIs(t, err, ErrPaymentRequired)

	_, err = New("o1", "c1", "pay", []Line{{ProductID: "p1", Quantity: 0}})
	require.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestCloneIsDeep(t *testing.T) {
	o, err := New("o1", "c1", "pay", []Line{{ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(5)}})
	require.NoError(t, err)

	c := o.Clone()
	c.Lines[0].Quantity = 9
	require.Equal(t, 1, o.Lines[0].Quantity)
}
