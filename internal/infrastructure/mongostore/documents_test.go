package mongostore

import (
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestParseIDRejectsNonObjectIDs(t *testing.T) {
	_, err := parseID("not-an-id")
	require.ErrorIs(t, err, ErrInvalidID)
	require.ErrorIs(t, err, apperr.ErrValidation)

	msg, ok := apperr.MessageOf(err)
	require.True(t, ok)
	assert.Equal(t, "invalid id", msg)
}

func TestDecimalRoundTrip(t *testing.T) {
	for _, s := range []string{"0.01", "12.99", "1500", "1234567.891"} {
		v, err := toDecimal128(decimal.RequireFromString(s))
		require.NoError(t, err)
		back, err := fromDecimal128(v)
		require.NoError(t, err)
		assert.Truef(t, decimal.RequireFromString(s).Equal(back), "%s became %s", s, back)
	}
}

func TestOrderDocRoundTrip(t *testing.T) {
	ids := func() string { return primitive.NewObjectID().Hex() }
	o, err := order.New(ids(), ids(), "pay_1", []order.Line{
		{ProductID: ids(), Quantity: 2, Price: decimal.RequireFromString("3.25")},
	})
	require.NoError(t, err)
	o.CreatedAt = o.CreatedAt.Truncate(time.Millisecond)

	doc, err := newOrderDoc(o)
	require.NoError(t, err)
	back, err := doc.toDomain()
	require.NoError(t, err)

	assert.Equal(t, o.ID, back.ID)
	assert.Equal(t, o.CustomerID, back.CustomerID)
	assert.True(t, o.TotalAmount.Equal(back.TotalAmount))
	require.Len(t, back.Lines, 1)
	assert.Equal(t, o.Lines[0].ProductID, back.Lines[0].ProductID)
}

func TestUserDocNestsPasswordHash(t *testing.T) {
	u, err := user.New(primitive.NewObjectID().Hex(), "a@b.lk", "A", "", "hash", user.RoleDeliveryPerson)
	require.NoError(t, err)

	doc, err := newUserDoc(u)
	require.NoError(t, err)
	assert.Equal(t, "hash", doc.Authentication.Password)
	assert.Equal(t, "deliveryPerson", doc.Role)
	assert.Equal(t, u.PasswordHash, doc.toDomain().PasswordHash)
}
