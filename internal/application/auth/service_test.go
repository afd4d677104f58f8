package auth

import (
	"context"
	"testing"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newService(t *testing.T) (*Service, *memory.UserRepository, *security.JWTMaker) {
	t.Helper()
	users := memory.NewUserRepository()
	tokens, err := security.NewJWTMaker("test-secret", time.Hour)
	require.NoError(t, err)
	svc := NewService(users, security.NewBcryptHasher(bcrypt.MinCost), tokens, id.NewUUIDGenerator(),
		RoleSeeds{InventoryManagers: []string{"Boss@Shop.lk"}, DeliveryPersons: []string{"rider@shop.lk"}}, nil)
	return svc, users, tokens
}

func register(email string) RegisterInput {
	return RegisterInput{
		Email:           email,
		Name:            "Ann",
		Password:        "pass1234",
		ConfirmPassword: "pass1234",
	}
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	svc, users, tokens := newService(t)

	sess, err := svc.Register(context.Background(), register(" Ann@Shop.lk "))
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "ann@shop.lk", sess.User.Email)
	assert.Equal(t, user.RoleCustomer, sess.User.Role)

	stored, err := users.FindByEmail(context.Background(), "ann@shop.lk")
	require.NoError(t, err)
	assert.NotEqual(t, "pass1234", stored.PasswordHash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pass1234")))

	claimed, err := tokens.Verify(sess.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claimed.ID)
	assert.Equal(t, user.RoleCustomer, claimed.Role)
}

func TestRegisterAssignsSeededRoles(t *testing.T) {
	svc, _, _ := newService(t)

	sess, err := svc.Register(context.Background(), register("boss@shop.lk"))
	require.NoError(t, err)
	assert.Equal(t, user.RoleInventoryManager, sess.User.Role)

	sess, err = svc.Register(context.Background(), register("rider@shop.lk"))
	require.NoError(t, err)
	assert.Equal(t, user.RoleDeliveryPerson, sess.User.Role)
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()

	cases := map[string]struct {
		mutate func(*RegisterInput)
		want   error
	}{
		"bad email":      {func(in *RegisterInput) { in.Email = "not-an-email" }, ErrInvalidEmail},
		"short password": {func(in *RegisterInput) { in.Password, in.ConfirmPassword = "short", "short" }, ErrPasswordTooShort},
		"mismatch":       {func(in *RegisterInput) { in.ConfirmPassword = "pass12345" }, ErrPasswordMismatch},
		"missing name":   {func(in *RegisterInput) { in.Name = " " }, apperr.ErrValidation},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := register("ann@shop.lk")
			tc.mutate(&in)
			_, err := svc.Register(ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	_, err := svc.Register(ctx, register("ann@shop.lk"))
	require.NoError(t, err)
	_, err = svc.Register(ctx, register("ANN@shop.lk"))
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)

	in := register("bob@shop.lk")
	in.PhoneNumber = "0771234567"
	_, err = svc.Register(ctx, in)
	require.NoError(t, err)
	in.Email = "carl@shop.lk"
	_, err = svc.Register(ctx, in)
	assert.ErrorIs(t, err, user.ErrDuplicatePhone)
}

func TestLogin(t *testing.T) {
	svc, _, _ := newService(t)
	ctx := context.Background()
	_, err := svc.Register(ctx, register("ann@shop.lk"))
	require.NoError(t, err)

	sess, err := svc.Login(ctx, "ANN@shop.lk", "pass1234")
	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)

	_, err = svc.Login(ctx, "ann@shop.lk", "wrong-pass")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Login(ctx, "nobody@shop.lk", "pass1234")
	assert.ErrorIs(t, err, ErrBadCredentials)
	assert.Equal(t, "incorrect email or password", err.Error())

	_, err = svc.Login(ctx, "", "pass1234")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAuthenticate(t *testing.T) {
	svc, _, tokens := newService(t)
	ctx := context.Background()
	sess, err := svc.Register(ctx, register("ann@shop.lk"))
	require.NoError(t, err)

	caller, err := svc.Authenticate(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.User.ID, caller.ID)
	assert.Equal(t, user.RoleCustomer, caller.Role)

	_, err = svc.Authenticate(ctx, "")
	assert.ErrorIs(t, err, application.ErrNotLoggedIn)

	_, err = svc.Authenticate(ctx, "garbage")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	ghost, _, err := tokens.Issue(application.Caller{ID: "ghost", Role: user.RoleCustomer})
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, ghost)
	assert.ErrorIs(t, err, ErrUserGone)
}
