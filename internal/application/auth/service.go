// Package auth registers users, logs them in and resolves bearer
// credentials back to callers.
package auth

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	authService         = "auth-service"
	useCaseRegister     = "auth.register"
	useCaseLogin        = "auth.login"
	useCaseAuthenticate = "auth.authenticate"

	minPasswordLength = 8
)

var (
	ErrBadCredentials   = apperr.Unauthorized("incorrect email or password")
	ErrPasswordMismatch = apperr.Validation("passwords are not the same")
	ErrPasswordTooShort = apperr.Validation("password must be at least 8 characters")
	ErrInvalidEmail     = apperr.Validation("please provide a valid email")
	ErrUserGone         = apperr.Unauthorized("the user belonging to this token no longer exists")
	ErrBadToken         = apperr.Unauthorized("invalid token. please log in again")
)

// RoleSeeds maps emails to the staff role they receive on registration.
type RoleSeeds struct {
	InventoryManagers []string
	DeliveryPersons   []string
}

func (s RoleSeeds) roleFor(email string) user.Role {
	for _, e := range s.InventoryManagers {
		if user.NormalizeEmail(e) == email {
			return user.RoleInventoryManager
		}
	}
	for _, e := range s.DeliveryPersons {
		if user.NormalizeEmail(e) == email {
			return user.RoleDeliveryPerson
		}
	}
	return user.RoleCustomer
}

type RegisterInput struct {
	Email           string
	Name            string
	Password        string
	ConfirmPassword string
	PhoneNumber     string
}

// Session is an issued credential together with the user it belongs to.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *user.User
}

type Service struct {
	users  user.Repository
	hasher PasswordHasher
	tokens TokenIssuer
	ids    application.IDGenerator
	seeds  RoleSeeds
	in     application.Instrumentation
}

func NewService(
	users user.Repository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	ids application.IDGenerator,
	seeds RoleSeeds,
	tel observability.Observability,
) *Service {
	return &Service{
		users:  users,
		hasher: hasher,
		tokens: tokens,
		ids:    ids,
		seeds:  seeds,
		in:     application.NewInstrumentation(tel, authService),
	}
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (_ *Session, err error) {
	ctx, run := s.in.Begin(ctx, useCaseRegister, "Register")
	defer run.End(&err)

	email := user.NormalizeEmail(in.Email)
	switch {
	case email == "":
		return nil, apperr.Validation("please provide your email")
	case strings.TrimSpace(in.Name) == "":
		return nil, apperr.Validation("please provide your name")
	case in.Password == "":
		return nil, apperr.Validation("please provide a password")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, ErrInvalidEmail
	}
	if len(in.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	if in.Password != in.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, apperr.Internal(err, "could not hash password")
	}
	u, err := user.New(s.ids.NewID(), email, in.Name, in.PhoneNumber, hash, s.seeds.roleFor(email))
	if err != nil {
		return nil, err
	}
	if err := s.users.Insert(ctx, u); err != nil {
		return nil, err
	}

	run.Field("user_id", u.ID)
	run.Field("role", string(u.Role))
	run.Span().SetAttributes(attribute.String("user.id", u.ID), attribute.String("user.role", string(u.Role)))
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, email, password string) (_ *Session, err error) {
	ctx, run := s.in.Begin(ctx, useCaseLogin, "Login")
	defer run.End(&err)

	email = user.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("please provide email and password")
	}

	u, err := s.users.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrNotFound) {
		run.Status("BAD_CREDENTIALS")
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		run.Status("BAD_CREDENTIALS")
		return nil, ErrBadCredentials
	}

	run.Field("user_id", u.ID)
	return s.issue(u)
}

// Authenticate resolves a bearer token to the caller it was issued to. The
// user is re-read so deleted accounts and role changes take effect.
func (s *Service) Authenticate(ctx context.Context, token string) (_ application.Caller, err error) {
	ctx, run := s.in.Begin(ctx, useCaseAuthenticate, "Authenticate")
	defer run.End(&err)

	if strings.TrimSpace(token) == "" {
		return application.Caller{}, application.ErrNotLoggedIn
	}
	claimed, err := s.tokens.Verify(token)
	if err != nil {
		run.Field("reason", err.Error())
		return application.Caller{}, ErrBadToken
	}

	u, err := s.users.FindByID(ctx, claimed.ID)
	if errors.Is(err, user.ErrNotFound) {
		return application.Caller{}, ErrUserGone
	}
	if err != nil {
		return application.Caller{}, err
	}
	run.Field("user_id", u.ID)
	return callerOf(u), nil
}

func (s *Service) issue(u *user.User) (*Session, error) {
	token, exp, err := s.tokens.Issue(callerOf(u))
	if err != nil {
		return nil, apperr.Internal(err, "could not issue token")
	}
	return &Session{Token: token, ExpiresAt: exp, User: u}, nil
}

func callerOf(u *user.User) application.Caller {
	return application.Caller{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
