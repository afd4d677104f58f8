package user

import (
	"context"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"go.opentelemetry.io/otel/attribute"
)

const (
	userService    = "user-service"
	useCaseUserLst = "user.list"
	useCaseUserGet = "user.get"
)

type Service struct {
	users domain.Repository
	in    application.Instrumentation
}

func NewService(users domain.Repository, tel observability.Observability) *Service {
	return &Service{users: users, in: application.NewInstrumentation(tel, userService)}
}

// List returns every user. Only authenticated callers may list.
func (s *Service) List(ctx context.Context, caller application.Caller) (_ []*domain.User, err error) {
	ctx, run := s.in.Begin(ctx, useCaseUserLst, "ListUsers", attribute.String("caller.id", caller.ID))
	defer run.End(&err)

	if err := caller.Require(); err != nil {
		return nil, err
	}
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	run.Field("count", len(users))
	return users, nil
}

func (s *Service) Get(ctx context.Context, id string) (_ *domain.User, err error) {
	ctx, run := s.in.Begin(ctx, useCaseUserGet, "GetUser", attribute.String("user.id", id))
	defer run.End(&err)

	return s.users.FindByID(ctx, id)
}
