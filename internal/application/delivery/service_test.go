package delivery

import (
	"context"
	"testing"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/application"
	domain "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/id"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type capturePublisher struct{ events []domoutbox.Event }

func (p *capturePublisher) Publish(_ context.Context, e domoutbox.Event) error {
	p.events = append(p.events, e)
	return nil
}

type DeliverySuite struct {
	suite.Suite
	store *memory.Store
	pub   *capturePublisher
	svc   *Service
	rider application.Caller
}

func TestDeliverySuite(t *testing.T) {
	suite.Run(t, new(DeliverySuite))
}

func (s *DeliverySuite) SetupTest() {
	ctx := context.Background()
	s.store = memory.NewStore()
	s.pub = &capturePublisher{}
	s.svc = NewService(s.store.Deliveries, s.store.Orders, s.store.Users, s.pub, id.NewUUIDGenerator(), nil)

	rider, err := user.New("rider", "rider@shop.lk", "Rider", "", "hash", user.RoleDeliveryPerson)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Users.Insert(ctx, rider))
	buyer, err := user.New("buyer", "buyer@shop.lk", "Buyer", "", "hash", user.RoleCustomer)
	s.Require().NoError(err)
	s.Require().NoError(s.store.Users.Insert(ctx, buyer))

	o, err := order.New("o1", "buyer", "pi", []order.Line{{ProductID: "p1", Quantity: 1, Price: decimal.NewFromInt(5)}})
	s.Require().NoError(err)
	s.Require().NoError(s.store.Orders.Insert(ctx, o))

	s.rider = application.Caller{ID: "rider", Role: user.RoleDeliveryPerson}
}

func (s *DeliverySuite) TestAssign() {
	ctx := context.Background()

	d, err := s.svc.Assign(ctx, "o1", "rider")
	s.Require().NoError(err)
	s.Equal(domain.StatusPackaging, d.Status)

	_, err = s.svc.Assign(ctx, "o1", "rider")
	s.ErrorIs(err, domain.ErrAlreadyAssigned)

	got, err := s.svc.StatusForOrder(ctx, "o1")
	s.Require().NoError(err)
	s.Equal(d.ID, got.ID)

	list, err := s.svc.ListForPerson(ctx, "rider")
	s.Require().NoError(err)
	s.Len(list, 1)
}

func (s *DeliverySuite) TestAssignRejectsUnknownOrderAndWrongPerson() {
	ctx := context.Background()

	_, err := s.svc.Assign(ctx, "missing", "rider")
	s.ErrorIs(err, order.ErrNotFound)

	_, err = s.svc.Assign(ctx, "o1", "nobody")
	s.ErrorIs(err, ErrPersonNotFound)

	_, err = s.svc.Assign(ctx, "o1", "buyer")
	s.ErrorIs(err, ErrNotDeliverer)

	_, err = s.svc.StatusForOrder(ctx, "o1")
	s.ErrorIs(err, domain.ErrNotFound)
}

func (s *DeliverySuite) TestLifecycle() {
	ctx := context.Background()
	d, err := s.svc.Assign(ctx, "o1", "rider")
	s.Require().NoError(err)

	_, err = s.svc.UpdateStatus(ctx, s.rider, d.ID, "delivered")
	s.ErrorIs(err, domain.ErrInvalidTransition)

	for _, st := range []string{"picked up", "in transit", "delivered"} {
		got, err := s.svc.UpdateStatus(ctx, s.rider, d.ID, st)
		s.Require().NoError(err)
		s.Equal(domain.Status(st), got.Status)
	}

	_, err = s.svc.UpdateStatus(ctx, s.rider, d.ID, "failed")
	s.ErrorIs(err, domain.ErrInvalidTransition)

	s.Require().Len(s.pub.events, 3)
	last := s.pub.events[2].(domain.StatusChangedEvent)
	s.Equal(domain.StatusInTransit, last.From)
	s.Equal(domain.StatusDelivered, last.To)
}

func (s *DeliverySuite) TestUpdateStatusAuthorization() {
	ctx := context.Background()
	d, err := s.svc.Assign(ctx, "o1", "rider")
	s.Require().NoError(err)

	_, err = s.svc.UpdateStatus(ctx, application.Caller{ID: "buyer", Role: user.RoleCustomer}, d.ID, "picked up")
	s.ErrorIs(err, application.ErrForbidden)

	_, err = s.svc.UpdateStatus(ctx, application.Caller{ID: "other", Role: user.RoleDeliveryPerson}, d.ID, "picked up")
	s.ErrorIs(err, domain.ErrNotAssignee)

	_, err = s.svc.UpdateStatus(ctx, s.rider, d.ID, "lost")
	s.Error(err)

	_, err = s.svc.UpdateStatus(ctx, s.rider, "missing", "picked up")
	s.ErrorIs(err, domain.ErrNotFound)
}
