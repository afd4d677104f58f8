package application

import (
	"context"
	"errors"
	"testing"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallerRequire(t *testing.T) {
	require.ErrorIs(t, Caller{}.Require(), apperr.ErrUnauthorized)
	require.NoError(t, Caller{ID: "u1"}.Require())

	manager := Caller{ID: "u1", Role: user.RoleInventoryManager}
	require.NoError(t, manager.Require(user.RoleInventoryManager))
	require.ErrorIs(t, manager.Require(user.RoleDeliveryPerson), ErrForbidden)
}

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, domoutbox.Event) error {
	return errors.New("queue full")
}

type evt struct{}

func (evt) EventName() string   { return "test.event" }
func (evt) AggregateID() string { return "a1" }

func TestRunEndAndPublishNeverPanicWithoutTelemetry(t *testing.T) {
	in := NewInstrumentation(nil, "test")
	ctx, run := in.Begin(context.Background(), "test.run", "Run")

	run.Publish(ctx, failingPublisher{}, evt{})
	run.Publish(ctx, nil, evt{})

	var err error = apperr.NotFound("nothing")
	assert.NotPanics(t, func() { run.End(&err) })
	assert.Equal(t, "NOT_FOUND", run.status)
}
