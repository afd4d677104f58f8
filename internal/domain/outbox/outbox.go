package outbox

import "context"

// Event is a domain event published after a state change is committed.
type Event interface {
	EventName() string
	AggregateID() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
