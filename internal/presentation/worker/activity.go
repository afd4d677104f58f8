package workerpresentation

import (
	"context"

	domdelivery "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/delivery"
	domorder "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/order"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	domproduct "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/product"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
	"go.opentelemetry.io/otel/attribute"
)

const activityWorker = "activity_worker"

// ActivityWorker records every domain event as one domain_event log line and
// counts it in domain_events_total.
type ActivityWorker struct {
	subscriber domoutbox.Subscriber
	tel        observability.Observability
	log        observability.Logger
	events     observability.Counter // domain_events_total{event}
}

func NewActivityWorker(subscriber domoutbox.Subscriber, tel observability.Observability) *ActivityWorker {
	tel = observability.OrNop(tel)
	return &ActivityWorker{
		subscriber: subscriber,
		tel:        tel,
		log:        tel.Logger().With(observability.F("worker", activityWorker)),
		events:     tel.Metrics().Counter(observability.MDomainEvents),
	}
}

func (w *ActivityWorker) Start() {
	if w.subscriber == nil {
		return
	}
	for _, name := range []string{
		domorder.OrderCreatedEvent{}.EventName(),
		domproduct.ListingCreatedEvent{}.EventName(),
		domproduct.PriceChangedEvent{}.EventName(),
		domdelivery.StatusChangedEvent{}.EventName(),
	} {
		w.subscriber.Subscribe(name, w.handle)
	}
}

func (w *ActivityWorker) handle(ctx context.Context, e domoutbox.Event) error {
	name := e.EventName()
	ctx, span := w.tel.Tracer().Start(ctx, "Event."+name,
		attribute.String("event", name),
		attribute.String("aggregate.id", e.AggregateID()),
	)
	defer span.End()

	ctx = WithEventContext(ctx, logctx.FromOr(ctx, w.log), w.tel, span.SpanContext(), map[string]string{
		"event":        name,
		"aggregate_id": e.AggregateID(),
	})

	w.events.Add(1, observability.L("event", name))
	logctx.FromOr(ctx, w.log).Info("domain_event", eventFields(e)...)
	return nil
}

func eventFields(e domoutbox.Event) []observability.Field {
	switch evt := e.(type) {
	case domorder.OrderCreatedEvent:
		return []observability.Field{
			observability.F("customer_id", evt.CustomerID),
			observability.F("lines", evt.Lines),
			observability.F("total_amount", evt.TotalAmount.String()),
			observability.F("payment_id", evt.PaymentID),
			observability.F("occurred_at", evt.OccurredAt),
		}
	case domproduct.ListingCreatedEvent:
		return []observability.Field{
			observability.F("listed_by", evt.ListedBy),
			observability.F("price", evt.Price.String()),
			observability.F("quantity", evt.Quantity),
			observability.F("occurred_at", evt.OccurredAt),
		}
	case domproduct.PriceChangedEvent:
		return []observability.Field{
			observability.F("old_price", evt.OldPrice.String()),
			observability.F("new_price", evt.NewPrice.String()),
			observability.F("occurred_at", evt.OccurredAt),
		}
	case domdelivery.StatusChangedEvent:
		return []observability.Field{
			observability.F("order_id", evt.OrderID),
			observability.F("from", string(evt.From)),
			observability.F("to", string(evt.To)),
			observability.F("occurred_at", evt.OccurredAt),
		}
	}
	return nil
}
