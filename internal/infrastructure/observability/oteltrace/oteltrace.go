package oteltrace

import (
	"context"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type tracer struct {
	t       trace.Tracer
	service attribute.KeyValue
}

// New returns a tracer from the global otel provider. Exporters are configured
// by installing an sdk TracerProvider with otel.SetTracerProvider before New.
func New(service string) observability.Tracer {
	if service == "" {
		service = "minishop"
	}
	return &tracer{
		t:       otel.Tracer(service),
		service: attribute.String("service.name", service),
	}
}

func (t *tracer) Start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return t.t.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(append(attrs, t.service)...),
	)
}
