// Package application holds the use cases. Shared here is the instrumentation
// every use case runs under: a span, RED metrics and one use_case_done log line.
package application

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/apperr"
	domoutbox "github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/domain/user"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	spanPrefix     = "UC."
	publishPeer    = "outbox"
	publishTimeout = 300 * time.Millisecond
)

type IDGenerator interface {
	NewID() string
}

// Instrumentation carries the per-service observability handles.
type Instrumentation struct {
	tel          observability.Observability
	log          observability.Logger
	reqCounter   observability.Counter   // usecase_requests_total{use_case,outcome}
	durHistogram observability.Histogram // usecase_duration_seconds{use_case}

	extCounter   observability.Counter   // external_requests_total{peer,endpoint,outcome}
	extHistogram observability.Histogram // external_request_duration_seconds{peer,endpoint}
}

func NewInstrumentation(tel observability.Observability, service string) Instrumentation {
	tel = observability.OrNop(tel)
	return Instrumentation{
		tel:          tel,
		log:          tel.Logger().With(observability.F("service", service)),
		reqCounter:   tel.Metrics().Counter(observability.MUsecaseRequests),
		durHistogram: tel.Metrics().Histogram(observability.MUsecaseDuration),
		extCounter:   tel.Metrics().Counter(observability.MExternalRequests),
		extHistogram: tel.Metrics().Histogram(observability.MExternalRequestDuration),
	}
}

func (in Instrumentation) Telemetry() observability.Observability { return in.tel }
func (in Instrumentation) Logger() observability.Logger           { return in.log }

// Run tracks a single use case execution.
type Run struct {
	in      Instrumentation
	useCase string
	span    trace.Span
	start   time.Time
	status  string
	logger  observability.Logger
	fields  []observability.Field
}

// Begin starts a span named after the use case and stores a use-case scoped
// logger on the returned context.
func (in Instrumentation) Begin(ctx context.Context, useCase, spanName string, attrs ...attribute.KeyValue) (context.Context, *Run) {
	attrs = append(attrs, attribute.String("use_case", useCase))
	ctx, span := in.tel.Tracer().Start(ctx, spanPrefix+spanName, attrs...)
	ctx, logger := logctx.Enrich(ctx, in.log, observability.F("use_case", useCase))
	return ctx, &Run{
		in:      in,
		useCase: useCase,
		span:    span,
		start:   time.Now(),
		logger:  logger,
	}
}

// Status sets the status text reported when the run ends.
func (r *Run) Status(status string) { r.status = status }

// Field adds a field to the use_case_done line.
func (r *Run) Field(k string, v any) { r.fields = append(r.fields, observability.F(k, v)) }

func (r *Run) Span() trace.Span { return r.span }

func (r *Run) Logger() observability.Logger { return r.logger }

// End closes the span, records metrics and logs the outcome. It is meant to
// be deferred with a pointer to the named error result.
func (r *Run) End(errp *error) {
	var err error
	if errp != nil {
		err = *errp
	}
	lat := time.Since(r.start).Seconds()
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	if r.status == "" {
		r.status = "OK"
		if err != nil {
			r.status = statusForError(err)
		}
	}

	if r.span != nil {
		if err != nil {
			r.span.RecordError(err)
			r.span.SetStatus(codes.Error, r.status)
		} else {
			r.span.SetStatus(codes.Ok, r.status)
		}
		r.span.End()
	}

	r.in.reqCounter.Add(1,
		observability.L("use_case", r.useCase),
		observability.L("outcome", outcome),
	)
	r.in.durHistogram.Observe(lat, observability.L("use_case", r.useCase))

	fields := append([]observability.Field{
		observability.F("outcome", outcome),
		observability.F("status", r.status),
		observability.F("latency_seconds", lat),
	}, r.fields...)
	if r.span != nil {
		if sc := r.span.SpanContext(); sc.IsValid() {
			fields = append(fields,
				observability.F("trace_id", sc.TraceID().String()),
				observability.F("span_id", sc.SpanID().String()),
			)
		}
	}
	if err != nil {
		fields = append(fields, observability.F("error", err.Error()))
	}
	r.logger.Info("use_case_done", fields...)
}

func statusForError(err error) string {
	switch apperr.KindOf(err) {
	case apperr.ErrValidation:
		return "VALIDATION_FAILED"
	case apperr.ErrUnauthorized:
		return "UNAUTHORIZED"
	case apperr.ErrNotFound:
		return "NOT_FOUND"
	case apperr.ErrProvider:
		return "PROVIDER_FAILED"
	}
	return "INTERNAL"
}

// Publish hands e to publisher, bounded by the publish timeout. Failures are
// recorded on the run but never fail the use case; the state change is
// already committed.
func (r *Run) Publish(ctx context.Context, publisher domoutbox.Publisher, e domoutbox.Event) {
	if publisher == nil || e == nil {
		return
	}
	pubCtx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	start := time.Now()
	outcome := "success"
	err := publisher.Publish(pubCtx, e)
	switch {
	case err != nil && pubCtx.Err() != nil:
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	}
	r.in.extCounter.Add(1,
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
		observability.L("outcome", outcome),
	)
	r.in.extHistogram.Observe(time.Since(start).Seconds(),
		observability.L("peer", publishPeer),
		observability.L("endpoint", e.EventName()),
	)

	if err != nil {
		r.span.RecordError(err)
		r.Field("event_publish_error", err.Error())
		r.logger.Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err),
		)
		return
	}
	r.span.AddEvent(e.EventName(), trace.WithAttributes(attribute.String("aggregate.id", e.AggregateID())))
}

// Caller is the authenticated identity a use case runs on behalf of.
type Caller struct {
	ID    string
	Name  string
	Email string
	Role  user.Role
}

func (c Caller) Anonymous() bool { return c.ID == "" }

var (
	ErrNotLoggedIn = apperr.Unauthorized("you are not logged in! please log in to get access")
	ErrForbidden   = apperr.Unauthorized("you do not have permission to perform this action")
)

// Require checks that the caller is authenticated and, when roles are given,
// holds one of them.
func (c Caller) Require(roles ...user.Role) error {
	if c.Anonymous() {
		return ErrNotLoggedIn
	}
	if len(roles) == 0 {
		return nil
	}
	for _, r := range roles {
		if c.Role == r {
			return nil
		}
	}
	return ErrForbidden
}
