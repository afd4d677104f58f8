// Package saga runs a sequence of steps where each completed step can be
// undone by its compensation.
package saga

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability"
	"github.com/Zhima-Mochi/minishop-marketplace/app/internal/observability/logctx"
)

type Action func(ctx context.Context) error

type Step struct {
	Name       string
	Action     Action
	Compensate Action
}

const (
	OutcomeCompleted          = "completed"
	OutcomeCompensated        = "compensated"
	OutcomeCompensationFailed = "compensation_failed"
)

// ErrCompensation marks errors raised while undoing completed steps.
var ErrCompensation = errors.New("saga: compensation failed")

type Saga struct {
	name  string
	steps []Step
	log   observability.Logger
	runs  observability.Counter // saga_runs_total{saga,outcome}
}

func New(name string, tel observability.Observability) *Saga {
	tel = observability.OrNop(tel)
	return &Saga{
		name: name,
		log:  tel.Logger().With(observability.F("saga", name)),
		runs: tel.Metrics().Counter(observability.MSagaRuns),
	}
}

// AddStep appends a step. compensate may be nil for steps with nothing to undo.
func (s *Saga) AddStep(name string, action, compensate Action) *Saga {
	s.steps = append(s.steps, Step{Name: name, Action: action, Compensate: compensate})
	return s
}

// Run executes the steps in order. When a step fails, compensations of the
// completed steps run in reverse on a context that ignores cancellation of
// ctx. The returned error wraps the step failure first, then any
// compensation failures.
func (s *Saga) Run(ctx context.Context) error {
	logger := logctx.FromOr(ctx, s.log).With(observability.F("saga", s.name))

	done := make([]Step, 0, len(s.steps))
	for _, step := range s.steps {
		err := ctx.Err()
		if err == nil {
			err = step.Action(ctx)
		}
		if err == nil {
			done = append(done, step)
			continue
		}

		logger.Warn("saga_step_failed",
			observability.F("step", step.Name),
			observability.F("error", err),
		)
		compErr := s.compensate(context.WithoutCancel(ctx), logger, done)
		outcome := OutcomeCompensated
		if compErr != nil {
			outcome = OutcomeCompensationFailed
		}
		s.record(outcome)
		return errors.Join(fmt.Errorf("saga %s: step %s: %w", s.name, step.Name, err), compErr)
	}

	s.record(OutcomeCompleted)
	return nil
}

func (s *Saga) compensate(ctx context.Context, logger observability.Logger, done []Step) error {
	var errs []error
	for i := len(done) - 1; i >= 0; i-- {
		step := done[i]
		if step.Compensate == nil {
			continue
		}
		if err := step.Compensate(ctx); err != nil {
			logger.Error("saga_compensation_failed",
				observability.F("step", step.Name),
				observability.F("error", err),
			)
			errs = append(errs, fmt.Errorf("%w: %s: %w", ErrCompensation, step.Name, err))
			continue
		}
		logger.Info("saga_step_compensated", observability.F("step", step.Name))
	}
	return errors.Join(errs...)
}

func (s *Saga) record(outcome string) {
	s.runs.Add(1,
		observability.L("saga", s.name),
		observability.L("outcome", outcome),
	)
}
