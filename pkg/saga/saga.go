// Package saga runs ordered multi-system workflows with declared compensations.
//
// There is no durable log: a crash between a step and its compensation can
// leave the external system in a partial state.
package saga

import (
	"context"
	"fmt"
	"reflect"
	"time"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
)

// Action performs a step or its compensation.
type Action func(ctx context.Context) error

// NoCompensation marks a step whose effects need no undo.
var NoCompensation Action = func(context.Context) error { return nil }

type step struct {
	name       string
	action     Action
	compensate Action
	noop       bool
}

// Saga is a sequence of steps executed in declaration order.
type Saga struct {
	name    string
	logg    *logger.Logger
	metrics *metrics.SagaMetrics
	steps   []step
}

// New creates an empty saga. logg and m may be nil.
func New(name string, logg *logger.Logger, m *metrics.SagaMetrics) *Saga {
	return &Saga{name: name, logg: logg, metrics: m}
}

// Step appends a step. compensation must be non-nil; pass NoCompensation
// when the action leaves nothing to undo.
func (s *Saga) Step(name string, action, compensation Action) *Saga {
	s.steps = append(s.steps, step{
		name:       name,
		action:     action,
		compensate: compensation,
		noop:       isNoCompensation(compensation),
	})
	return s
}

// Run executes every step in order. On the first failing step the
// compensations of the already completed steps run in reverse order, each
// once, and the step's error is returned unchanged.
func (s *Saga) Run(ctx context.Context) error {
	if err := s.validate(); err != nil {
		return err
	}
	if s.logg != nil {
		ctx = s.logg.WithSaga(ctx, s.name)
	}

	start := time.Now()
	completed := make([]step, 0, len(s.steps))
	for _, st := range s.steps {
		if err := st.action(ctx); err != nil {
			s.metrics.IncStep(s.name, st.name, metrics.SagaOutcomeFailed)
			s.logError(ctx, st.name, "saga step failed", err)
			s.compensate(ctx, completed)
			outcome := metrics.SagaOutcomeFailed
			if len(completed) > 0 {
				outcome = metrics.SagaOutcomeCompensated
			}
			s.metrics.ObserveDuration(s.name, outcome, time.Since(start))
			return err
		}
		s.metrics.IncStep(s.name, st.name, metrics.SagaOutcomeCompleted)
		completed = append(completed, st)
	}

	s.metrics.ObserveDuration(s.name, metrics.SagaOutcomeCompleted, time.Since(start))
	return nil
}

func (s *Saga) validate() error {
	for i, st := range s.steps {
		if st.action == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("saga %s: step %d (%s) has no action", s.name, i, st.name))
		}
		if st.compensate == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("saga %s: step %d (%s) must declare a compensation", s.name, i, st.name))
		}
	}
	return nil
}

func (s *Saga) compensate(ctx context.Context, completed []step) {
	for i := len(completed) - 1; i >= 0; i-- {
		st := completed[i]
		if st.noop {
			continue
		}
		// compensations run even when the request context is already done
		err := st.compensate(context.WithoutCancel(ctx))
		s.metrics.IncCompensation(s.name, st.name, err != nil)
		if err != nil {
			s.logError(ctx, st.name, "saga compensation failed", err)
			continue
		}
		if s.logg != nil {
			s.logg.Warn(s.logg.WithField(ctx, "step", st.name), "saga step compensated")
		}
	}
}

func (s *Saga) logError(ctx context.Context, stepName, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Error(s.logg.WithField(ctx, "step", stepName), msg, err)
}

func isNoCompensation(a Action) bool {
	if a == nil {
		return false
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(NoCompensation).Pointer()
}
