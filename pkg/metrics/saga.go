package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	SagaOutcomeCompleted   = "completed"
	SagaOutcomeFailed      = "failed"
	SagaOutcomeCompensated = "compensated"
)

// SagaMetrics records step outcomes and compensation activity of multi-system workflows.
type SagaMetrics struct {
	steps         *prometheus.CounterVec
	compensations *prometheus.CounterVec
	duration      *prometheus.HistogramVec
}

// NewSagaMetrics registers the saga metrics on the provided registerer.
func NewSagaMetrics(reg prometheus.Registerer) *SagaMetrics {
	if reg == nil {
		return &SagaMetrics{}
	}
	steps := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nowaround_saga_steps_total",
		Help: "Saga step executions by outcome.",
	}, []string{"saga", "step", "outcome"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nowaround_saga_compensations_total",
		Help: "Saga compensations by result.",
	}, []string{"saga", "step", "result"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nowaround_saga_duration_seconds",
		Help:    "Duration of saga runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"saga", "outcome"})
	reg.MustRegister(steps, compensations, duration)
	return &SagaMetrics{
		steps:         steps,
		compensations: compensations,
		duration:      duration,
	}
}

func (s *SagaMetrics) IncStep(saga, step, outcome string) {
	if s == nil || s.steps == nil {
		return
	}
	s.steps.WithLabelValues(normalizeLabel(saga), normalizeLabel(step), outcome).Inc()
}

// IncCompensation counts a compensation attempt; failed reports whether it errored.
func (s *SagaMetrics) IncCompensation(saga, step string, failed bool) {
	if s == nil || s.compensations == nil {
		return
	}
	result := "ok"
	if failed {
		result = "error"
	}
	s.compensations.WithLabelValues(normalizeLabel(saga), normalizeLabel(step), result).Inc()
}

func (s *SagaMetrics) ObserveDuration(saga, outcome string, d time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(saga), outcome).Observe(d.Seconds())
}
