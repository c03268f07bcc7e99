package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestSagaMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewSagaMetrics(reg)

	m.IncStep("register-establishment", "create-identity", SagaOutcomeCompleted)
	m.IncCompensation("register-establishment", "create-identity", true)
	m.ObserveDuration("register-establishment", SagaOutcomeCompensated, 10*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounterValue(mfs, "nowaround_saga_steps_total", "outcome", SagaOutcomeCompleted); err != nil || got != 1 {
		t.Fatalf("expected one completed step, got %f err=%v", got, err)
	}
	if got, err := fetchCounterValue(mfs, "nowaround_saga_compensations_total", "result", "error"); err != nil || got != 1 {
		t.Fatalf("expected one failed compensation, got %f err=%v", got, err)
	}
	if got, err := fetchHistogramSum(mfs, "nowaround_saga_duration_seconds", "saga", "register-establishment"); err != nil || got <= 0 {
		t.Fatalf("expected duration sum > 0, got %f err=%v", got, err)
	}
}

func TestSagaMetricsNilSafe(t *testing.T) {
	var m *SagaMetrics
	m.IncStep("s", "a", SagaOutcomeFailed)
	m.IncCompensation("s", "a", false)
	m.ObserveDuration("s", SagaOutcomeFailed, time.Second)

	NewSagaMetrics(nil).IncStep("s", "a", SagaOutcomeFailed)
}
