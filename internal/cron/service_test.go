package cron

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
)

type fakeLocker struct {
	held     map[string]bool
	err      error
	released []string
}

func (f *fakeLocker) TryLock(ctx context.Context, job string) (func(context.Context) error, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	if f.held[job] {
		return nil, false, nil
	}
	return func(context.Context) error {
		f.released = append(f.released, job)
		return nil
	}, true, nil
}

type testJob struct {
	name string
	err  error
	runs int
}

func (t *testJob) Name() string { return t.name }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func newTestService(t *testing.T, locker Locker, jobs ...Job) (*Service, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	svc, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test", Output: &bytes.Buffer{}}),
		Registry: NewRegistry(jobs...),
		Locker:   locker,
		Metrics:  metrics.NewCronJobMetrics(reg),
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc, reg
}

func runsTotal(t *testing.T, reg *prometheus.Registry, job, outcome string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "nowaround_cron_job_runs_total" {
			continue
		}
		for _, metric := range mf.GetMetric() {
			if hasLabel(metric, "job", job) && hasLabel(metric, "outcome", outcome) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func hasLabel(metric *dto.Metric, name, value string) bool {
	for _, label := range metric.GetLabel() {
		if label.GetName() == name && label.GetValue() == value {
			return true
		}
	}
	return false
}

func TestRunOnceRunsAllJobsEvenOnFailure(t *testing.T) {
	ok := &testJob{name: "ok"}
	failing := &testJob{name: "failing", err: errors.New("boom")}
	locker := &fakeLocker{}
	svc, reg := newTestService(t, locker, failing, ok)

	svc.RunOnce(context.Background())

	if ok.runs != 1 || failing.runs != 1 {
		t.Fatalf("expected each job to run once, got ok=%d failing=%d", ok.runs, failing.runs)
	}
	if len(locker.released) != 2 {
		t.Fatalf("expected both locks released, got %v", locker.released)
	}
	if got := runsTotal(t, reg, "failing", metrics.CronOutcomeFailure); got != 1 {
		t.Fatalf("expected one failure recorded, got %v", got)
	}
	if got := runsTotal(t, reg, "ok", metrics.CronOutcomeSuccess); got != 1 {
		t.Fatalf("expected one success recorded, got %v", got)
	}
}

func TestRunOnceSkipsJobsLockedElsewhere(t *testing.T) {
	job := &testJob{name: "monthly-statistics"}
	svc, reg := newTestService(t, &fakeLocker{held: map[string]bool{"monthly-statistics": true}}, job)

	svc.RunOnce(context.Background())
	if job.runs != 0 {
		t.Fatalf("expected locked job to be skipped, ran %d", job.runs)
	}
	if got := runsTotal(t, reg, "monthly-statistics", metrics.CronOutcomeSkipped); got != 1 {
		t.Fatalf("expected skip counted, got %v", got)
	}
}

func TestRunOnceSkipsJobsWhenLockErrors(t *testing.T) {
	job := &testJob{name: "monthly-statistics"}
	svc, reg := newTestService(t, &fakeLocker{err: errors.New("redis down")}, job)

	svc.RunOnce(context.Background())
	if job.runs != 0 {
		t.Fatalf("expected job not to run without a lock, ran %d", job.runs)
	}
	if got := runsTotal(t, reg, "monthly-statistics", metrics.CronOutcomeFailure); got != 1 {
		t.Fatalf("expected lock failure counted, got %v", got)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	job := &testJob{name: "once"}
	svc, _ := newTestService(t, &fakeLocker{}, job)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := svc.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if job.runs != 1 {
		t.Fatalf("expected the initial cycle to run, ran %d", job.runs)
	}
}

func TestNewServiceRequiresLocker(t *testing.T) {
	if _, err := NewService(ServiceParams{Logger: logger.New(logger.Options{ServiceName: "cron-test"})}); err == nil {
		t.Fatal("expected error without locker")
	}
}
