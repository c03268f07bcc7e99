package cron

import (
	"context"
	"fmt"
	"time"

	pkgerrors "github.com/SamuelGunda/NowAround-Backend-sub000/pkg/errors"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
)

const defaultInterval = 24 * time.Hour

type ServiceParams struct {
	Logger   *logger.Logger
	Registry *Registry
	Locker   Locker
	Metrics  *metrics.CronJobMetrics
	Interval time.Duration
}

// Service runs the registered jobs once at start and then on every tick.
type Service struct {
	logg     *logger.Logger
	registry *Registry
	locker   Locker
	metrics  *metrics.CronJobMetrics
	interval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Locker == nil {
		return nil, fmt.Errorf("locker required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	interval := params.Interval
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Service{
		logg:     params.Logger,
		registry: registry,
		locker:   params.Locker,
		metrics:  params.Metrics,
		interval: interval,
	}, nil
}

// Run blocks until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	s.RunOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service stopping")
			return ctx.Err()
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce runs every registered job. A failing job does not stop the others.
func (s *Service) RunOnce(ctx context.Context) {
	for _, job := range s.registry.Jobs() {
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	ctx = s.logg.WithField(ctx, "job", job.Name())

	release, obtained, err := s.locker.TryLock(ctx, job.Name())
	if err != nil {
		s.logg.Error(ctx, "cron lock failed", err)
		s.metrics.IncOutcome(job.Name(), metrics.CronOutcomeFailure)
		return
	}
	if !obtained {
		s.logg.Info(ctx, "job is running on another instance")
		s.metrics.IncOutcome(job.Name(), metrics.CronOutcomeSkipped)
		return
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			s.logg.Error(ctx, "cron lock release failed", err)
		}
	}()

	start := time.Now()
	err = job.Run(ctx)
	duration := time.Since(start)

	ctx = s.logg.WithField(ctx, "duration_ms", duration.Milliseconds())
	if err != nil {
		ctx = s.logg.WithField(ctx, "retryable", pkgerrors.MetadataFor(pkgerrors.CodeOf(err)).Retryable)
		s.logg.Error(ctx, "job failed", err)
		s.metrics.ObserveRun(job.Name(), metrics.CronOutcomeFailure, duration)
		return
	}
	s.logg.Info(ctx, "job completed")
	s.metrics.ObserveRun(job.Name(), metrics.CronOutcomeSuccess, duration)
}
