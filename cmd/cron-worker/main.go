package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/cron"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/establishments"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/statistics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/users"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/instance"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/migrate"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := multierr.Combine(redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	locks := redislock.New(redisClient.Raw())

	monthLocker, err := statistics.NewRedisMonthLocker(locks, redisClient, cfg.Statistics.MonthLockTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create statistics lock", err)
		os.Exit(1)
	}
	statisticsService, err := statistics.NewService(statistics.ServiceParams{
		Repo:           statistics.NewRepository(dbClient.DB()),
		Establishments: establishments.NewRepository(dbClient.DB()),
		Users:          users.NewRepository(dbClient.DB()),
		Locker:         monthLocker,
		Logger:         logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create statistics service", err)
		os.Exit(1)
	}

	monthlyJob, err := cron.NewMonthlyStatisticsJob(cron.MonthlyStatisticsJobParams{
		Logger:     logg,
		Statistics: statisticsService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create monthly statistics job", err)
		os.Exit(1)
	}

	jobLocker, err := cron.NewRedisLocker(locks, redisClient, 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: cron.NewRegistry(monthlyJob),
		Locker:   jobLocker,
		Metrics:  metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval: cfg.Cron.Interval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"instance": instance.GetID(),
	})
	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}
