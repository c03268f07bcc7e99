package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bsm/redislock"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/SamuelGunda/NowAround-Backend-sub000/api/controllers"
	"github.com/SamuelGunda/NowAround-Backend-sub000/api/routes"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/categories"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/establishments"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/reviews"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/statistics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/tags"
	"github.com/SamuelGunda/NowAround-Backend-sub000/internal/users"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/config"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/db"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/identity"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/instance"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/logger"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/mailer"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/maps"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/metrics"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/migrate"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/redis"
	"github.com/SamuelGunda/NowAround-Backend-sub000/pkg/storage/gcs"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Environment: cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := context.Background()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)

	requireResource(ctx, logg, "dev migrations", migrate.MaybeRunDev(ctx, cfg, logg, dbClient))

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	requireResource(ctx, logg, "redis", err)

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, logg)
	requireResource(ctx, logg, "gcs", err)

	defer func() {
		if err := multierr.Combine(gcsClient.Close(), redisClient.Close(), dbClient.Close()); err != nil {
			logg.Error(context.Background(), "error closing resources", err)
		}
	}()

	identityClient, err := identity.New(ctx, cfg.Firebase)
	requireResource(ctx, logg, "firebase", err)

	mapsClient, err := maps.NewClient(cfg.GoogleMaps.APIKey,
		maps.WithBaseURL(cfg.GoogleMaps.BaseURL),
		maps.WithLocale(cfg.GoogleMaps.LanguageCode, cfg.GoogleMaps.RegionCode),
	)
	requireResource(ctx, logg, "google maps", err)
	geocoder, err := maps.NewCachedGeocoder(mapsClient, redisClient, cfg.GoogleMaps.GeocodeTTL, logg)
	requireResource(ctx, logg, "geocode cache", err)

	sendgrid, err := mailer.NewSendgridMailer(cfg.Sendgrid, logg)
	requireResource(ctx, logg, "sendgrid", err)

	sagaMetrics := metrics.NewSagaMetrics(prometheus.DefaultRegisterer)

	establishmentRepo := establishments.NewRepository(dbClient.DB())
	userRepo := users.NewRepository(dbClient.DB())
	categoryRepo := categories.NewRepository(dbClient.DB())
	tagRepo := tags.NewRepository(dbClient.DB())

	establishmentService, err := establishments.NewService(establishments.ServiceParams{
		Repo:        establishmentRepo,
		Tx:          dbClient,
		Categories:  categoryRepo,
		Tags:        tagRepo,
		Geocoder:    geocoder,
		Identity:    identityClient,
		Blobs:       gcsClient,
		Mailer:      sendgrid,
		Logger:      logg,
		SagaMetrics: sagaMetrics,
		Search:      cfg.Search,
		Password:    cfg.Password,
	})
	requireResource(ctx, logg, "establishment service", err)

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo:        reviews.NewRepository(dbClient.DB()),
		Users:       userRepo,
		Ratings:     establishmentService,
		Logger:      logg,
		SagaMetrics: sagaMetrics,
	})
	requireResource(ctx, logg, "review service", err)

	monthLocker, err := statistics.NewRedisMonthLocker(redislock.New(redisClient.Raw()), redisClient, cfg.Statistics.MonthLockTTL)
	requireResource(ctx, logg, "statistics lock", err)

	statisticsService, err := statistics.NewService(statistics.ServiceParams{
		Repo:           statistics.NewRepository(dbClient.DB()),
		Establishments: establishmentRepo,
		Users:          userRepo,
		Locker:         monthLocker,
		Logger:         logg,
	})
	requireResource(ctx, logg, "statistics service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config: cfg,
			Logger: logg,
			Readiness: map[string]controllers.Pinger{
				"db":    dbClient,
				"redis": redisClient,
				"gcs":   gcsClient,
			},
			Verifier:       identityClient,
			Establishments: establishmentService,
			Reviews:        reviewService,
			Statistics:     statisticsService,
			Categories:     categoryRepo,
			Tags:           tagRepo,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	serverErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-sigCtx.Done():
		logg.Info(ctx, "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
