package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/internal/cron"
	"github.com/angelmondragon/mealprep-backend/internal/locks"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/internal/subscribers"
	"github.com/angelmondragon/mealprep-backend/pkg/config"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
	"github.com/angelmondragon/mealprep-backend/pkg/migrate"
	"github.com/angelmondragon/mealprep-backend/pkg/redis"
)

const (
	serviceName   = "cron-worker"
	lockKeyFormat = "cron-worker:%s"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: serviceName})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	cfg.Service.Kind = serviceName
	logg = logger.New(logger.Options{
		ServiceName: serviceName,
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(context.Background(), "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "cron worker shut down")
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})

	dbClient, err := db.New(ctx, cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, dbClient.Close()) }()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, redisClient.Close()) }()

	service, err := buildService(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}
	logg.Info(ctx, "starting cron worker")
	return service.Run(ctx)
}

func buildService(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (*cron.Service, error) {
	loc, err := cfg.Engine.Location()
	if err != nil {
		return nil, err
	}
	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	locker, err := locks.NewRedisLocker(redisClient, locks.RedisOptions{
		TTL:     cfg.Engine.LockTTL,
		Wait:    cfg.Engine.LockWait,
		Metrics: engineMetrics,
	})
	if err != nil {
		return nil, err
	}

	subscriberService, err := subscribers.NewService(subscribers.ServiceParams{
		Repo:             subscribers.NewRepository(dbClient.DB()),
		Catalog:          catalog.NewRepository(dbClient.DB()),
		Tx:               dbClient,
		Locker:           locker,
		Calculator:       pricing.NewCalculator(cfg.Engine.PriceDecimalPlaces),
		Metrics:          engineMetrics,
		Logger:           logg,
		DefaultPauseDays: cfg.Engine.DefaultPauseDays,
		Location:         loc,
	})
	if err != nil {
		return nil, err
	}

	expiry, err := cron.NewSubscriptionExpiryJob(cron.SubscriptionExpiryJobParams{
		Logger:  logg,
		Expirer: subscriberService,
	})
	if err != nil {
		return nil, err
	}
	registry, err := cron.NewRegistry(expiry)
	if err != nil {
		return nil, err
	}

	lock, err := cron.NewRedisLock(locker, lockKey(cfg.App.Env), cfg.Cron.LockTTL)
	if err != nil {
		return nil, err
	}

	return cron.NewService(cron.ServiceParams{
		Logger:     logg,
		Registry:   registry,
		Lock:       lock,
		Metrics:    metrics.NewCronJobMetrics(prometheus.DefaultRegisterer),
		Interval:   cfg.Cron.Interval,
		JobTimeout: cfg.Cron.JobTimeout,
	})
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}
