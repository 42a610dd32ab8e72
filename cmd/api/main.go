package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/angelmondragon/mealprep-backend/api/routes"
	"github.com/angelmondragon/mealprep-backend/internal/catalog"
	"github.com/angelmondragon/mealprep-backend/internal/inventory"
	"github.com/angelmondragon/mealprep-backend/internal/ledger"
	"github.com/angelmondragon/mealprep-backend/internal/locks"
	"github.com/angelmondragon/mealprep-backend/internal/pricing"
	"github.com/angelmondragon/mealprep-backend/internal/reports"
	"github.com/angelmondragon/mealprep-backend/internal/selections"
	"github.com/angelmondragon/mealprep-backend/internal/subscribers"
	"github.com/angelmondragon/mealprep-backend/internal/vacuum"
	"github.com/angelmondragon/mealprep-backend/pkg/config"
	"github.com/angelmondragon/mealprep-backend/pkg/db"
	"github.com/angelmondragon/mealprep-backend/pkg/env"
	"github.com/angelmondragon/mealprep-backend/pkg/logger"
	"github.com/angelmondragon/mealprep-backend/pkg/metrics"
	"github.com/angelmondragon/mealprep-backend/pkg/migrate"
	"github.com/angelmondragon/mealprep-backend/pkg/redis"
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
		Level:       cfg.App.LogLevel,
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := run(cfg, logg); err != nil {
		logg.Error(context.Background(), "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logg *logger.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	svcs, err := buildServices(cfg, logg, dbClient, redisClient)
	if err != nil {
		return err
	}

	// platform-assigned PORT wins over config
	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": env.Get("DYNO", "local"),
	})

	handler := routes.NewRouter(cfg, logg, routes.Infra{
		DB:       dbClient,
		Redis:    redisClient,
		Gatherer: prometheus.DefaultGatherer,
	}, svcs)
	server := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func buildServices(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, redisClient *redis.Client) (routes.Services, error) {
	loc, err := cfg.Engine.Location()
	if err != nil {
		return routes.Services{}, err
	}
	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	locker, err := locks.NewRedisLocker(redisClient, locks.RedisOptions{
		TTL:     cfg.Engine.LockTTL,
		Wait:    cfg.Engine.LockWait,
		Metrics: engineMetrics,
	})
	if err != nil {
		return routes.Services{}, err
	}
	calc := pricing.NewCalculator(cfg.Engine.PriceDecimalPlaces)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	subscriberRepo := subscribers.NewRepository(dbClient.DB())
	selectionRepo := selections.NewRepository(dbClient.DB())
	vacuumRepo := vacuum.NewRepository(dbClient.DB())

	var svcs routes.Services
	var errs error
	add := func(err error) { errs = multierr.Append(errs, err) }

	svcs.Catalog, err = catalog.NewService(catalog.ServiceParams{
		Repo:     catalogRepo,
		Tx:       dbClient,
		Location: loc,
	})
	add(err)
	svcs.Subscribers, err = subscribers.NewService(subscribers.ServiceParams{
		Repo:             subscriberRepo,
		Catalog:          catalogRepo,
		Tx:               dbClient,
		Locker:           locker,
		Calculator:       calc,
		Metrics:          engineMetrics,
		Logger:           logg,
		DefaultPauseDays: cfg.Engine.DefaultPauseDays,
		Location:         loc,
	})
	add(err)
	svcs.Selections, err = selections.NewService(selections.ServiceParams{
		Repo:          selectionRepo,
		Subscriptions: subscriberRepo,
		Catalog:       catalogRepo,
		Locker:        locker,
		Metrics:       engineMetrics,
		Logger:        logg,
	})
	add(err)
	svcs.Vacuum, err = vacuum.NewService(vacuum.ServiceParams{
		Repo:          vacuumRepo,
		Subscribers:   subscriberRepo,
		Catalog:       catalogRepo,
		Logger:        logg,
		DecimalPlaces: cfg.Engine.PriceDecimalPlaces,
		Location:      loc,
	})
	add(err)
	svcs.Inventory, err = inventory.NewService(inventory.ServiceParams{
		Repo:     inventory.NewRepository(dbClient.DB()),
		Tx:       dbClient,
		Location: loc,
	})
	add(err)
	svcs.Ledger, err = ledger.NewService(ledger.ServiceParams{
		Repo:       ledger.NewRepository(dbClient.DB()),
		Calculator: calc,
		Location:   loc,
	})
	add(err)
	svcs.Reports, err = reports.NewService(reports.ServiceParams{
		Loader: reports.Loader{
			Subscribers: subscriberRepo,
			Catalog:     catalogRepo,
			Selections:  selectionRepo,
			Orders:      vacuumRepo,
		},
		Metrics:  engineMetrics,
		Logger:   logg,
		Location: loc,
	})
	add(err)

	return svcs, errs
}
