package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/bloodbank-service/internal/api/http"
	"github.com/spec-kit/bloodbank-service/internal/api/http/handlers"
	"github.com/spec-kit/bloodbank-service/internal/auth"
	"github.com/spec-kit/bloodbank-service/internal/cache"
	"github.com/spec-kit/bloodbank-service/internal/config"
	"github.com/spec-kit/bloodbank-service/internal/events"
	"github.com/spec-kit/bloodbank-service/internal/observability"
	"github.com/spec-kit/bloodbank-service/internal/persistence"
	"github.com/spec-kit/bloodbank-service/internal/repository"
	"github.com/spec-kit/bloodbank-service/internal/service"
	"github.com/spec-kit/bloodbank-service/internal/validator"
	"github.com/spec-kit/bloodbank-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	meterProvider, err := observability.NewMeterProvider(ctx, cfg.Telemetry, cfg.App.Version, logger)
	if err != nil {
		logger.Fatal("failed to init telemetry", zap.Error(err))
	}
	metrics, err := observability.NewMetrics(meterProvider.Meter(cfg.Telemetry.ServiceName))
	if err != nil {
		logger.Fatal("failed to register metrics", zap.Error(err))
	}

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(cfg.Postgres.DSN, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var store repository.Store
	if pg.Enabled() {
		store = repository.NewPostgresStore(pg.PoolHandle())
	} else {
		store = repository.NewMemoryStore()
	}

	inventoryCache := cache.NewNopInventoryCache()
	if redis.Enabled() {
		inventoryCache = cache.NewRedisInventoryCache(redis.Client, cfg.Redis.InventoryCacheTTL(), logger)
	}

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartEventListener(service.NewEventListener(dispatcher, inventoryCache, logger))

	authService := service.NewAuthService(*cfg, service.AuthDependencies{Store: store, Logger: logger})
	if seed := cfg.Auth.Admin; seed.Email != "" {
		if _, err := authService.EnsureAdmin(ctx, seed.Name, seed.Email, seed.Password); err != nil {
			logger.Fatal("failed to seed admin", zap.Error(err))
		}
	}
	inventoryService := service.NewInventoryService(service.InventoryDependencies{
		Store:      store,
		Cache:      inventoryCache,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	appointmentService := service.NewAppointmentService(service.AppointmentDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	requestService := service.NewRequestService(service.RequestDependencies{
		Store:      store,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), store.Repos().Users)

	v := validator.New()
	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, v),
		Donors:         handlers.NewDonorsHandler(service.NewDonorService(store)),
		Appointments:   handlers.NewAppointmentsHandler(appointmentService, v),
		Requests:       handlers.NewRequestsHandler(requestService, v),
		Inventory:      handlers.NewInventoryHandler(inventoryService, v),
		AuthMiddleware: authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.ShutdownWithTimeout(10 * time.Second)

	flushCtx, flushCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer flushCancel()
	if err := meterProvider.Shutdown(flushCtx); err != nil {
		logger.Warn("metric provider shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
