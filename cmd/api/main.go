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
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"

	"github.com/jvacosta/dailyfish-backend/api/routes"
	authsvc "github.com/jvacosta/dailyfish-backend/internal/auth"
	"github.com/jvacosta/dailyfish-backend/internal/bootstrap"
	cartsvc "github.com/jvacosta/dailyfish-backend/internal/cart"
	"github.com/jvacosta/dailyfish-backend/internal/catalog"
	checkoutsvc "github.com/jvacosta/dailyfish-backend/internal/checkout"
	feedbacksvc "github.com/jvacosta/dailyfish-backend/internal/feedback"
	messagesvc "github.com/jvacosta/dailyfish-backend/internal/messages"
	ordersvc "github.com/jvacosta/dailyfish-backend/internal/orders"
	"github.com/jvacosta/dailyfish-backend/internal/users"
	"github.com/jvacosta/dailyfish-backend/pkg/config"
	"github.com/jvacosta/dailyfish-backend/pkg/db"
	"github.com/jvacosta/dailyfish-backend/pkg/logger"
	"github.com/jvacosta/dailyfish-backend/pkg/metrics"
	"github.com/jvacosta/dailyfish-backend/pkg/migrate"
	"github.com/jvacosta/dailyfish-backend/pkg/redis"
)

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
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	if err := bootstrap.EnsureAdmin(context.Background(), userRepo, logg, cfg.Admin, cfg.Password); err != nil {
		logg.Error(context.Background(), "failed to provision admin account", err)
		os.Exit(1)
	}

	services, registry, err := buildServices(cfg, logg, dbClient, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to build services", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, dbClient, redisClient, registry, services),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutdown signal received, draining connections")
		drainCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(drainCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
	logg.Info(ctx, "api server stopped")
}

func buildServices(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	userRepo *users.Repository,
) (routes.Services, *prometheus.Registry, error) {
	threshold, err := decimal.NewFromString(cfg.Checkout.DefaultLowStockThreshold)
	if err != nil {
		return routes.Services{}, nil, err
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	catalogRepo := catalog.NewRepository(dbClient.DB())
	cartRepo := cartsvc.NewRepository(dbClient.DB())
	ordersRepo := ordersvc.NewRepository(dbClient.DB())
	feedbackRepo := feedbacksvc.NewRepository(dbClient.DB())
	messagesRepo := messagesvc.NewRepository(dbClient.DB())

	authService, err := authsvc.NewService(authsvc.ServiceParams{
		UserRepo:       userRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return routes.Services{}, nil, err
	}

	catalogService, err := catalog.NewService(catalogRepo, dbClient, threshold)
	if err != nil {
		return routes.Services{}, nil, err
	}

	cartService, err := cartsvc.NewService(cartRepo, dbClient, catalogRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}

	ordersService, err := ordersvc.NewService(ordersRepo, dbClient, catalogRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		cartRepo,
		ordersRepo,
		catalogRepo,
		userRepo,
		cfg.Checkout,
		logg,
		checkoutMetrics,
	)
	if err != nil {
		return routes.Services{}, nil, err
	}

	messagesService, err := messagesvc.NewService(messagesRepo)
	if err != nil {
		return routes.Services{}, nil, err
	}

	feedbackService, err := feedbacksvc.NewService(feedbackRepo, dbClient, ordersRepo, messagesService)
	if err != nil {
		return routes.Services{}, nil, err
	}

	return routes.Services{
		Auth:     authService,
		Catalog:  catalogService,
		Cart:     cartService,
		Checkout: checkoutService,
		Orders:   ordersService,
		Feedback: feedbackService,
		Messages: messagesService,
	}, registry, nil
}
