package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/omarhegazy/modelbay-backend/api/routes"
	"github.com/omarhegazy/modelbay-backend/internal/catalog"
	"github.com/omarhegazy/modelbay-backend/internal/checkout"
	"github.com/omarhegazy/modelbay-backend/internal/entitlements"
	paymobwebhook "github.com/omarhegazy/modelbay-backend/internal/webhooks/paymob"
	"github.com/omarhegazy/modelbay-backend/pkg/config"
	"github.com/omarhegazy/modelbay-backend/pkg/db"
	"github.com/omarhegazy/modelbay-backend/pkg/enums"
	"github.com/omarhegazy/modelbay-backend/pkg/logger"
	"github.com/omarhegazy/modelbay-backend/pkg/metrics"
	"github.com/omarhegazy/modelbay-backend/pkg/migrate"
	"github.com/omarhegazy/modelbay-backend/pkg/paymob"
	"github.com/omarhegazy/modelbay-backend/pkg/redis"
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

	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = "sqlite"
	}

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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	paymobClient, err := paymob.NewClient(context.Background(), cfg.Paymob, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create paymob client", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	paymentMetrics := metrics.NewPaymentMetrics(registry)

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	entitlementsRepo := entitlements.NewRepository(dbClient.DB())
	entitlementsService, err := entitlements.NewService(entitlementsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create entitlements service", err)
		os.Exit(1)
	}

	sessionRepo := checkout.NewSessionRepository(dbClient.DB())
	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		TransactionRunner: dbClient,
		Gateway:           paymobClient,
		Catalog:           catalogService,
		Sessions:          sessionRepo,
		Entitlements:      entitlementsRepo,
		Currency:          enums.Currency(cfg.Checkout.Currency),
		Metrics:           paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	webhookService, err := paymobwebhook.NewService(paymobwebhook.ServiceParams{
		EntitlementsRepo:  entitlementsRepo,
		SessionRepo:       sessionRepo,
		TransactionRunner: dbClient,
		Logger:            logg,
		Metrics:           paymentMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := paymobwebhook.NewIdempotencyGuard(redisClient, cfg.Checkout.WebhookIdemTTL, "paymob-webhook")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
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
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:        cfg,
			Logger:        logg,
			DBPinger:      dbClient,
			RedisPinger:   redisClient,
			Catalog:       catalogService,
			Checkout:      checkoutService,
			Entitlements:  entitlementsService,
			PaymobClient:  paymobClient,
			WebhookSvc:    webhookService,
			WebhookGuard:  webhookGuard,
			MetricsGather: registry,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
