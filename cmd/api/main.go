package main

import (
	"context"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/antiquestore/antique-store-backend/api"
	"github.com/antiquestore/antique-store-backend/api/routes"
	"github.com/antiquestore/antique-store-backend/internal/assets"
	"github.com/antiquestore/antique-store-backend/internal/invoices"
	"github.com/antiquestore/antique-store-backend/internal/orders"
	"github.com/antiquestore/antique-store-backend/internal/products"
	"github.com/antiquestore/antique-store-backend/internal/users"
	"github.com/antiquestore/antique-store-backend/internal/warranties"
	"github.com/antiquestore/antique-store-backend/pkg/config"
	"github.com/antiquestore/antique-store-backend/pkg/db"
	"github.com/antiquestore/antique-store-backend/pkg/logger"
	"github.com/antiquestore/antique-store-backend/pkg/metrics"
	"github.com/antiquestore/antique-store-backend/pkg/migrate"
	"github.com/antiquestore/antique-store-backend/pkg/redis"
	"github.com/antiquestore/antique-store-backend/pkg/storage/gcs"
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
		Level:       cfg.App.LogLevel,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	gcsClient, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	ordersRepo := orders.NewRepository(dbClient.DB())
	productsRepo := products.NewRepository(dbClient.DB())

	warrantyService, err := warranties.NewService(warranties.ServiceParams{
		Repo:     warranties.NewRepository(dbClient.DB()),
		Orders:   ordersRepo,
		Products: productsRepo,
		Metrics:  metrics.NewWarrantyMetrics(reg),
		Logger:   logg,
	})
	if err != nil {
		return err
	}

	assetService, err := assets.NewService(assets.ServiceParams{
		Store:          gcsClient,
		Products:       productsRepo,
		Users:          users.NewRepository(dbClient.DB()),
		MaxUploadBytes: cfg.Assets.MaxUploadBytes(),
		Logger:         logg,
	})
	if err != nil {
		return err
	}

	invoiceService, err := invoices.NewService(ordersRepo, invoices.NewPDFRenderer(), assetService, invoices.Settings{
		StoreName:    cfg.Invoice.StoreName,
		StoreAddress: cfg.Invoice.StoreAddress,
		StorePhone:   cfg.Invoice.StorePhone,
		StoreEmail:   cfg.Invoice.StoreEmail,
		Locale:       cfg.Invoice.Locale,
		Currency:     cfg.Invoice.Currency,
		DateLayout:   cfg.Invoice.DateLayout,
	}, logg)
	if err != nil {
		return err
	}

	handler := routes.NewRouter(routes.Dependencies{
		Config:         cfg,
		Logger:         logg,
		DB:             dbClient,
		Redis:          redisClient,
		Storage:        gcsClient,
		LookupLimiter:  redisClient,
		HTTPMetrics:    metrics.NewHTTPMetrics(reg),
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Warranties:     warrantyService,
		Invoices:       invoiceService,
		Assets:         assetService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"bucket": gcsClient.Bucket(),
	})
	logg.Info(logCtx, "starting api server")

	return api.Serve(ctx, api.NewServer(cfg.App, addr, handler), ln, cfg.App.ShutdownTimeout, logg)
}
