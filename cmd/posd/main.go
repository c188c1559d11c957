package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sabaipos/sabaipos/internal/analytics"
	analytichttp "github.com/sabaipos/sabaipos/internal/analytics/http"
	"github.com/sabaipos/sabaipos/internal/app"
	"github.com/sabaipos/sabaipos/internal/catalog"
	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/customers"
	"github.com/sabaipos/sabaipos/internal/invoices"
	"github.com/sabaipos/sabaipos/internal/platform/cache"
	"github.com/sabaipos/sabaipos/internal/platform/db"
	"github.com/sabaipos/sabaipos/internal/receipt"
	"github.com/sabaipos/sabaipos/internal/sales"
	"github.com/sabaipos/sabaipos/internal/shared"
	"github.com/sabaipos/sabaipos/jobs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.EnsureSchema(ctx, pool); err != nil {
		logger.Error("ensure schema", slog.Any("error", err))
		os.Exit(1)
	}

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(pool)
	analyticsCache := analytics.NewCache(redisClient, cfg.CacheTTL)

	catalogService := catalog.NewService(catalog.NewRepository(pool))
	catalogHandler := catalog.NewHandler(logger, catalogService)

	customersService := customers.NewService(customers.NewRepository(pool))
	customersHandler := customers.NewHandler(logger, customersService)

	creditService := credit.NewService(logger, credit.NewRepository(pool), auditLogger, analyticsCache, cfg.EnforceCreditLimit)
	creditHandler := credit.NewHandler(logger, creditService)

	invoicesService := invoices.NewService(invoices.NewStore(redisClient))
	invoicesHandler := invoices.NewHandler(logger, invoicesService)

	salesService := sales.NewService(logger, sales.NewRepository(pool), auditLogger, analyticsCache, cfg.EnforceCreditLimit)
	salesHandler := sales.NewHandler(logger, salesService)

	analyticsService := analytics.NewService(salesService, creditService, analyticsCache)
	analyticsHandler := analytichttp.NewHandler(logger, analyticsService)

	shop := receipt.ShopProfile{
		Name:    cfg.ShopName,
		Address: cfg.ShopAddress,
		Phone:   cfg.ShopPhone,
		TaxID:   cfg.ShopTaxID,
	}
	receiptClient := receipt.NewClient(cfg.GotenbergURL)
	receiptHandler := receipt.NewHandler(logger, receiptClient, shop, salesService, invoicesService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsClient, err := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	if err != nil {
		logger.Error("init jobs client", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := jobsClient.Close(); err != nil {
			logger.Warn("jobs client close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, jobsClient, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		CatalogHandler:   catalogHandler,
		CustomersHandler: customersHandler,
		CreditHandler:    creditHandler,
		InvoicesHandler:  invoicesHandler,
		SalesHandler:     salesHandler,
		AnalyticsHandler: analyticsHandler,
		ReceiptHandler:   receiptHandler,
		JobsHandler:      jobsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
