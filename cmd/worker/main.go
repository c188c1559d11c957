package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/sabaipos/sabaipos/internal/analytics"
	"github.com/sabaipos/sabaipos/internal/app"
	"github.com/sabaipos/sabaipos/internal/credit"
	"github.com/sabaipos/sabaipos/internal/platform/cache"
	"github.com/sabaipos/sabaipos/internal/platform/db"
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
	creditService := credit.NewService(logger, credit.NewRepository(pool), auditLogger, analyticsCache, cfg.EnforceCreditLimit)
	salesService := sales.NewService(logger, sales.NewRepository(pool), auditLogger, analyticsCache, cfg.EnforceCreditLimit)
	analyticsService := analytics.NewService(salesService, creditService, analyticsCache)

	overdueScanner := jobs.NewOverdueScanner(logger, creditService)
	warmup := jobs.NewAnalyticsWarmup(logger, analyticsService)

	overdueTask, err := jobs.NewCreditOverdueScanTask(time.Now())
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewAnalyticsWarmupTask(time.Now())
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskCreditOverdueScan, Handler: overdueScanner.Handle},
			{Type: jobs.TaskAnalyticsWarmup, Handler: warmup.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "0 7 * * *", Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "30 0 * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
