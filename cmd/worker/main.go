package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/prakira-pmo/prakira-pmo/internal/app"
	"github.com/prakira-pmo/prakira-pmo/internal/catalog"
	"github.com/prakira-pmo/prakira-pmo/internal/estimate"
	"github.com/prakira-pmo/prakira-pmo/internal/platform/cache"
	"github.com/prakira-pmo/prakira-pmo/internal/platform/db"
	"github.com/prakira-pmo/prakira-pmo/internal/shared"
	"github.com/prakira-pmo/prakira-pmo/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

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
		logger.Error("connect database", slog.Any("error", err))
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

	audit := shared.NewAuditLogger(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, audit)

	estimateRepo := estimate.NewRepository(pool)
	estimateService := estimate.NewService(estimateRepo, catalogService, audit)

	recostJob := jobs.NewEstimateRecostJob(estimateService, estimateRepo, logger, nil)
	warmupJob := jobs.NewCatalogWarmupJob(catalogService, logger, nil)

	recostTask, err := jobs.NewEstimateRecostTask(jobs.EstimateRecostPayload{})
	if err != nil {
		logger.Error("build recost task", slog.Any("error", err))
		os.Exit(1)
	}
	warmupTask, err := jobs.NewCatalogWarmupTask()
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskEstimateRecost, Handler: recostJob.Handle},
			{Type: jobs.TaskCatalogWarmup, Handler: warmupJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.RecostCron, Task: recostTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.WarmupCron, Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
