package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prakira-pmo/prakira-pmo/internal/app"
	"github.com/prakira-pmo/prakira-pmo/internal/catalog"
	"github.com/prakira-pmo/prakira-pmo/internal/estimate"
	"github.com/prakira-pmo/prakira-pmo/internal/observability"
	"github.com/prakira-pmo/prakira-pmo/internal/platform/cache"
	"github.com/prakira-pmo/prakira-pmo/internal/platform/db"
	"github.com/prakira-pmo/prakira-pmo/internal/projects"
	"github.com/prakira-pmo/prakira-pmo/internal/shared"
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, catalog cache disabled", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()

	audit := shared.NewAuditLogger(pool)

	catalogRepo := catalog.NewRepository(pool)
	catalogCache := catalog.NewCache(redisClient, cfg.CatalogCacheTTL)
	catalogService := catalog.NewService(catalogRepo, catalogCache, audit)
	catalogHandler := catalog.NewHandler(logger, catalogService)

	estimateRepo := estimate.NewRepository(pool)
	estimateService := estimate.NewService(estimateRepo, catalogService, audit)
	estimateHandler := estimate.NewHandler(logger, estimateService)

	projectRepo := projects.NewRepository(pool)
	projectService := projects.NewService(projectRepo, audit)
	projectHandler := projects.NewHandler(logger, projectService)

	metrics := observability.NewMetrics()

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Metrics:         metrics,
		CatalogHandler:  catalogHandler,
		EstimateHandler: estimateHandler,
		ProjectsHandler: projectHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("api listening", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("api stopped")
}
