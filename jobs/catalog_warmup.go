package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/prakira-pmo/prakira-pmo/internal/catalog"
	jobmetrics "github.com/prakira-pmo/prakira-pmo/internal/jobs"
)

// CatalogWarmupJob pre-fills the cached rate listings so the first dashboard
// request after an invalidation does not pay the fill.
type CatalogWarmupJob struct {
	Catalog *catalog.Service
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewCatalogWarmupJob wires dependencies for the warmup handler.
func NewCatalogWarmupJob(catalogSvc *catalog.Service, logger *slog.Logger, metrics *jobmetrics.Metrics) *CatalogWarmupJob {
	return &CatalogWarmupJob{Catalog: catalogSvc, Logger: logger, Metrics: metrics}
}

// Handle processes TaskCatalogWarmup tasks.
func (j *CatalogWarmupJob) Handle(ctx context.Context, _ *asynq.Task) error {
	if j == nil || j.Catalog == nil {
		return errors.New("catalog warmup: handler not configured")
	}
	tracker := j.metrics().Track(TaskCatalogWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger()
	started := time.Now()

	warmCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if resultErr = j.Catalog.Warmup(warmCtx); resultErr != nil {
		logger.Error("catalog warmup", slog.Any("error", resultErr))
		return resultErr
	}
	logger.Info("completed catalog warmup", slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *CatalogWarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskCatalogWarmup))
	}
	return slog.Default().With(slog.String("job", TaskCatalogWarmup))
}

func (j *CatalogWarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
