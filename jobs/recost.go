package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/prakira-pmo/prakira-pmo/internal/estimate"
	jobmetrics "github.com/prakira-pmo/prakira-pmo/internal/jobs"
)

const recostConcurrency = 4

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// EstimateRecostJob replays the totals cascade over stored estimates and
// repairs drifted persisted totals. Recost never changes inputs, only derived
// state, so a targeted run accepts finalized estimates too; full runs fan out
// over drafts only.
type EstimateRecostJob struct {
	Estimates *estimate.Service
	Repo      estimate.Repository
	Logger    *slog.Logger
	Metrics   *jobmetrics.Metrics
}

// NewEstimateRecostJob wires dependencies for the recost handler.
func NewEstimateRecostJob(estimates *estimate.Service, repo estimate.Repository, logger *slog.Logger, metrics *jobmetrics.Metrics) *EstimateRecostJob {
	return &EstimateRecostJob{Estimates: estimates, Repo: repo, Logger: logger, Metrics: metrics}
}

// Handle processes TaskEstimateRecost tasks.
func (j *EstimateRecostJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Estimates == nil || j.Repo == nil {
		return errors.New("estimate recost: handler not configured")
	}
	var payload EstimateRecostPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskEstimateRecost)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("run_ref", payload.RunRef))
	started := time.Now()

	ids := []int64{payload.EstimateID}
	if payload.EstimateID == 0 {
		ids, resultErr = j.Repo.ListIDsByStatus(ctx, estimate.EstimateStatusDraft)
		if resultErr != nil {
			logger.Error("list draft estimates", slog.Any("error", resultErr))
			return resultErr
		}
	}
	if len(ids) == 0 {
		logger.Info("no estimates to recost")
		return nil
	}

	var drifted atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(recostConcurrency)
	for _, id := range ids {
		id := id
		group.Go(func() error {
			res, err := j.Estimates.Recost(groupCtx, id, "worker")
			if err != nil {
				return err
			}
			if res.Drifted {
				drifted.Add(1)
				logger.Warn("repaired drifted totals",
					slog.Int64("estimate_id", res.EstimateID),
					slog.String("doc_number", res.DocNumber),
					slog.Float64("before", res.Before.GrandTotal),
					slog.Float64("after", res.After.GrandTotal))
			}
			return nil
		})
	}
	if resultErr = group.Wait(); resultErr != nil {
		logger.Error("recost run failed", slog.Any("error", resultErr))
		return resultErr
	}

	j.metrics().AddRepairs(TaskEstimateRecost, int(drifted.Load()))
	logger.Info("completed estimate recost",
		slog.Int("estimates", len(ids)),
		slog.Int64("drifted", drifted.Load()),
		slog.Duration("duration", time.Since(started)))
	return nil
}

func (j *EstimateRecostJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskEstimateRecost))
	}
	return slog.Default().With(slog.String("job", TaskEstimateRecost))
}

func (j *EstimateRecostJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
