// Package jobs holds the background task definitions and the Asynq worker
// that runs them.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskEstimateRecost replays the totals cascade over stored estimates.
	TaskEstimateRecost = "estimate:recost"
	// TaskCatalogWarmup pre-fills the rate catalog cache.
	TaskCatalogWarmup = "catalog:warmup"
)

// EstimateRecostPayload scopes a recost run. A zero EstimateID means every
// draft estimate.
type EstimateRecostPayload struct {
	EstimateID int64  `json:"estimateId,omitempty"`
	RunRef     string `json:"runRef,omitempty"`
}

// NewEstimateRecostTask constructs a recost task. The run ref is derived
// deterministically from the payload so re-enqueued runs are traceable.
func NewEstimateRecostTask(payload EstimateRecostPayload) (*asynq.Task, error) {
	if payload.RunRef == "" {
		payload.RunRef = uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("RECOST:%d", payload.EstimateID))).String()
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEstimateRecost, data), nil
}

// CatalogWarmupPayload is currently empty; the warmup always refreshes every
// catalog listing.
type CatalogWarmupPayload struct{}

// NewCatalogWarmupTask constructs a catalog warmup task.
func NewCatalogWarmupTask() (*asynq.Task, error) {
	data, err := json.Marshal(CatalogWarmupPayload{})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskCatalogWarmup, data), nil
}
