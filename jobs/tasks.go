package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/bsc-scorecard/scorecard/internal/scorecard"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskScorecardRiskScan recomputes the perspective analysis and reports priorities.
	TaskScorecardRiskScan = "scorecard:risk_scan"
	// TaskScorecardWarmup builds and caches the dashboard snapshot.
	TaskScorecardWarmup = "scorecard:warmup"
)

// RiskScanPayload selects the epoch to scan. Zero means the current epoch.
type RiskScanPayload struct {
	Epoch scorecard.Epoch `json:"epoch,omitempty"`
}

// WarmupPayload selects the epoch to warm. Zero means the current epoch.
type WarmupPayload struct {
	Epoch scorecard.Epoch `json:"epoch,omitempty"`
}

// NewRiskScanTask constructs a risk scan task.
func NewRiskScanTask(payload RiskScanPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScorecardRiskScan, data), nil
}

// NewWarmupTask constructs a snapshot warmup task.
func NewWarmupTask(payload WarmupPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskScorecardWarmup, data), nil
}

// decodePayload tolerates an empty payload so cron entries may omit one.
func decodePayload(t *asynq.Task, dest any) error {
	if len(t.Payload()) == 0 {
		return nil
	}
	return json.Unmarshal(t.Payload(), dest)
}
