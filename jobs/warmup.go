package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bsc-scorecard/scorecard/internal/jobs"
)

// WarmupJob pre-populates the snapshot cache for an epoch.
type WarmupJob struct {
	Source  SnapshotSource
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewWarmupJob wires dependencies for the warmup handler.
func NewWarmupJob(source SnapshotSource, logger *slog.Logger, metrics *jobmetrics.Metrics) *WarmupJob {
	return &WarmupJob{Source: source, Logger: logger, Metrics: metrics}
}

// Handle processes snapshot warmup tasks.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("snapshot warmup: handler not configured")
	}
	var payload WarmupPayload
	if err := decodePayload(t, &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Epoch == 0 {
		payload.Epoch = j.Source.Epoch()
	}

	tracker := j.metrics().Track(TaskScorecardWarmup)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("epoch", payload.Epoch.String()))
	start := time.Now()

	warmCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()
	snap, err := j.Source.SnapshotAt(warmCtx, payload.Epoch)
	if err != nil {
		resultErr = err
		logger.Error("warm snapshot", slog.Any("error", err))
		return resultErr
	}

	logger.Info("completed snapshot warmup",
		slog.Int("perspectives", len(snap.Analysis)),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *WarmupJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskScorecardWarmup))
	}
	return slog.Default().With(slog.String("job", TaskScorecardWarmup))
}

func (j *WarmupJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
