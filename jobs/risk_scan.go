package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/bsc-scorecard/scorecard/internal/jobs"
	"github.com/bsc-scorecard/scorecard/internal/scorecard"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// SnapshotSource yields the analysis for an epoch.
type SnapshotSource interface {
	Epoch() scorecard.Epoch
	SnapshotAt(ctx context.Context, epoch scorecard.Epoch) (scorecard.Snapshot, error)
}

// AnalysisObserver publishes per-perspective gauges.
type AnalysisObserver interface {
	ObserveAnalysis(analysis []scorecard.PerspectiveAnalysis)
}

// RiskScanJob recomputes the perspective analysis and reports priority perspectives.
type RiskScanJob struct {
	Source   SnapshotSource
	Observer AnalysisObserver
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewRiskScanJob initialises the risk scan handler.
func NewRiskScanJob(source SnapshotSource, observer AnalysisObserver, logger *slog.Logger, metrics *jobmetrics.Metrics) *RiskScanJob {
	return &RiskScanJob{
		Source:   source,
		Observer: observer,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Handle executes the risk scan.
func (j *RiskScanJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Source == nil {
		return errors.New("risk scan: handler not configured")
	}
	var payload RiskScanPayload
	if err := decodePayload(t, &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.Epoch == 0 {
		payload.Epoch = j.Source.Epoch()
	}

	start := j.now()
	tracker := j.metrics().Track(TaskScorecardRiskScan)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("epoch", payload.Epoch.String()))
	logger.Info("starting risk scan")

	snap, err := j.Source.SnapshotAt(ctx, payload.Epoch)
	if err != nil {
		resultErr = err
		logger.Error("scan failed", slog.Any("error", err))
		return resultErr
	}
	if j.Observer != nil {
		j.Observer.ObserveAnalysis(snap.Analysis)
	}

	priorities := 0
	for _, a := range snap.Analysis {
		if !a.IsPriority {
			continue
		}
		priorities++
		logger.Warn("priority perspective",
			slog.String("perspective", a.Perspective.Slug()),
			slog.Float64("score", a.Score),
			slog.Float64("risk_score", a.RiskScore),
			slog.Int("risky_kpis", len(a.RiskyKPIs)),
		)
		j.metrics().AddPriorityAlert(a.Perspective.Slug())
	}

	logger.Info("completed risk scan",
		slog.Int("perspectives", len(snap.Analysis)),
		slog.Int("priorities", priorities),
		slog.Duration("duration", time.Since(start)),
	)
	return resultErr
}

func (j *RiskScanJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskScorecardRiskScan))
	}
	return slog.Default().With(slog.String("job", TaskScorecardRiskScan))
}

func (j *RiskScanJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *RiskScanJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
