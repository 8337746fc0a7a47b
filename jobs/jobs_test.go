package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	jobmetrics "github.com/bsc-scorecard/scorecard/internal/jobs"
	"github.com/bsc-scorecard/scorecard/internal/scorecard"
)

type stubObserver struct {
	calls    int
	analysis []scorecard.PerspectiveAnalysis
}

func (s *stubObserver) ObserveAnalysis(a []scorecard.PerspectiveAnalysis) {
	s.calls++
	s.analysis = a
}

type failingSource struct{}

func (failingSource) Epoch() scorecard.Epoch { return 1 }
func (failingSource) SnapshotAt(context.Context, scorecard.Epoch) (scorecard.Snapshot, error) {
	return scorecard.Snapshot{}, errors.New("redis down")
}

func newService(t *testing.T) *scorecard.Service {
	t.Helper()
	ds, err := scorecard.LoadSeed()
	require.NoError(t, err)
	now := time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)
	return scorecard.NewService(ds, nil, 24*time.Hour).WithNow(func() time.Time { return now })
}

func TestRiskScanReportsPriorities(t *testing.T) {
	svc := newService(t)
	reg := prometheus.NewRegistry()
	metrics := jobmetrics.NewMetrics(reg)
	observer := &stubObserver{}
	job := NewRiskScanJob(svc, observer, nil, metrics)

	task, err := NewRiskScanTask(RiskScanPayload{})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	require.Equal(t, 1, observer.calls)
	require.Len(t, observer.analysis, 4)
	priorities := 0
	for _, a := range observer.analysis {
		if a.IsPriority {
			priorities++
		}
	}
	assert.GreaterOrEqual(t, priorities, 1)

	count, err := testutil.GatherAndCount(reg, "scorecard_priority_alerts_total")
	require.NoError(t, err)
	assert.Equal(t, priorities, count)
	count, err = testutil.GatherAndCount(reg, "scorecard_jobs_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRiskScanUsesPayloadEpoch(t *testing.T) {
	svc := newService(t)
	observer := &stubObserver{}
	job := NewRiskScanJob(svc, observer, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	epoch := svc.Epoch() - scorecard.Epoch(24*time.Hour/time.Second)
	task, err := NewRiskScanTask(RiskScanPayload{Epoch: epoch})
	require.NoError(t, err)
	require.NoError(t, job.Handle(context.Background(), task))

	snap, err := svc.SnapshotAt(context.Background(), epoch)
	require.NoError(t, err)
	assert.Equal(t, snap.Analysis, observer.analysis)
}

func TestRiskScanEmptyPayloadAndBadPayload(t *testing.T) {
	svc := newService(t)
	job := NewRiskScanJob(svc, nil, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	assert.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskScorecardRiskScan, nil)))
	assert.ErrorIs(t, job.Handle(context.Background(), asynq.NewTask(TaskScorecardRiskScan, []byte("{"))), asynq.SkipRetry)

	var unset *RiskScanJob
	assert.Error(t, unset.Handle(context.Background(), asynq.NewTask(TaskScorecardRiskScan, nil)))
}

func TestRiskScanFailureIsCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	job := NewRiskScanJob(failingSource{}, nil, nil, jobmetrics.NewMetrics(reg))

	err := job.Handle(context.Background(), asynq.NewTask(TaskScorecardRiskScan, nil))
	require.Error(t, err)
	count, gatherErr := testutil.GatherAndCount(reg, "scorecard_jobs_failures_total")
	require.NoError(t, gatherErr)
	assert.Equal(t, 1, count)
}

func TestWarmupBuildsSnapshot(t *testing.T) {
	svc := newService(t)
	job := NewWarmupJob(svc, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))

	task, err := NewWarmupTask(WarmupPayload{})
	require.NoError(t, err)
	assert.NoError(t, job.Handle(context.Background(), task))

	failing := NewWarmupJob(failingSource{}, nil, jobmetrics.NewMetrics(prometheus.NewRegistry()))
	assert.Error(t, failing.Handle(context.Background(), task))
}

func TestTaskPayloads(t *testing.T) {
	task, err := NewWarmupTask(WarmupPayload{Epoch: 42})
	require.NoError(t, err)
	assert.Equal(t, TaskScorecardWarmup, task.Type())
	var payload WarmupPayload
	require.NoError(t, json.Unmarshal(task.Payload(), &payload))
	assert.Equal(t, scorecard.Epoch(42), payload.Epoch)
}

type stubInspector struct {
	info *asynq.QueueInfo
	err  error
}

func (s stubInspector) GetQueueInfo(string) (*asynq.QueueInfo, error) { return s.info, s.err }

func TestQueueHealth(t *testing.T) {
	cases := map[string]struct {
		inspector QueueInspector
		status    int
		pending   int
	}{
		"no inspector": {nil, http.StatusOK, 0},
		"pending":      {stubInspector{info: &asynq.QueueInfo{Queue: QueueDefault, Pending: 3}}, http.StatusOK, 3},
		"unreachable":  {stubInspector{err: errors.New("dial")}, http.StatusServiceUnavailable, 0},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			r := chi.NewRouter()
			r.Route("/jobs", NewHandler(tc.inspector, nil).MountRoutes)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/jobs/health", nil))
			require.Equal(t, tc.status, rr.Code)
			if tc.status != http.StatusOK {
				return
			}
			var body queueHealth
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
			assert.Equal(t, QueueDefault, body.Queue)
			assert.Equal(t, tc.pending, body.Pending)
		})
	}
}
