package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestTrackerRecordsOutcome(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	assert.NoError(t, m.Track("scorecard:warmup").End(nil))
	boom := errors.New("boom")
	assert.ErrorIs(t, m.Track("scorecard:warmup").End(boom), boom)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("scorecard:warmup", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.runs.WithLabelValues("scorecard:warmup", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("scorecard:warmup")))
}

func TestPriorityAlerts(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())
	m.AddPriorityAlert("customer")
	m.AddPriorityAlert("customer")
	m.AddPriorityAlert("")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.alerts.WithLabelValues("customer")))

	var nilMetrics *Metrics
	nilMetrics.AddPriorityAlert("customer")
	assert.NoError(t, nilMetrics.Track("x").End(nil))
}
