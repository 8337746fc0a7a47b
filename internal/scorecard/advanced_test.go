package scorecard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trailing(current float64) []float64 {
	points := make([]float64, 0, YearHistoryLength)
	for i := 0; i < YearHistoryLength-1; i++ {
		if i%2 == 0 {
			points = append(points, 9)
		} else {
			points = append(points, 11)
		}
	}
	return append(points, current)
}

func TestStatsFromHistoryFlagsAnomaly(t *testing.T) {
	kpi := KPI{ID: "k", Target: 10, Actual: 12}
	stats := StatsFromHistory(kpi, trailing(12))
	assert.InDelta(t, 10.0, stats.Avg, 1e-9)
	assert.InDelta(t, 1.0, stats.StdDev, 1e-9)
	assert.True(t, stats.IsAnomaly)
	assert.InDelta(t, 0.2, stats.VsAvg, 1e-9)
}

func TestStatsFromHistoryWithinOneSigmaIsNotAnomaly(t *testing.T) {
	kpi := KPI{ID: "k", Target: 10, Actual: 10.5}
	stats := StatsFromHistory(kpi, trailing(10.5))
	assert.False(t, stats.IsAnomaly)
}

func TestStatsFromHistoryFlatSeriesIsNotAnomaly(t *testing.T) {
	points := make([]float64, YearHistoryLength)
	for i := range points {
		points[i] = 5
	}
	points[len(points)-1] = 8
	stats := StatsFromHistory(KPI{Target: 5, Actual: 8}, points)
	assert.Equal(t, 0.0, stats.StdDev)
	assert.False(t, stats.IsAnomaly)
}

func TestStatsFromHistoryRelativeChanges(t *testing.T) {
	points := trailing(12)
	stats := StatsFromHistory(KPI{Target: 10, Actual: 12}, points)
	assert.InDelta(t, (12.0-11.0)/11.0, stats.MoM, 1e-9)
	assert.InDelta(t, (12.0-9.0)/9.0, stats.YoY, 1e-9)

	zero := StatsFromHistory(KPI{Target: 10}, []float64{0, 0, 3})
	assert.Equal(t, 0.0, zero.MoM)
	assert.Equal(t, 0.0, zero.YoY)
	assert.Equal(t, 0.0, zero.VsAvg)
}

func TestStatsFromHistoryShortSeries(t *testing.T) {
	stats := StatsFromHistory(KPI{Target: 1}, []float64{1})
	assert.Equal(t, AdvancedStats{History: []float64{1}}, stats)
}

func TestRiskProbability(t *testing.T) {
	direct := KPI{Target: 100}
	assert.InDelta(t, 10.0, RiskProbability(direct, 120, 0), 1e-9)
	assert.InDelta(t, 25.0, RiskProbability(direct, 120, -0.1), 1e-9)
	assert.InDelta(t, 60.0, RiskProbability(direct, 80, 0.01), 1e-9)
	assert.InDelta(t, 40.0, RiskProbability(direct, 80, 0.05), 1e-9)
	assert.InDelta(t, 70.0, RiskProbability(direct, 80, -0.01), 1e-9)
	assert.InDelta(t, 95.0, RiskProbability(direct, 0, 0), 1e-9)

	inverse := KPI{Target: 10, Inverse: true}
	assert.InDelta(t, 70.0, RiskProbability(inverse, 12, 0.1), 1e-9)
	assert.InDelta(t, 40.0, RiskProbability(inverse, 12, -0.1), 1e-9)
	assert.InDelta(t, 10.0, RiskProbability(inverse, 8, -0.1), 1e-9)

	assert.InDelta(t, 10.0, RiskProbability(KPI{}, 5, 0), 1e-9)
}

func TestRiskProbabilityClampedLow(t *testing.T) {
	// beating target can never go below the floor
	for _, mom := range []float64{-1, 0, 1} {
		risk := RiskProbability(KPI{Target: 100}, 500, mom)
		assert.GreaterOrEqual(t, risk, 5.0)
		assert.LessOrEqual(t, risk, 95.0)
	}
}

func TestYearHistory(t *testing.T) {
	kpi := KPI{ID: "f1-main", Target: 0.40, Actual: 0.35}
	seed := SeedFor("kpi-year", kpi.ID, testEpoch)
	points := YearHistory(kpi, seed.Rand())
	require.Len(t, points, YearHistoryLength)
	assert.Equal(t, kpi.Actual, points[YearHistoryLength-1])
	for _, p := range points {
		assert.GreaterOrEqual(t, p, 0.0)
	}
	assert.Equal(t, points, YearHistory(kpi, seed.Rand()))

	stats := CalculateAdvancedStats(kpi, seed.Rand())
	assert.Equal(t, points, stats.History)
	assert.GreaterOrEqual(t, stats.RiskProbability, 5.0)
	assert.LessOrEqual(t, stats.RiskProbability, 95.0)
}

func TestMonthlyHistory(t *testing.T) {
	kpi := KPI{ID: "c3-1", Target: 5000, Actual: 5800}
	points := MonthlyHistory(kpi, SeedFor("kpi-month", kpi.ID, testEpoch).Rand())
	require.Len(t, points, len(MonthLabels))
	for i, p := range points {
		assert.Equal(t, MonthLabels[i], p.Label)
		assert.Equal(t, kpi.Target, p.Target)
		if i == len(points)-1 {
			assert.Equal(t, kpi.Actual, p.Value)
			continue
		}
		base := kpi.Actual * (1 - float64(len(points)-1-i)*0.05)
		assert.GreaterOrEqual(t, p.Value, base*0.9-1e-9)
		assert.LessOrEqual(t, p.Value, base*1.1+1e-9)
	}
	assert.Equal(t, "Dic", points[len(points)-1].Label)
}
