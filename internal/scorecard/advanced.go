package scorecard

import (
	"math"
	"math/rand/v2"
)

const (
	// YearHistoryLength covers the current month plus the twelve before it.
	YearHistoryLength = 13

	historyVolatility  = 0.15
	lowComplianceBias  = 1.01
	lowComplianceLimit = 0.9
	anomalySigma       = 1.5
	minRiskProbability = 5
	maxRiskProbability = 95
)

// MonthLabels are the chart labels for MonthlyHistory, oldest first.
var MonthLabels = [...]string{"Jul", "Ago", "Sep", "Oct", "Nov", "Dic"}

// AdvancedStats are the comparative statistics shown in the KPI drill-down.
type AdvancedStats struct {
	MoM             float64   `json:"mom"`
	YoY             float64   `json:"yoy"`
	VsAvg           float64   `json:"vs_avg"`
	IsAnomaly       bool      `json:"is_anomaly"`
	StdDev          float64   `json:"std_dev"`
	Avg             float64   `json:"avg"`
	RiskProbability float64   `json:"risk_probability"`
	History         []float64 `json:"history"`
}

// CalculateAdvancedStats synthesises a year of history ending at the KPI's actual
// value and derives its statistics.
func CalculateAdvancedStats(kpi KPI, r *rand.Rand) AdvancedStats {
	return StatsFromHistory(kpi, YearHistory(kpi, r))
}

// YearHistory walks backwards from the actual value with ±15% monthly changes.
// Missing KPIs get a 1% upward nudge per step so the past looks slightly better.
func YearHistory(kpi KPI, r *rand.Rand) []float64 {
	points := make([]float64, YearHistoryLength)
	cursor := kpi.Actual
	points[YearHistoryLength-1] = cursor
	lagging := kpi.Compliance() < lowComplianceLimit
	for i := YearHistoryLength - 2; i >= 0; i-- {
		change := (r.Float64() - 0.5) * 2 * historyVolatility
		prev := cursor / (1 + change)
		if lagging {
			prev *= lowComplianceBias
		}
		if prev < 0 {
			prev = 0
		}
		points[i] = prev
		cursor = prev
	}
	return points
}

// StatsFromHistory computes the statistics for a series whose last point is the
// current value, the one before it last month and the first one the same month a
// year earlier. The trailing window is every point except the current one.
// Fewer than two points yields zero stats.
func StatsFromHistory(kpi KPI, points []float64) AdvancedStats {
	if len(points) < 2 {
		return AdvancedStats{History: points}
	}
	current := points[len(points)-1]
	prevMonth := points[len(points)-2]
	lastYear := points[0]
	window := points[:len(points)-1]

	var sum float64
	for _, v := range window {
		sum += v
	}
	avg := sum / float64(len(window))

	var variance float64
	for _, v := range window {
		variance += (v - avg) * (v - avg)
	}
	stdDev := math.Sqrt(variance / float64(len(window)))

	mom := relativeChange(current, prevMonth)
	stats := AdvancedStats{
		MoM:       mom,
		YoY:       relativeChange(current, lastYear),
		VsAvg:     relativeChange(current, avg),
		IsAnomaly: stdDev > 0 && math.Abs(current-avg) > anomalySigma*stdDev,
		StdDev:    stdDev,
		Avg:       avg,
		History:   points,
	}
	stats.RiskProbability = RiskProbability(kpi, current, mom)
	return stats
}

// RiskProbability estimates the chance, in percent, of missing the target given
// the current value and its month-over-month change.
func RiskProbability(kpi KPI, current, mom float64) float64 {
	gapPercent := 0.0
	if kpi.Target != 0 {
		distance := kpi.Target - current
		if kpi.Inverse {
			distance = current - kpi.Target
		}
		gapPercent = distance / kpi.Target
	}
	momentum := mom
	if kpi.Inverse {
		momentum = -mom
	}

	var risk float64
	if gapPercent <= 0 {
		risk = 10
		if momentum < -0.05 {
			risk += 15
		}
	} else {
		risk = 30 + gapPercent*150
		switch {
		case momentum > 0.02:
			risk -= 20
		case momentum < 0:
			risk += 10
		}
	}
	return math.Max(minRiskProbability, math.Min(maxRiskProbability, risk))
}

func relativeChange(current, base float64) float64 {
	if base == 0 {
		return 0
	}
	return (current - base) / base
}

// HistoryPoint is one labelled month on the KPI chart.
type HistoryPoint struct {
	Label  string  `json:"label"`
	Value  float64 `json:"value"`
	Target float64 `json:"target"`
}

// MonthlyHistory returns the six-month chart series. The last month is the actual
// value; earlier months decay 5% per step back with ±10% noise.
func MonthlyHistory(kpi KPI, r *rand.Rand) []HistoryPoint {
	n := len(MonthLabels)
	points := make([]HistoryPoint, n)
	for i, label := range MonthLabels {
		value := kpi.Actual
		if i < n-1 {
			variance := (r.Float64() - 0.5) * 0.2
			timeFactor := 1 - float64(n-1-i)*0.05
			value = kpi.Actual * timeFactor * (1 + variance)
		}
		points[i] = HistoryPoint{Label: label, Value: math.Max(0, value), Target: kpi.Target}
	}
	return points
}
