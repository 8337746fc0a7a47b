package scorecard

import (
	"math"
	"math/rand/v2"
	"time"
)

// Volatilities used by the synthetic global and perspective series.
const (
	totalVolatility       = 0.05
	complianceVolatility  = 0.05
	criticalVolatility    = 0.4
	perspectiveVolatility = 0.08
)

// StatMetric is one headline card: a value plus its synthetic trend.
type StatMetric struct {
	Value     float64   `json:"value"`
	Display   string    `json:"display"`
	Subtext   string    `json:"subtext"`
	TrendData []float64 `json:"trend_data"`
	MoM       float64   `json:"mom"`
	IsInverse bool      `json:"is_inverse"`
}

// Improving reports whether the month-over-month change points the right way.
func (m StatMetric) Improving() bool {
	up := m.MoM >= 0
	if m.IsInverse {
		return !up
	}
	return up
}

// DashboardStats is the global roll-up shown in the header.
type DashboardStats struct {
	TotalIndicators  StatMetric `json:"total_indicators"`
	GlobalCompliance StatMetric `json:"global_compliance"`
	CriticalCount    StatMetric `json:"critical_count"`
	LastUpdated      time.Time  `json:"last_updated"`
}

// KGIScore is the weighted mean of KPI compliances. When the weights sum to zero
// the unweighted mean is used; an empty slice scores zero.
func KGIScore(kpis []KPI) float64 {
	if len(kpis) == 0 {
		return 0
	}
	var weighted, totalWeight, plain float64
	for _, kpi := range kpis {
		c := kpi.Compliance()
		weighted += c * kpi.Weight
		totalWeight += kpi.Weight
		plain += c
	}
	if totalWeight > 0 {
		return weighted / totalWeight
	}
	return plain / float64(len(kpis))
}

// GlobalStats rolls every KPI up into the header metrics. Weights are each KPI's
// own weight, not nested by KGI.
func GlobalStats(kgis []KGI, epoch Epoch, now time.Time) DashboardStats {
	var total, critical int
	var weighted, totalWeight float64
	for _, kgi := range kgis {
		for _, kpi := range kgi.KPIs {
			total++
			c := kpi.Compliance()
			if Classify(c) == StatusCritical {
				critical++
			}
			weighted += c * kpi.Weight
			totalWeight += kpi.Weight
		}
	}
	compliance := 0.0
	if totalWeight > 0 {
		compliance = weighted / totalWeight
	}
	compliancePercent := math.Round(compliance*1000) / 10

	totalSeries := SparklineSeries(SeedFor("global", "total", epoch).Rand(), float64(total), totalVolatility)
	complianceSeries := SparklineSeries(SeedFor("global", "compliance", epoch).Rand(), compliancePercent, complianceVolatility)
	criticalSeries := SparklineSeries(SeedFor("global", "critical", epoch).Rand(), float64(critical), criticalVolatility)

	return DashboardStats{
		TotalIndicators: StatMetric{
			Value:     float64(total),
			Display:   Format(float64(total), UnitCount),
			Subtext:   "Monitorizados activamente",
			TrendData: totalSeries,
			MoM:       LastDelta(totalSeries),
		},
		GlobalCompliance: StatMetric{
			Value:     compliancePercent,
			Display:   Format(compliancePercent/100, UnitPercentage),
			Subtext:   "Promedio ponderado",
			TrendData: complianceSeries,
			MoM:       LastDelta(complianceSeries),
		},
		CriticalCount: StatMetric{
			Value:     float64(critical),
			Display:   Format(float64(critical), UnitCount),
			Subtext:   "Requieren atención",
			TrendData: criticalSeries,
			MoM:       LastDelta(criticalSeries),
			IsInverse: true,
		},
		LastUpdated: now,
	}
}

// Trend is the direction of the last step of a series.
type Trend string

// Trend directions.
const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// StatusCounts tallies KPIs per status.
type StatusCounts struct {
	Optimal  int `json:"optimal"`
	Warning  int `json:"warning"`
	Critical int `json:"critical"`
}

// Total returns the number of classified KPIs.
func (c StatusCounts) Total() int {
	return c.Optimal + c.Warning + c.Critical
}

// Of returns the count for a single status.
func (c StatusCounts) Of(s Status) int {
	switch s {
	case StatusOptimal:
		return c.Optimal
	case StatusWarning:
		return c.Warning
	case StatusCritical:
		return c.Critical
	default:
		return 0
	}
}

// PerspectiveAnalysis is the derived view-model for one perspective.
type PerspectiveAnalysis struct {
	Perspective  Perspective       `json:"perspective"`
	Name         string            `json:"name"`
	Score        float64           `json:"score"`
	Target       float64           `json:"target"`
	Gap          float64           `json:"gap"`
	GapPercent   float64           `json:"gap_percent"`
	Trend        Trend             `json:"trend"`
	TrendValue   float64           `json:"trend_value"`
	History      []float64         `json:"history"`
	StatusCounts StatusCounts      `json:"status_counts"`
	RiskScore    float64           `json:"risk_score"`
	IsPriority   bool              `json:"is_priority"`
	RiskyKPIs    []KPI             `json:"risky_kpis"`
	Remediation  []RemediationPlan `json:"remediation"`
}

// RiskScore blends the severity-weighted defect ratio (70%) with the normalised
// compliance gap (30%). The result lies roughly in [0, 3].
func RiskScore(counts StatusCounts, scorePercent float64) float64 {
	riskFactor := 0.0
	if total := counts.Total(); total > 0 {
		riskFactor = float64(3*counts.Critical+counts.Warning) / float64(total)
	}
	gapFactor := math.Max(0, 100-scorePercent) / 100
	return riskFactor*0.7 + gapFactor*0.3
}

// AnalyzePerspectives scores every perspective and flags the priority ones.
func AnalyzePerspectives(kgis []KGI, epoch Epoch) []PerspectiveAnalysis {
	analysis := make([]PerspectiveAnalysis, 0, len(perspectiveOrder))
	for _, p := range perspectiveOrder {
		var owned []KGI
		for _, kgi := range kgis {
			if kgi.Perspective == p {
				owned = append(owned, kgi)
			}
		}
		analysis = append(analysis, analyzePerspective(p, owned, SeedFor("perspective", p.Slug(), epoch).Rand()))
	}
	MarkPriority(analysis)
	return analysis
}

func analyzePerspective(p Perspective, kgis []KGI, r *rand.Rand) PerspectiveAnalysis {
	var counts StatusCounts
	var totalScore float64
	var risky []KPI
	for _, kgi := range kgis {
		for _, kpi := range kgi.KPIs {
			c := kpi.Compliance()
			totalScore += c
			switch Classify(c) {
			case StatusCritical:
				counts.Critical++
				risky = append(risky, kpi)
			case StatusWarning:
				counts.Warning++
				risky = append(risky, kpi)
			default:
				counts.Optimal++
			}
		}
	}

	avg := 0.0
	if total := counts.Total(); total > 0 {
		avg = totalScore / float64(total)
	}
	scorePercent := avg * 100

	history := SparklineSeries(r, scorePercent, perspectiveVolatility)
	current := history[len(history)-1]
	prev := history[len(history)-2]
	trend := TrendStable
	switch {
	case current > prev:
		trend = TrendUp
	case current < prev:
		trend = TrendDown
	}

	owner := ""
	if len(kgis) > 0 {
		owner = kgis[0].Owner
	}

	return PerspectiveAnalysis{
		Perspective:  p,
		Name:         p.String(),
		Score:        scorePercent,
		Target:       100,
		Gap:          100 - scorePercent,
		GapPercent:   (100 - scorePercent) / 100,
		Trend:        trend,
		TrendValue:   current - prev,
		History:      history,
		StatusCounts: counts,
		RiskScore:    RiskScore(counts, scorePercent),
		RiskyKPIs:    risky,
		Remediation:  Remediation(p, len(risky), owner, r),
	}
}

// MarkPriority flags every perspective sharing the maximum risk score. Nothing is
// flagged when the maximum is not positive.
func MarkPriority(analysis []PerspectiveAnalysis) {
	if len(analysis) == 0 {
		return
	}
	maxRisk := math.Inf(-1)
	for _, a := range analysis {
		if a.RiskScore > maxRisk {
			maxRisk = a.RiskScore
		}
	}
	for i := range analysis {
		analysis[i].IsPriority = maxRisk > 0 && analysis[i].RiskScore == maxRisk
	}
}

// FirstPriority returns the first priority perspective, if any.
func FirstPriority(analysis []PerspectiveAnalysis) (PerspectiveAnalysis, bool) {
	for _, a := range analysis {
		if a.IsPriority {
			return a, true
		}
	}
	return PerspectiveAnalysis{}, false
}

// PerspectiveHealth is the unweighted mean compliance of every KPI in kgis.
func PerspectiveHealth(kgis []KGI) float64 {
	var total float64
	var count int
	for _, kgi := range kgis {
		for _, kpi := range kgi.KPIs {
			total += kpi.Compliance()
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
