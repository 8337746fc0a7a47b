package ui

import (
	"fmt"
	"html/template"
	"time"

	"github.com/bsc-scorecard/scorecard/internal/scorecard"
	"github.com/bsc-scorecard/scorecard/internal/scorecard/svg"
)

// StatCard is one headline metric with its sparkline.
type StatCard struct {
	Label      string
	Display    string
	Subtext    string
	MoM        float64
	MoMDisplay string
	Improving  bool
	Inverse    bool
	Sparkline  template.HTML
}

// KGIRow is a KGI summarised on a perspective card.
type KGIRow struct {
	ID           string
	Name         string
	Owner        string
	Score        float64
	ScoreDisplay string
	Status       scorecard.Status
}

// PerspectiveCard summarises one perspective on the dashboard.
type PerspectiveCard struct {
	Slug          string
	Name          string
	Health        float64
	HealthDisplay string
	Status        scorecard.Status
	Analysis      scorecard.PerspectiveAnalysis
	KGIs          []KGIRow
	Sparkline     template.HTML
}

// FilterOption is a select option of the table filters.
type FilterOption struct {
	Value    string
	Label    string
	Selected bool
}

// TableView is the filterable KGI→KPI table.
type TableView struct {
	Filter             scorecard.TableFilter
	Rows               []scorecard.TableRow
	EmptyMessage       string
	PerspectiveOptions []FilterOption
	StatusOptions      []FilterOption
	ExportURL          string
}

// KPIDetailView backs the KPI drill-down, both as a page and as the dashboard panel.
type KPIDetailView struct {
	Detail        scorecard.KPIDetail
	Row           scorecard.KPIRow
	HistorySVG    template.HTML
	YearSVG       template.HTML
	ComparisonSVG template.HTML
	MoM           string
	YoY           string
	VsAvg         string
	Risk          string
	RiskTier      RiskTier
	StdDev        string
	Average       string
	Improving     bool
	AnomalyNote   string
}

// RiskTier labels a probability of missing the target.
type RiskTier struct {
	Label string
	Class string
}

// Risk tier bounds, in percent. Low is strictly below LowRiskBelow; medium
// includes MediumRiskUpTo.
const (
	LowRiskBelow   = 20.0
	MediumRiskUpTo = 50.0
)

// RiskTierFor classifies a risk probability given in percent.
func RiskTierFor(probability float64) RiskTier {
	switch {
	case probability < LowRiskBelow:
		return RiskTier{Label: "Baja Probabilidad", Class: "risk-low"}
	case probability <= MediumRiskUpTo:
		return RiskTier{Label: "Riesgo Medio", Class: "risk-medium"}
	default:
		return RiskTier{Label: "Alta Probabilidad", Class: "risk-high"}
	}
}

// PerspectiveDetailView backs the perspective drill-down.
type PerspectiveDetailView struct {
	Card       PerspectiveCard
	Detail     scorecard.PerspectiveDetail
	HistorySVG template.HTML
	RiskScore  string
	Rows       []scorecard.TableRow
}

// DashboardViewModel combines all dashboard data for rendering.
type DashboardViewModel struct {
	Stats         []StatCard
	Priority      *scorecard.PerspectiveAnalysis
	Perspectives  []PerspectiveCard
	RadarSVG      template.HTML
	StatusBarsSVG template.HTML
	Table         TableView
	SelectedKPI   *KPIDetailView
	LastUpdated   time.Time
	Epoch         scorecard.Epoch
	UploadAccept  string
}

// LineRenderer abstracts SVG line chart rendering for the dashboard.
type LineRenderer interface {
	Line(width, height int, series []float64, labels []string, opts svg.LineOpts) (template.HTML, error)
}

// BarRenderer abstracts SVG bar chart rendering for the dashboard.
type BarRenderer interface {
	Bars(width, height int, series []svg.BarSeries, labels []string, opts svg.BarOpts) (template.HTML, error)
}

// SparklineRenderer abstracts the stat card sparklines.
type SparklineRenderer interface {
	Sparkline(width, height int, series []float64, opts svg.SparkOpts) (template.HTML, error)
}

// RadarRenderer abstracts the perspective radar chart.
type RadarRenderer interface {
	Radar(size int, values []float64, labels []string, opts svg.RadarOpts) (template.HTML, error)
}

// Signed renders a delta with an explicit sign and the given decimals.
func Signed(v float64, decimals int) string {
	return fmt.Sprintf("%+.*f", decimals, v)
}

// SignedPercent renders a relative change as a signed percentage.
func SignedPercent(ratio float64) string {
	return fmt.Sprintf("%+.1f%%", ratio*100)
}

// ToStatCard converts a global stat into a card without its sparkline.
func ToStatCard(label string, metric scorecard.StatMetric, decimals int) StatCard {
	return StatCard{
		Label:      label,
		Display:    metric.Display,
		Subtext:    metric.Subtext,
		MoM:        metric.MoM,
		MoMDisplay: Signed(metric.MoM, decimals),
		Improving:  metric.Improving(),
		Inverse:    metric.IsInverse,
	}
}

// ToKGIRows summarises KGIs with their weighted score and status.
func ToKGIRows(kgis []scorecard.KGI) []KGIRow {
	rows := make([]KGIRow, 0, len(kgis))
	for _, kgi := range kgis {
		score := kgi.Score()
		rows = append(rows, KGIRow{
			ID:           kgi.ID,
			Name:         kgi.Name,
			Owner:        kgi.Owner,
			Score:        score,
			ScoreDisplay: scorecard.FormatPercent(score),
			Status:       kgi.Status(),
		})
	}
	return rows
}

// ToPerspectiveCard builds the card for one perspective analysis.
func ToPerspectiveCard(analysis scorecard.PerspectiveAnalysis, kgis []scorecard.KGI) PerspectiveCard {
	health := scorecard.PerspectiveHealth(kgis)
	return PerspectiveCard{
		Slug:          analysis.Perspective.Slug(),
		Name:          analysis.Name,
		Health:        health,
		HealthDisplay: scorecard.FormatPercent(health),
		Status:        scorecard.Classify(health),
		Analysis:      analysis,
		KGIs:          ToKGIRows(kgis),
	}
}

// PerspectiveOptions lists the perspective filter choices, "all" first.
func PerspectiveOptions(f scorecard.TableFilter) []FilterOption {
	current := f.PerspectiveSlug()
	opts := []FilterOption{{Value: "all", Label: "Todas las perspectivas", Selected: current == "all"}}
	for _, p := range scorecard.Perspectives() {
		opts = append(opts, FilterOption{Value: p.Slug(), Label: p.String(), Selected: current == p.Slug()})
	}
	return opts
}

// StatusOptions lists the status filter choices, "all" first.
func StatusOptions(f scorecard.TableFilter) []FilterOption {
	current := f.StatusSlug()
	opts := []FilterOption{{Value: "all", Label: "Todos los estados", Selected: current == "all"}}
	for _, s := range scorecard.Statuses() {
		opts = append(opts, FilterOption{Value: s.Slug(), Label: s.String(), Selected: current == s.Slug()})
	}
	return opts
}

// NewTableView assembles the table with its filter controls.
func NewTableView(f scorecard.TableFilter, rows []scorecard.TableRow) TableView {
	view := TableView{
		Filter:             f,
		Rows:               rows,
		PerspectiveOptions: PerspectiveOptions(f),
		StatusOptions:      StatusOptions(f),
		ExportURL:          fmt.Sprintf("/scorecard/export.csv?perspective=%s&status=%s", f.PerspectiveSlug(), f.StatusSlug()),
	}
	if len(rows) == 0 {
		view.EmptyMessage = scorecard.EmptyTableMessage
	}
	return view
}

// NewKPIDetailView formats the advanced stats of a KPI detail. Charts are
// attached by the caller.
func NewKPIDetailView(detail scorecard.KPIDetail) KPIDetailView {
	stats := detail.Stats
	momentum := stats.MoM
	if detail.KPI.Inverse {
		momentum = -momentum
	}
	view := KPIDetailView{
		Detail:    detail,
		Row:       detail.Row,
		MoM:       SignedPercent(stats.MoM),
		YoY:       SignedPercent(stats.YoY),
		VsAvg:     SignedPercent(stats.VsAvg),
		Risk:      fmt.Sprintf("%.0f%%", stats.RiskProbability),
		RiskTier:  RiskTierFor(stats.RiskProbability),
		StdDev:    scorecard.Format(stats.StdDev, detail.KPI.Unit),
		Average:   scorecard.Format(stats.Avg, detail.KPI.Unit),
		Improving: momentum >= 0,
	}
	if stats.IsAnomaly {
		view.AnomalyNote = "Valor atípico: se desvía más de 1.5σ del promedio de 12 meses."
	}
	return view
}
