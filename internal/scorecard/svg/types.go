package svg

// LineOpts customises the line chart renderer.
type LineOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	AxisColor   string
	GridColor   string
	Padding     float64
	ShowDots    bool
	TickCount   int
	// Reference draws a dashed comparison series, usually the target.
	Reference      []float64
	ReferenceLabel string
	ReferenceColor string
}

// BarSeries is one coloured series of a grouped bar chart.
type BarSeries struct {
	Label  string
	Color  string
	Values []float64
}

// BarOpts customises the bar chart renderer.
type BarOpts struct {
	Title       string
	Description string
	AxisColor   string
	GridColor   string
	Padding     float64
	TickCount   int
}

// SparkOpts customises the sparkline renderer.
type SparkOpts struct {
	Title       string
	StrokeColor string
	FillColor   string
}

// RadarOpts customises the radar chart renderer.
type RadarOpts struct {
	Title       string
	Description string
	StrokeColor string
	FillColor   string
	GridColor   string
	LabelColor  string
	// Max is the value mapped to the outer ring; zero uses the largest value.
	Max   float64
	Rings int
}

// Defaults for the scorecard charts.
const (
	DefaultWidth       = 720
	DefaultHeight      = 240
	DefaultPadding     = 24.0
	DefaultTicks       = 5
	DefaultSparkWidth  = 120
	DefaultSparkHeight = 32
	DefaultRadarSize   = 320
	DefaultRings       = 4
)

// Palette used by the status-coloured charts.
const (
	ColorOptimal  = "#10b981"
	ColorWarning  = "#f59e0b"
	ColorCritical = "#ef4444"
	ColorPrimary  = "#2563eb"
	ColorTarget   = "#94a3b8"
)
