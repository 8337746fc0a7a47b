package svg

import "html/template"

// Renderer exposes the package chart functions as methods so callers can depend
// on narrow renderer interfaces.
type Renderer struct{}

// Line renders a line chart.
func (Renderer) Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	return Line(width, height, series, labels, opts)
}

// Bars renders a grouped bar chart.
func (Renderer) Bars(width, height int, series []BarSeries, labels []string, opts BarOpts) (template.HTML, error) {
	return Bars(width, height, series, labels, opts)
}

// Sparkline renders an axis-less trend line.
func (Renderer) Sparkline(width, height int, series []float64, opts SparkOpts) (template.HTML, error) {
	return Sparkline(width, height, series, opts)
}

// Radar renders a polygon chart on a circular grid.
func (Renderer) Radar(size int, values []float64, labels []string, opts RadarOpts) (template.HTML, error) {
	return Radar(size, values, labels, opts)
}
