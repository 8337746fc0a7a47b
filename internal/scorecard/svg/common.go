package svg

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	errSeriesRequired = errors.New("svg: series required")
	errViewport       = errors.New("svg: viewport too small")
)

func fallback(value, defaultValue string) string {
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	return value
}

func bounds(series ...[]float64) (float64, float64) {
	minVal, maxVal := math.Inf(1), math.Inf(-1)
	for _, s := range series {
		for _, v := range s {
			minVal = math.Min(minVal, v)
			maxVal = math.Max(maxVal, v)
		}
	}
	if math.IsInf(minVal, 1) {
		return 0, 0
	}
	return minVal, maxVal
}

// domain widens [min, max] to include zero and never collapses to a point.
func domain(series ...[]float64) (float64, float64) {
	minVal, maxVal := bounds(series...)
	minVal = math.Min(minVal, 0)
	maxVal = math.Max(maxVal, 0)
	if almostEqual(maxVal, minVal) {
		maxVal = minVal + 1
	}
	return minVal, maxVal
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func makeID(base, suffix string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '-'
		}
	}, strings.ToLower(strings.TrimSpace(base)))
	cleaned = strings.Trim(cleaned, "-")
	if cleaned == "" {
		cleaned = "chart"
	}
	return cleaned + "-" + suffix
}

func formatTick(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case abs >= 1_000:
		return fmt.Sprintf("%.1fk", v/1_000)
	case almostEqual(v, math.Round(v)):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

type plot struct {
	padding, width, height float64
	minVal, maxVal         float64
}

func newPlot(width, height int, padding float64, minVal, maxVal float64) (plot, error) {
	p := plot{
		padding: padding,
		width:   float64(width) - 2*padding,
		height:  float64(height) - 2*padding,
		minVal:  minVal,
		maxVal:  maxVal,
	}
	if p.width <= 0 || p.height <= 0 {
		return plot{}, errViewport
	}
	return p, nil
}

func (p plot) y(value float64) float64 {
	return p.padding + p.height - (value-p.minVal)*p.height/(p.maxVal-p.minVal)
}

func (p plot) bottom() float64 {
	return p.padding + p.height
}

func (p plot) grid(b *strings.Builder, ticks int, gridColor, axisColor string) {
	for i := 0; i <= ticks; i++ {
		ratio := float64(i) / float64(ticks)
		value := p.minVal + (p.maxVal-p.minVal)*ratio
		y := p.y(value)
		fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.5" stroke-dasharray="2,4" aria-hidden="true"></line>`, p.padding, y, p.padding+p.width, y, gridColor)
		fmt.Fprintf(b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="end">%s</text>`, p.padding-6, y+4, axisColor, formatTick(value))
	}
	fmt.Fprintf(b, `<g stroke="%s" aria-label="Ejes">`, axisColor)
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, p.padding, p.padding, p.padding, p.bottom())
	fmt.Fprintf(b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke-width="1"></line>`, p.padding, p.y(0), p.padding+p.width, p.y(0))
	b.WriteString("</g>")
}
