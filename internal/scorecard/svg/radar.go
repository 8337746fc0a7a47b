package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Radar renders a polar chart with one spoke per label. Values are scaled so
// opts.Max (or the largest value) touches the outer ring.
func Radar(size int, values []float64, labels []string, opts RadarOpts) (template.HTML, error) {
	if len(values) < 3 {
		return "", fmt.Errorf("svg: radar needs at least 3 axes")
	}
	if len(values) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match values")
	}
	if size <= 0 {
		size = DefaultRadarSize
	}
	rings := opts.Rings
	if rings <= 0 {
		rings = DefaultRings
	}
	maxVal := opts.Max
	if maxVal <= 0 {
		_, maxVal = bounds(values)
	}
	if maxVal <= 0 {
		maxVal = 1
	}
	stroke := fallback(opts.StrokeColor, ColorPrimary)
	fill := fallback(opts.FillColor, "rgba(37,99,235,0.25)")
	gridColor := fallback(opts.GridColor, "#e2e8f0")
	labelColor := fallback(opts.LabelColor, "#475569")

	center := float64(size) / 2
	radius := center * 0.62
	point := func(i int, r float64) (float64, float64) {
		angle := -math.Pi/2 + 2*math.Pi*float64(i)/float64(len(values))
		return center + r*math.Cos(angle), center + r*math.Sin(angle)
	}
	polygon := func(scale func(i int) float64) string {
		parts := make([]string, len(values))
		for i := range values {
			x, y := point(i, scale(i))
			parts[i] = fmt.Sprintf("%.2f,%.2f", x, y)
		}
		return strings.Join(parts, " ")
	}

	titleID := makeID(opts.Title, "radar-title")
	descID := makeID(opts.Title, "radar-desc")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, size, size, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Gráfico radar")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, "Comparación por eje")))

	for ring := 1; ring <= rings; ring++ {
		r := radius * float64(ring) / float64(rings)
		fmt.Fprintf(&b, `<polygon points="%s" fill="none" stroke="%s" stroke-width="0.75" aria-hidden="true"></polygon>`, polygon(func(int) float64 { return r }), gridColor)
	}
	for i, label := range labels {
		x, y := point(i, radius)
		fmt.Fprintf(&b, `<line x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="0.75" aria-hidden="true"></line>`, center, center, x, y, gridColor)
		lx, ly := point(i, radius+18)
		anchor := "middle"
		switch {
		case lx < center-1:
			anchor = "end"
		case lx > center+1:
			anchor = "start"
		}
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="11" text-anchor="%s">%s</text>`, lx, ly+4, labelColor, anchor, template.HTMLEscapeString(label))
	}

	data := polygon(func(i int) float64 {
		return radius * math.Max(0, math.Min(values[i], maxVal)) / maxVal
	})
	fmt.Fprintf(&b, `<polygon points="%s" fill="%s" stroke="%s" stroke-width="2"></polygon>`, data, fill, stroke)
	for i, v := range values {
		x, y := point(i, radius*math.Max(0, math.Min(v, maxVal))/maxVal)
		fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s" aria-label="%s: %s"></circle>`, x, y, stroke, template.HTMLEscapeString(labels[i]), formatTick(v))
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
