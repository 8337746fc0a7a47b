package svg

import (
	"fmt"
	"html/template"
	"math"
	"strings"
)

// Bars renders a grouped bar chart with one bar per series in each label group.
func Bars(width, height int, series []BarSeries, labels []string, opts BarOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", errSeriesRequired
	}
	if len(labels) == 0 {
		return "", fmt.Errorf("svg: labels required")
	}
	values := make([][]float64, 0, len(series))
	for _, s := range series {
		if len(s.Values) != len(labels) {
			return "", fmt.Errorf("svg: series %q length must match labels", s.Label)
		}
		values = append(values, s.Values)
	}
	if width <= 0 {
		width = DefaultWidth
	}
	if height <= 0 {
		height = DefaultHeight
	}
	padding := opts.Padding
	if padding <= 0 {
		padding = DefaultPadding
	}
	ticks := opts.TickCount
	if ticks <= 0 {
		ticks = DefaultTicks
	}
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#e2e8f0")

	minVal, maxVal := domain(values...)
	p, err := newPlot(width, height, padding, minVal, maxVal)
	if err != nil {
		return "", err
	}
	zeroY := p.y(0)
	groupWidth := p.width / float64(len(labels))
	barWidth := groupWidth * 0.8 / float64(len(series))

	titleID := makeID(opts.Title, "bar-title")
	descID := makeID(opts.Title, "bar-desc")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, width, height, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Gráfico de barras")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, "Comparación por grupo")))
	p.grid(&b, ticks, gridColor, axisColor)

	for i, label := range labels {
		groupX := p.padding + float64(i)*groupWidth + groupWidth*0.1
		for j, s := range series {
			v := s.Values[i]
			top := math.Min(p.y(v), zeroY)
			h := math.Abs(p.y(v) - zeroY)
			fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" aria-label="%s %s: %s"></rect>`,
				groupX+float64(j)*barWidth, top, barWidth, h, fallback(s.Color, ColorPrimary),
				template.HTMLEscapeString(s.Label), template.HTMLEscapeString(label), formatTick(v))
		}
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, p.padding+float64(i)*groupWidth+groupWidth/2, p.bottom()+14, axisColor, template.HTMLEscapeString(label))
	}

	legendX := p.padding
	legendY := math.Max(p.padding-12, 12)
	for _, s := range series {
		fmt.Fprintf(&b, `<rect x="%.2f" y="%.2f" width="10" height="10" fill="%s"></rect>`, legendX, legendY-8, fallback(s.Color, ColorPrimary))
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="start">%s</text>`, legendX+14, legendY, axisColor, template.HTMLEscapeString(s.Label))
		legendX += 90
	}

	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
