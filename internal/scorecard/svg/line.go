package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Line renders a responsive SVG line chart for the given series and labels. When
// opts.Reference is set it is drawn as a dashed line on the same scale.
func Line(width, height int, series []float64, labels []string, opts LineOpts) (template.HTML, error) {
	if len(series) == 0 {
		return "", errSeriesRequired
	}
	if len(series) != len(labels) {
		return "", fmt.Errorf("svg: labels length must match series")
	}
	if len(opts.Reference) > 0 && len(opts.Reference) != len(series) {
		return "", fmt.Errorf("svg: reference length must match series")
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
	strokeColor := fallback(opts.StrokeColor, ColorPrimary)
	fillColor := fallback(opts.FillColor, "rgba(37,99,235,0.12)")
	axisColor := fallback(opts.AxisColor, "#475569")
	gridColor := fallback(opts.GridColor, "#e2e8f0")
	refColor := fallback(opts.ReferenceColor, ColorTarget)

	minVal, maxVal := domain(series, opts.Reference)
	p, err := newPlot(width, height, padding, minVal, maxVal)
	if err != nil {
		return "", err
	}
	x := func(i int) float64 {
		if len(series) == 1 {
			return p.padding + p.width/2
		}
		return p.padding + float64(i)*p.width/float64(len(series)-1)
	}
	path := func(values []float64) string {
		var sb strings.Builder
		for i, v := range values {
			cmd := " L"
			if i == 0 {
				cmd = "M"
			}
			fmt.Fprintf(&sb, "%s%.2f %.2f", cmd, x(i), p.y(v))
		}
		return sb.String()
	}

	titleID := makeID(opts.Title, "line-title")
	descID := makeID(opts.Title, "line-desc")

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" role="img" aria-labelledby="%s %s">`, width, height, titleID, descID)
	fmt.Fprintf(&b, `<title id="%s">%s</title>`, titleID, template.HTMLEscapeString(fallback(opts.Title, "Gráfico de línea")))
	fmt.Fprintf(&b, `<desc id="%s">%s</desc>`, descID, template.HTMLEscapeString(fallback(opts.Description, "Evolución mensual")))
	p.grid(&b, ticks, gridColor, axisColor)

	line := path(series)
	area := fmt.Sprintf("%s L%.2f %.2f L%.2f %.2f Z", line, x(len(series)-1), p.bottom(), x(0), p.bottom())
	fmt.Fprintf(&b, `<path d="%s" fill="%s" stroke="none" aria-hidden="true"></path>`, area, fillColor)
	if len(opts.Reference) > 0 {
		label := template.HTMLEscapeString(fallback(opts.ReferenceLabel, "Meta"))
		fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-dasharray="6,4" aria-label="%s"></path>`, path(opts.Reference), refColor, label)
	}
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="2" stroke-linejoin="round" stroke-linecap="round"></path>`, line, strokeColor)

	if opts.ShowDots {
		for i, v := range series {
			fmt.Fprintf(&b, `<circle cx="%.2f" cy="%.2f" r="3" fill="%s"></circle>`, x(i), p.y(v), strokeColor)
		}
	}
	for i, label := range labels {
		fmt.Fprintf(&b, `<text x="%.2f" y="%.2f" fill="%s" font-size="10" text-anchor="middle">%s</text>`, x(i), p.bottom()+14, axisColor, template.HTMLEscapeString(label))
	}
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
