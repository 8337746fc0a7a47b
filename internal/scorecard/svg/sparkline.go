package svg

import (
	"fmt"
	"html/template"
	"strings"
)

// Sparkline renders an axis-free trend line scaled to the series' own range.
func Sparkline(width, height int, series []float64, opts SparkOpts) (template.HTML, error) {
	if len(series) < 2 {
		return "", errSeriesRequired
	}
	if width <= 0 {
		width = DefaultSparkWidth
	}
	if height <= 0 {
		height = DefaultSparkHeight
	}
	minVal, maxVal := bounds(series)
	if almostEqual(minVal, maxVal) {
		minVal--
		maxVal++
	}
	const inset = 2.0
	w := float64(width) - 2*inset
	h := float64(height) - 2*inset
	stroke := fallback(opts.StrokeColor, ColorPrimary)

	var line strings.Builder
	for i, v := range series {
		x := inset + float64(i)*w/float64(len(series)-1)
		y := inset + h - (v-minVal)*h/(maxVal-minVal)
		if i == 0 {
			fmt.Fprintf(&line, "M%.2f %.2f", x, y)
			continue
		}
		fmt.Fprintf(&line, " L%.2f %.2f", x, y)
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" class="sparkline" role="img">`, width, height)
	fmt.Fprintf(&b, `<title>%s</title>`, template.HTMLEscapeString(fallback(opts.Title, "Tendencia")))
	if opts.FillColor != "" {
		fmt.Fprintf(&b, `<path d="%s L%.2f %.2f L%.2f %.2f Z" fill="%s" stroke="none"></path>`, line.String(), inset+w, inset+h, inset, inset+h, opts.FillColor)
	}
	fmt.Fprintf(&b, `<path d="%s" fill="none" stroke="%s" stroke-width="1.5" stroke-linejoin="round" stroke-linecap="round"></path>`, line.String(), stroke)
	b.WriteString("</svg>")
	return template.HTML(b.String()), nil
}
