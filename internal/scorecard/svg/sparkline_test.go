package svg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSparkline(t *testing.T) {
	html, err := Sparkline(0, 0, []float64{40, 42, 41, 44, 46, 48}, SparkOpts{Title: "Total", FillColor: "rgba(0,0,0,0.1)"})
	require.NoError(t, err)
	output := string(html)
	assert.Contains(t, output, `viewBox="0 0 120 32"`)
	assert.Equal(t, 2, strings.Count(output, "<path"))
}

func TestSparklineFlatSeries(t *testing.T) {
	html, err := Sparkline(100, 20, []float64{5, 5, 5}, SparkOpts{})
	require.NoError(t, err)
	assert.Contains(t, string(html), "M2.00 10.00")
	assert.NotContains(t, string(html), "NaN")
}

func TestSparklineNeedsTwoPoints(t *testing.T) {
	_, err := Sparkline(100, 20, []float64{1}, SparkOpts{})
	assert.ErrorIs(t, err, errSeriesRequired)
}
