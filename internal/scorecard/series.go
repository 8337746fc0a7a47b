package scorecard

import (
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"time"
)

// SeriesLength is the number of points in every sparkline series.
const SeriesLength = 6

// Epoch identifies a render window; synthetic values are stable within one.
type Epoch int64

// EpochAt truncates t to the window. A non-positive window falls back to one day.
func EpochAt(t time.Time, window time.Duration) Epoch {
	if window <= 0 {
		window = 24 * time.Hour
	}
	return Epoch(t.UTC().Truncate(window).Unix())
}

// String implements fmt.Stringer.
func (e Epoch) String() string {
	return strconv.FormatInt(int64(e), 10)
}

// Seed keys a reproducible pseudo-random stream.
type Seed uint64

// SeedFor derives the seed for an entity within an epoch.
func SeedFor(scope, id string, epoch Epoch) Seed {
	h := fnv.New64a()
	_, _ = h.Write([]byte(scope))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(id))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(epoch.String()))
	return Seed(h.Sum64())
}

// Rand returns a fresh generator for the seed.
func (s Seed) Rand() *rand.Rand {
	return rand.New(rand.NewPCG(uint64(s), uint64(s)^0x9e3779b97f4a7c15))
}

// SparklineSeries returns SeriesLength points ending exactly at current. The first
// point is current scaled by a uniform factor in [1-volatility, 1+volatility);
// the next points random-walk from it with a slight upward bias and never drop
// below zero.
func SparklineSeries(r *rand.Rand, current, volatility float64) []float64 {
	points := make([]float64, SeriesLength)
	prev := current * (1 - volatility + r.Float64()*2*volatility)
	if prev < 0 {
		prev = 0
	}
	points[0] = prev
	for i := 1; i < SeriesLength-1; i++ {
		val := prev + (r.Float64()-0.45)*volatility*current
		if val < 0 {
			val = 0
		}
		points[i] = val
		prev = val
	}
	points[SeriesLength-1] = current
	return points
}

// LastDelta returns the difference between the last two points.
func LastDelta(series []float64) float64 {
	if len(series) < 2 {
		return 0
	}
	return series[len(series)-1] - series[len(series)-2]
}
