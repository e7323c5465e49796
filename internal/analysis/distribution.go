package analysis

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
)

// Distribution summarizes a sample of outcomes.
type Distribution struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Median float64
	P05    float64
	P95    float64
}

func Summarize(xs []float64) Distribution {
	d := Distribution{Count: len(xs)}
	if len(xs) == 0 {
		return d
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	d.Min = sorted[0]
	d.Max = sorted[len(sorted)-1]
	d.Mean, _ = stats.Mean(sorted)
	d.Median, _ = stats.Median(sorted)
	d.P05 = percentileSorted(sorted, 0.05)
	d.P95 = percentileSorted(sorted, 0.95)
	return d
}

// percentileSorted interpolates linearly between order statistics.
func percentileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
