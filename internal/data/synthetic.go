package data

import (
	"math"
	"math/rand/v2"
	"time"

	"rebalance-backtest/internal/model"
)

// SyntheticOptions shapes a generated two-asset price history.
type SyntheticOptions struct {
	Start time.Time
	// Days is the number of returns; one extra price row is generated.
	Days int
	// Seed drives the random walk; unused when Alternating.
	Seed uint64

	// Alternating produces A returns of +Step, -Step, ... and flat B.
	Alternating bool
	Step        float64

	// Random walk parameters, daily.
	DriftA, VolA float64
	DriftB, VolB float64
	// Corr is the correlation between A and B shocks.
	Corr float64
}

func DefaultSyntheticOptions() SyntheticOptions {
	return SyntheticOptions{
		Start:  time.Date(2000, 1, 3, 0, 0, 0, 0, time.UTC),
		Days:   252 * 12,
		Seed:   42,
		DriftA: 0.0003,
		VolA:   0.012,
		DriftB: 0.0001,
		VolB:   0.008,
		Corr:   -0.3,
	}
}

// TradingDates returns n weekdays starting on or after start.
func TradingDates(start time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for d := start; len(out) < n; d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Synthetic generates a deterministic price history.
func Synthetic(opts SyntheticOptions) (*model.ReturnSeries, error) {
	if opts.Start.IsZero() {
		opts.Start = DefaultSyntheticOptions().Start
	}
	dates := TradingDates(opts.Start, opts.Days+1)
	pa := make([]float64, len(dates))
	pb := make([]float64, len(dates))
	pa[0], pb[0] = 100, 100

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	rho := math.Sqrt(1 - opts.Corr*opts.Corr)
	for i := 1; i < len(dates); i++ {
		var ra, rb float64
		if opts.Alternating {
			ra = opts.Step
			if i%2 == 0 {
				ra = -opts.Step
			}
		} else {
			z1, z2 := rng.NormFloat64(), rng.NormFloat64()
			ra = opts.DriftA + opts.VolA*z1
			rb = opts.DriftB + opts.VolB*(opts.Corr*z1+rho*z2)
		}
		pa[i] = pa[i-1] * (1 + ra)
		pb[i] = pb[i-1] * (1 + rb)
	}
	return model.NewReturnSeries(dates, pa, pb)
}

// SyntheticLevels generates a mean-reverting volatility index aligned with
// dates, in the same scaled units as the regime files (index * scale).
func SyntheticLevels(dates []time.Time, seed uint64, scale float64) *model.LevelSeries {
	rng := rand.New(rand.NewPCG(seed+1, seed^0xbf58476d1ce4e5b9))
	vals := make([]float64, len(dates))
	level := 18.0
	for i := range vals {
		level += 0.05*(18-level) + 1.2*rng.NormFloat64()
		if level < 9 {
			level = 9
		}
		vals[i] = level * scale
	}
	ls, _ := model.NewLevelSeries(DefaultLevel, dates, vals)
	return ls
}
