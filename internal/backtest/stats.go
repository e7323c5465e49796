package backtest

import (
	"fmt"
	"math"

	"rebalance-backtest/internal/model"

	"github.com/montanaflynn/stats"
)

// TradingDays annualizes daily figures.
const TradingDays = 252

// Stats summarizes one return series.
type Stats struct {
	Days            int
	CAGR            float64
	Volatility      float64
	Sharpe          float64
	MaxDrawdown     float64
	AnnualTurnover  float64
	FinalCumulative float64
}

// ComputeStats summarizes daily returns. turnover holds |Δweight| per day and
// may be nil for a buy-and-hold series.
func ComputeStats(returns, turnover []float64) (Stats, error) {
	n := len(returns)
	if n == 0 {
		return Stats{}, fmt.Errorf("no returns: %w", model.ErrInsufficientSample)
	}
	curve := Cumulative(returns)
	s := Stats{
		Days:            n,
		FinalCumulative: curve[n-1],
	}
	s.CAGR = CAGR(s.FinalCumulative, n)
	s.Volatility = AnnualizedVolatility(returns)
	if s.Volatility > 0 {
		s.Sharpe = s.CAGR / s.Volatility
	}
	s.MaxDrawdown = MaxDrawdown(curve)
	if len(turnover) > 0 {
		m, err := stats.Mean(turnover)
		if err != nil {
			return Stats{}, fmt.Errorf("turnover mean: %w", err)
		}
		s.AnnualTurnover = m * TradingDays
	}
	return s, nil
}

// Cumulative compounds daily returns into a growth-of-one curve.
func Cumulative(returns []float64) []float64 {
	out := make([]float64, len(returns))
	c := 1.0
	for i, r := range returns {
		c *= 1 + r
		out[i] = c
	}
	return out
}

// CAGR annualizes a final cumulative value reached after n trading days.
// A wiped-out curve reports -1.
func CAGR(final float64, n int) float64 {
	if n == 0 {
		return 0
	}
	if final <= 0 {
		return -1
	}
	return math.Pow(final, float64(TradingDays)/float64(n)) - 1
}

// AnnualizedVolatility is the sample standard deviation times sqrt(252).
// Fewer than two returns, or all-equal returns, give 0.
func AnnualizedVolatility(returns []float64) float64 {
	if len(returns) < 2 || constant(returns) {
		return 0
	}
	sd, err := stats.StandardDeviationSample(returns)
	if err != nil || math.IsNaN(sd) {
		return 0
	}
	return sd * math.Sqrt(TradingDays)
}

// MaxDrawdown is the most negative (c - peak)/peak along the curve, where the
// peak starts at the first value. A non-decreasing curve gives exactly 0.
func MaxDrawdown(curve []float64) float64 {
	if len(curve) == 0 {
		return 0
	}
	peak := curve[0]
	worst := 0.0
	for _, c := range curve {
		if c > peak {
			peak = c
		}
		if dd := (c - peak) / peak; dd < worst {
			worst = dd
		}
	}
	return worst
}

// AnnualizedTurnover is mean(|w_i - w_{i-1}|) * 252 over pairs where both
// weights are defined. It is 0 when no such pair exists.
func AnnualizedTurnover(weights []float64) float64 {
	var diffs []float64
	for i := 1; i < len(weights); i++ {
		if !model.IsDefined(weights[i]) || !model.IsDefined(weights[i-1]) {
			continue
		}
		diffs = append(diffs, math.Abs(weights[i]-weights[i-1]))
	}
	m, err := stats.Mean(diffs)
	if err != nil {
		return 0
	}
	return m * TradingDays
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
