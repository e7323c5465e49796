package backtest

import (
	"time"

	"rebalance-backtest/internal/model"
)

// LedgerRow is one evaluated trading day.
// This is the primary artifact for "what happened" in a backtest.
type LedgerRow struct {
	Index int
	Date  time.Time

	ReturnA float64
	ReturnB float64
	// Regime is the joined regime level, undefined when none was joined.
	Regime float64

	// PrevWeight and PrevHedged are yesterday's decision, which earns today's return.
	PrevWeight float64
	PrevHedged bool
	Weight     float64
	Hedged     bool
	Direction  model.Direction

	// Exposure is the return the previous weight was applied to:
	// the spread when hedged, otherwise the risk asset.
	Exposure float64
	Turnover float64
	Cost     float64

	StrategyReturn  float64
	BenchmarkReturn float64

	CumStrategy  float64
	CumBenchmark float64
}

type Result struct {
	Strategy string
	CostBps  float64

	Ledger []LedgerRow

	Stats     Stats
	Benchmark Stats
}

func (r *Result) StrategyReturns() []float64 {
	out := make([]float64, len(r.Ledger))
	for i, row := range r.Ledger {
		out[i] = row.StrategyReturn
	}
	return out
}

func (r *Result) BenchmarkReturns() []float64 {
	out := make([]float64, len(r.Ledger))
	for i, row := range r.Ledger {
		out[i] = row.BenchmarkReturn
	}
	return out
}

func (r *Result) Weights() []float64 {
	out := make([]float64, len(r.Ledger))
	for i, row := range r.Ledger {
		out[i] = row.Weight
	}
	return out
}

func (r *Result) Turnovers() []float64 {
	out := make([]float64, len(r.Ledger))
	for i, row := range r.Ledger {
		out[i] = row.Turnover
	}
	return out
}

func (r *Result) Dates() []time.Time {
	out := make([]time.Time, len(r.Ledger))
	for i, row := range r.Ledger {
		out[i] = row.Date
	}
	return out
}

// Window returns the first and last evaluated dates.
func (r *Result) Window() (time.Time, time.Time) {
	if len(r.Ledger) == 0 {
		return time.Time{}, time.Time{}
	}
	return r.Ledger[0].Date, r.Ledger[len(r.Ledger)-1].Date
}

// HedgedShare is the fraction of evaluated days that carried the spread position.
func (r *Result) HedgedShare() float64 {
	if len(r.Ledger) == 0 {
		return 0
	}
	n := 0
	for _, row := range r.Ledger {
		if row.Hedged {
			n++
		}
	}
	return float64(n) / float64(len(r.Ledger))
}
