package backtest

import (
	"fmt"

	"rebalance-backtest/internal/model"
)

// Stitch concatenates the ledgers of consecutive runs, in order, and
// recomputes the cumulative curves and statistics over the joined ledger.
func Stitch(results ...*Result) (*Result, error) {
	out := &Result{}
	for _, r := range results {
		if r == nil {
			continue
		}
		if out.Strategy == "" {
			out.Strategy = r.Strategy
			out.CostBps = r.CostBps
		}
		if n := len(out.Ledger); n > 0 && len(r.Ledger) > 0 && !r.Ledger[0].Date.After(out.Ledger[n-1].Date) {
			return nil, fmt.Errorf("stitch: %s does not follow %s",
				r.Ledger[0].Date.Format(model.DateLayout), out.Ledger[n-1].Date.Format(model.DateLayout))
		}
		out.Ledger = append(out.Ledger, r.Ledger...)
	}
	if len(out.Ledger) == 0 {
		return nil, fmt.Errorf("stitch: %w", model.ErrInsufficientSample)
	}

	cumS, cumB := 1.0, 1.0
	for i := range out.Ledger {
		row := &out.Ledger[i]
		cumS *= 1 + row.StrategyReturn
		cumB *= 1 + row.BenchmarkReturn
		row.CumStrategy = cumS
		row.CumBenchmark = cumB
	}
	if err := out.summarize(); err != nil {
		return nil, err
	}
	return out, nil
}
