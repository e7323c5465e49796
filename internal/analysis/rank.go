package analysis

import (
	"sort"

	"rebalance-backtest/internal/backtest"
)

// Named pairs a label with a backtest run.
type Named struct {
	Name   string
	Result *backtest.Result
}

// RankBySharpe sorts runs by strategy Sharpe ratio, best first. Ties keep
// their input order.
func RankBySharpe(runs []Named) []Named {
	out := make([]Named, 0, len(runs))
	for _, r := range runs {
		if r.Result != nil {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Result.Stats.Sharpe > out[j].Result.Stats.Sharpe
	})
	return out
}
