package analysis

import (
	"fmt"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/strategy"
)

var DefaultCostGrid = []float64{0, 1, 2, 5, 10}

type CostPoint struct {
	CostBps float64
	Result  *backtest.Result
}

// CostGrid reruns strat once per cost level. Positions do not depend on cost,
// so only the charged returns differ between points.
func CostGrid(f *model.Frame, strat strategy.Strategy, grid []float64) ([]CostPoint, error) {
	engine := backtest.New()
	out := make([]CostPoint, 0, len(grid))
	for _, bps := range grid {
		if bps < 0 {
			return nil, fmt.Errorf("negative cost %g bps", bps)
		}
		res, err := engine.Run(f, strat, backtest.Options{CostBps: bps})
		if err != nil {
			return nil, fmt.Errorf("cost %g bps: %w", bps, err)
		}
		out = append(out, CostPoint{CostBps: bps, Result: res})
	}
	return out, nil
}
