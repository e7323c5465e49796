package analysis

import (
	"errors"
	"fmt"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/strategy"
)

// CrisisSplit compares a strategy inside and outside high-regime days.
type CrisisSplit struct {
	Threshold float64
	Scale     float64

	CrisisDays int
	CalmDays   int

	// Either result is nil when its subset has too few evaluable rows.
	Crisis *backtest.Result
	Calm   *backtest.Result
}

// Crisis splits a regime-joined frame into days with regime above
// threshold*scale and the rest, then runs strat on each subset. Subsets are
// not contiguous: consecutive rows of a subset may be far apart in time.
func Crisis(f *model.Frame, strat strategy.Strategy, threshold, scale float64, opts backtest.Options) (*CrisisSplit, error) {
	if !f.HasRegime() {
		return nil, fmt.Errorf("crisis split needs regime data: %w", model.ErrMissingInput)
	}
	if scale == 0 {
		scale = 1
	}
	level := threshold * scale
	crisis := f.Select(func(i int) bool { return f.Regime[i] > level })
	calm := f.Select(func(i int) bool { return !(f.Regime[i] > level) })

	out := &CrisisSplit{
		Threshold:  threshold,
		Scale:      scale,
		CrisisDays: crisis.Len(),
		CalmDays:   calm.Len(),
	}
	engine := backtest.New()
	var err error
	if out.Crisis, err = runSubset(engine, crisis, strat, opts); err != nil {
		return nil, fmt.Errorf("crisis subset: %w", err)
	}
	if out.Calm, err = runSubset(engine, calm, strat, opts); err != nil {
		return nil, fmt.Errorf("calm subset: %w", err)
	}
	return out, nil
}

func runSubset(engine *backtest.Engine, f *model.Frame, strat strategy.Strategy, opts backtest.Options) (*backtest.Result, error) {
	res, err := engine.Run(f, strat, opts)
	if errors.Is(err, model.ErrInsufficientSample) {
		return nil, nil
	}
	return res, err
}
