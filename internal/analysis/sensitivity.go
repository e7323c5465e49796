package analysis

import (
	"context"
	"fmt"
	"math"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/signal"
	"rebalance-backtest/internal/strategy"
)

// Sensitivity sweeps one signal parameter at a time around a base setting.
type Sensitivity struct {
	Alphas         []float64
	Normalizations []float64
	TargetWeights  []float64
}

func DefaultSensitivity() Sensitivity {
	return Sensitivity{
		Alphas:         Grid(0.4, 0.8, 0.1),
		Normalizations: Grid(0.008, 0.016, 0.002),
		TargetWeights:  Grid(0.5, 0.7, 0.05),
	}
}

type SensitivityPoint struct {
	Value  float64
	Result *backtest.Result
}

type SensitivityResult struct {
	Alpha         []SensitivityPoint
	Normalization []SensitivityPoint
	TargetWeight  []SensitivityPoint
	// Components holds the threshold-only and calendar-only runs.
	Components []Named
}

// Grid returns lo, lo+step, ... up to hi inclusive, rounded to 1e-9.
func Grid(lo, hi, step float64) []float64 {
	if step <= 0 || hi < lo {
		return nil
	}
	n := int(math.Floor((hi-lo)/step + 1e-9))
	out := make([]float64, 0, n+1)
	for k := 0; k <= n; k++ {
		out = append(out, math.Round((lo+float64(k)*step)*1e9)/1e9)
	}
	return out
}

// Run evaluates the original blend for every swept value. Alpha and
// normalization reuse the base simulations; target weights regenerate them.
func (s Sensitivity) Run(ctx context.Context, series *model.ReturnSeries, base signal.Params, opts backtest.Options) (*SensitivityResult, error) {
	set, err := signal.Generate(ctx, series, base)
	if err != nil {
		return nil, err
	}
	engine := backtest.New()
	out := &SensitivityResult{}

	run := func(set *signal.Set, strat strategy.Strategy) (*backtest.Result, error) {
		f, err := backtest.NewFrame(series, set)
		if err != nil {
			return nil, err
		}
		return engine.Run(f, strat, opts)
	}

	for _, a := range s.Alphas {
		res, err := run(set.Reblend(a), strategy.NewBlend(a))
		if err != nil {
			return nil, fmt.Errorf("alpha %.2f: %w", a, err)
		}
		out.Alpha = append(out.Alpha, SensitivityPoint{Value: a, Result: res})
	}

	for _, k := range s.Normalizations {
		if k <= 0 {
			return nil, fmt.Errorf("normalization must be positive, got %g", k)
		}
		res, err := run(set.Renormalize(k), strategy.NewBlend(base.Alpha))
		if err != nil {
			return nil, fmt.Errorf("normalization %.4f: %w", k, err)
		}
		out.Normalization = append(out.Normalization, SensitivityPoint{Value: k, Result: res})
	}

	for _, w := range s.TargetWeights {
		p := base
		p.TargetWeight = w
		ws, err := signal.Generate(ctx, series, p)
		if err != nil {
			return nil, fmt.Errorf("target weight %.2f: %w", w, err)
		}
		res, err := run(ws, strategy.NewBlend(base.Alpha))
		if err != nil {
			return nil, fmt.Errorf("target weight %.2f: %w", w, err)
		}
		out.TargetWeight = append(out.TargetWeight, SensitivityPoint{Value: w, Result: res})
	}

	for _, strat := range []strategy.Strategy{strategy.NewThresholdOnly(), strategy.NewCalendarOnly()} {
		res, err := run(set, strat)
		if err != nil {
			return nil, fmt.Errorf("component %s: %w", strat.Name(), err)
		}
		out.Components = append(out.Components, Named{Name: strat.Name(), Result: res})
	}
	return out, nil
}
