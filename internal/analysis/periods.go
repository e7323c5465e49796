package analysis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/signal"
	"rebalance-backtest/internal/strategy"
)

// Period is a named, inclusive date window.
type Period struct {
	Name  string
	Start time.Time
	End   time.Time
}

type PeriodResult struct {
	Period Period
	// NoData is set when the window holds too few rows to evaluate.
	NoData bool
	Runs   []Named
}

// BuildFrame generates signals over series and aligns them into a frame.
func BuildFrame(ctx context.Context, series *model.ReturnSeries, p signal.Params) (*model.Frame, *signal.Set, error) {
	set, err := signal.Generate(ctx, series, p)
	if err != nil {
		return nil, nil, err
	}
	f, err := backtest.NewFrame(series, set)
	if err != nil {
		return nil, nil, err
	}
	return f, set, nil
}

type periodRun struct {
	strat strategy.Strategy
	frame *model.Frame
}

// SubPeriods evaluates each window with signals recomputed from the window's
// own data. The original and retail strategies always run; vix runs only
// when levels is non-nil.
func SubPeriods(ctx context.Context, series *model.ReturnSeries, levels *model.LevelSeries, p signal.Params, periods []Period, vix *strategy.VIXFilter, opts backtest.Options) ([]PeriodResult, error) {
	engine := backtest.New()
	out := make([]PeriodResult, 0, len(periods))

	for _, per := range periods {
		pr := PeriodResult{Period: per}
		sub := series.Between(per.Start, per.End)
		if sub.Len() < 2 {
			pr.NoData = true
			out = append(out, pr)
			continue
		}
		f, _, err := BuildFrame(ctx, sub, p)
		if err != nil {
			return nil, fmt.Errorf("period %s: %w", per.Name, err)
		}

		runs := []periodRun{
			{strategy.NewBlend(p.Alpha), f},
			{strategy.NewCalendarOnly(), f},
		}
		if levels != nil && vix != nil {
			runs = append(runs, periodRun{vix, f.JoinRegime(levels)})
		}

		for _, r := range runs {
			res, err := engine.Run(r.frame, r.strat, opts)
			if errors.Is(err, model.ErrInsufficientSample) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("period %s, %s: %w", per.Name, r.strat.Name(), err)
			}
			pr.Runs = append(pr.Runs, Named{Name: r.strat.Name(), Result: res})
		}
		pr.NoData = len(pr.Runs) == 0
		out = append(out, pr)
	}
	return out, nil
}
