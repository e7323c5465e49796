package analysis

import (
	"fmt"
	"time"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/strategy"
)

// TurnoverLine is the annual turnover of one strategy plus its daily
// turnover smoothed by a trailing mean, for charting.
type TurnoverLine struct {
	Name    string
	Annual  float64
	Dates   []time.Time
	Rolling []float64
}

type TurnoverBreakdown struct {
	Strategies []TurnoverLine
	// Unweighted turnover of each signal series taken on its own.
	ThresholdComponent float64
	CalendarComponent  float64
}

// Turnover compares the original blend, the calendar-only variant and,
// when levels is non-nil, the regime-filtered hedge.
func Turnover(f *model.Frame, levels *model.LevelSeries, alpha float64, vix *strategy.VIXFilter, window int) (*TurnoverBreakdown, error) {
	if window <= 0 {
		return nil, fmt.Errorf("rolling window must be positive, got %d", window)
	}
	engine := backtest.New()
	runs := []periodRun{
		{strategy.NewBlend(alpha), f},
		{strategy.NewCalendarOnly(), f},
	}
	if levels != nil && vix != nil {
		runs = append(runs, periodRun{vix, f.JoinRegime(levels)})
	}

	out := &TurnoverBreakdown{
		ThresholdComponent: backtest.AnnualizedTurnover(f.Threshold),
		CalendarComponent:  backtest.AnnualizedTurnover(f.Calendar),
	}
	for _, r := range runs {
		res, err := engine.Run(r.frame, r.strat, backtest.Options{})
		if err != nil {
			return nil, fmt.Errorf("turnover %s: %w", r.strat.Name(), err)
		}
		out.Strategies = append(out.Strategies, TurnoverLine{
			Name:    r.strat.Name(),
			Annual:  res.Stats.AnnualTurnover,
			Dates:   res.Dates(),
			Rolling: strategy.MovingAverage(res.Turnovers(), window),
		})
	}
	return out, nil
}
