package main

import (
	"fmt"
	"os"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/plot"
	"rebalance-backtest/internal/report"
	"rebalance-backtest/internal/strategy"
)

func cmdCosts(e *runEnv) error {
	strat, f, err := e.strategyFrame()
	if err != nil {
		return err
	}
	grid := e.cfg.Analysis.CostGrid
	if len(grid) == 0 {
		grid = analysis.DefaultCostGrid
	}
	points, err := analysis.CostGrid(f, strat, grid)
	if err != nil {
		return err
	}
	fmt.Printf("%s: transaction cost sensitivity\n", strat.Name())
	report.Costs(os.Stdout, points)
	return nil
}

func cmdVIX(e *runEnv) error {
	levels, err := e.regime()
	if err != nil {
		return err
	}
	f := e.frame.JoinRegime(levels)
	engine := backtest.New()

	strats := []strategy.Strategy{strategy.NewBlend(e.cfg.Params.Alpha)}
	for _, th := range e.cfg.Analysis.VIXThresholds {
		strats = append(strats, strategy.NewVIXFilter(th, e.cfg.Analysis.VIXScale))
	}
	runs := make([]analysis.Named, 0, len(strats))
	for _, s := range strats {
		res, err := engine.Run(f, s, e.options())
		if err != nil {
			e.log.Warn().Err(err).Str("strategy", s.Name()).Msg("variant failed")
		}
		runs = append(runs, analysis.Named{Name: s.Name(), Result: res})
	}
	report.Compare(os.Stdout, runs)
	for _, r := range runs[1:] {
		if r.Result != nil {
			if err := e.writeLedger("ledger_"+sanitize(r.Name)+".csv", r.Result); err != nil {
				return err
			}
		}
	}
	e.chart("cumulative_vix.png", func(path string) error {
		return plot.Cumulative(path, "Volatility filter", runs)
	})
	return nil
}

func cmdMA(e *runEnv) error {
	engine := backtest.New()
	ma := e.cfg.Analysis.MA
	strats := []strategy.Strategy{
		strategy.NewBlend(e.cfg.Params.Alpha),
		strategy.NewMAFilter(ma.Window, ma.Buffer),
	}
	var runs []analysis.Named
	for _, s := range strats {
		res, err := engine.Run(e.frame, s, e.options())
		if err != nil {
			return fmt.Errorf("%s: %w", s.Name(), err)
		}
		runs = append(runs, analysis.Named{Name: s.Name(), Result: res})
	}
	report.Compare(os.Stdout, runs)
	fmt.Printf("hedged share of %s: %s\n", runs[1].Name, percent(runs[1].Result.HedgedShare()))
	if err := e.writeLedger("ledger_"+sanitize(runs[1].Name)+".csv", runs[1].Result); err != nil {
		return err
	}
	e.chart("cumulative_ma.png", func(path string) error {
		return plot.Cumulative(path, "Moving-average filter", runs)
	})
	return nil
}

func cmdWalkForward(e *runEnv) error {
	strat, f, err := e.strategyFrame()
	if err != nil {
		return err
	}
	c := e.cfg.Analysis.WalkForward
	wf := analysis.WalkForward{
		InSampleYears:    c.InSampleYears,
		OutOfSampleYears: c.OutOfSampleYears,
		StepYears:        c.StepYears,
	}
	res, err := wf.Run(f, strat, e.options())
	if err != nil {
		return err
	}
	report.WalkForward(os.Stdout, res)
	if err := e.writeLedger("ledger_walkforward.csv", res.Stitched); err != nil {
		return err
	}
	e.chart("cumulative_walkforward.png", func(path string) error {
		return plot.Cumulative(path, "Walk-forward out-of-sample", []analysis.Named{{Name: strat.Name(), Result: res.Stitched}})
	})
	return nil
}

func cmdMonteCarlo(e *runEnv) error {
	strat, f, err := e.strategyFrame()
	if err != nil {
		return err
	}
	res, err := backtest.New().Run(f, strat, e.options())
	if err != nil {
		return err
	}
	c := e.cfg.Analysis.MonteCarlo
	mc := analysis.MonteCarlo{Simulations: c.Simulations, Horizons: c.Horizons, Seed: c.Seed}
	cmp, err := mc.Compare(e.ctx, res.StrategyReturns(), res.BenchmarkReturns())
	if err != nil {
		return err
	}
	report.MonteCarlo(os.Stdout, cmp, mc.Simulations)
	return nil
}

func cmdSensitivity(e *runEnv) error {
	res, err := analysis.DefaultSensitivity().Run(e.ctx, e.series, e.cfg.SignalParams(), e.options())
	if err != nil {
		return err
	}
	report.Sensitivity(os.Stdout, res)
	return nil
}

func cmdPeriods(e *runEnv) error {
	levels, err := e.optionalRegime()
	if err != nil {
		return err
	}
	periods := make([]analysis.Period, 0, len(e.cfg.Analysis.Periods))
	for _, p := range e.cfg.Analysis.Periods {
		start, end, err := p.Bounds()
		if err != nil {
			return fmt.Errorf("period %q: %w", p.Name, err)
		}
		periods = append(periods, analysis.Period{Name: p.Name, Start: start, End: end})
	}
	results, err := analysis.SubPeriods(e.ctx, e.series, levels, e.cfg.SignalParams(), periods, e.vixFilter(), e.options())
	if err != nil {
		return err
	}
	report.Periods(os.Stdout, results)
	return nil
}

func cmdCrisis(e *runEnv) error {
	levels, err := e.regime()
	if err != nil {
		return err
	}
	split, err := analysis.Crisis(
		e.frame.JoinRegime(levels),
		strategy.NewCalendarOnly(),
		e.cfg.Analysis.CrisisThreshold,
		e.cfg.Analysis.VIXScale,
		e.options(),
	)
	if err != nil {
		return err
	}
	report.Crisis(os.Stdout, split)
	return nil
}

func cmdTurnover(e *runEnv) error {
	levels, err := e.optionalRegime()
	if err != nil {
		return err
	}
	t, err := analysis.Turnover(e.frame, levels, e.cfg.Params.Alpha, e.vixFilter(), e.cfg.Analysis.RollingWindow)
	if err != nil {
		return err
	}
	report.Turnover(os.Stdout, t)
	e.chart("turnover.png", func(path string) error {
		return plot.Turnover(path, t)
	})
	return nil
}

func cmdRolling(e *runEnv) error {
	strat, f, err := e.strategyFrame()
	if err != nil {
		return err
	}
	res, err := backtest.New().Run(f, strat, e.options())
	if err != nil {
		return err
	}
	rr, err := analysis.RollingAlphaBeta(res, e.cfg.Analysis.RollingWindow)
	if err != nil {
		return err
	}
	report.Rolling(os.Stdout, rr)
	e.chart("rolling_alpha_beta.png", func(path string) error {
		return plot.RollingAlphaBeta(path, rr)
	})
	return nil
}

func cmdBreaches(e *runEnv) error {
	levels, err := e.regime()
	if err != nil {
		return err
	}
	scale := e.cfg.Analysis.VIXScale
	th := e.cfg.Analysis.VIXThreshold
	fmt.Printf("volatility index above %g\n", th)
	report.Breaches(os.Stdout, analysis.Breaches(levels, th*scale), scale)
	return nil
}

func percent(x float64) string {
	return fmt.Sprintf("%.1f%%", x*100)
}
