package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/config"
	"rebalance-backtest/internal/data"
	"rebalance-backtest/internal/logger"
	"rebalance-backtest/internal/plot"
	"rebalance-backtest/internal/report"
	"rebalance-backtest/internal/strategy"
)

// Demo:
// - Generate synthetic prices and a volatility index (no files needed)
// - Build the threshold and calendar signals
// - Run every strategy variant, then walk-forward and Monte Carlo
func main() {
	years := flag.Int("years", 12, "Years of synthetic trading days")
	seed := flag.Uint64("seed", 42, "Random seed for the synthetic data")
	sims := flag.Int("sims", 200, "Monte Carlo simulations")
	out := flag.String("out", "", "Optional directory for the cumulative-returns chart")
	flag.Parse()

	log, err := logger.New(logger.FromEnv(logger.DefaultConfig()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx := context.Background()
	cfg := config.Default()

	opts := data.DefaultSyntheticOptions()
	opts.Days = *years * backtest.TradingDays
	opts.Seed = *seed
	series, err := data.Synthetic(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("synthetic data")
	}
	levels := data.SyntheticLevels(series.Dates(), *seed, cfg.Analysis.VIXScale)

	f, _, err := analysis.BuildFrame(ctx, series, cfg.SignalParams())
	if err != nil {
		log.Fatal().Err(err).Msg("signals")
	}
	joined := f.JoinRegime(levels)
	log.Info().Int("rows", f.Len()).Msg("signals ready")

	engine := backtest.New()
	opt := backtest.Options{CostBps: 1}
	strats := []strategy.Strategy{
		strategy.NewBlend(cfg.Params.Alpha),
		strategy.NewCalendarOnly(),
		strategy.NewThresholdOnly(),
		strategy.NewVIXFilter(cfg.Analysis.VIXThreshold, cfg.Analysis.VIXScale),
		strategy.NewMAFilter(cfg.Analysis.MA.Window, cfg.Analysis.MA.Buffer),
	}
	var runs []analysis.Named
	for _, s := range strats {
		res, err := engine.Run(joined, s, opt)
		if err != nil {
			log.Error().Err(err).Str("strategy", s.Name()).Msg("run failed")
			continue
		}
		runs = append(runs, analysis.Named{Name: s.Name(), Result: res})
	}
	if len(runs) == 0 {
		log.Fatal().Msg("no strategy produced a result")
	}

	fmt.Println("== strategies (ranked by Sharpe)")
	report.Compare(os.Stdout, analysis.RankBySharpe(runs))

	original := runs[0].Result
	fmt.Println()
	fmt.Println("== walk-forward")
	wf, err := analysis.DefaultWalkForward().Run(f, strats[0], opt)
	if err != nil {
		log.Warn().Err(err).Msg("walk-forward skipped")
	} else {
		report.WalkForward(os.Stdout, wf)
	}

	fmt.Println()
	mc := analysis.DefaultMonteCarlo()
	mc.Simulations = *sims
	mc.Horizons = []int{1, 5, 10}
	cmp, err := mc.Compare(ctx, original.StrategyReturns(), original.BenchmarkReturns())
	if err != nil {
		log.Warn().Err(err).Msg("monte carlo skipped")
	} else {
		report.MonteCarlo(os.Stdout, cmp, mc.Simulations)
	}

	fmt.Println()
	fmt.Println("== volatility regime")
	split, err := analysis.Crisis(joined, strats[1], cfg.Analysis.CrisisThreshold, cfg.Analysis.VIXScale, opt)
	if err != nil {
		log.Warn().Err(err).Msg("crisis split skipped")
	} else {
		report.Crisis(os.Stdout, split)
	}

	if *out != "" {
		if err := os.MkdirAll(*out, 0o755); err != nil {
			log.Fatal().Err(err).Msg("output directory")
		}
		path := filepath.Join(*out, "demo_cumulative.png")
		if err := plot.Cumulative(path, "Synthetic demo", runs); err != nil {
			log.Fatal().Err(err).Msg("plot")
		}
		log.Info().Str("path", path).Msg("wrote plot")
	}
}
