package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/config"
	"rebalance-backtest/internal/data"
	"rebalance-backtest/internal/logger"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/plot"
	"rebalance-backtest/internal/report"
	"rebalance-backtest/internal/strategy"

	"github.com/rs/zerolog"
)

type command struct {
	name  string
	about string
	run   func(*runEnv) error
}

var commands = []command{
	{"backtest", "run the configured strategy and write its ledger", cmdBacktest},
	{"costs", "evaluate the strategy across the transaction cost grid", cmdCosts},
	{"vix", "compare volatility-filtered variants against the original", cmdVIX},
	{"ma", "compare the moving-average filter against the original", cmdMA},
	{"walkforward", "stitched out-of-sample walk-forward test", cmdWalkForward},
	{"montecarlo", "bootstrap CAGR distributions per horizon", cmdMonteCarlo},
	{"sensitivity", "sweep alpha, normalization and target weight", cmdSensitivity},
	{"periods", "evaluate named stress windows", cmdPeriods},
	{"crisis", "split retail performance by volatility regime", cmdCrisis},
	{"turnover", "annual and rolling turnover per strategy", cmdTurnover},
	{"rolling", "rolling alpha and beta versus the benchmark", cmdRolling},
	{"breaches", "list runs of the volatility index above the threshold", cmdBreaches},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	for _, c := range commands {
		if c.name == os.Args[1] {
			os.Exit(execute(c, os.Args[2:]))
		}
	}
	usage()
	os.Exit(2)
}

func usage() {
	fmt.Println("usage:")
	fmt.Println("  cli <command> [--config config.yaml] [--out results]")
	fmt.Println("")
	fmt.Println("commands:")
	for _, c := range commands {
		fmt.Printf("  %-12s %s\n", c.name, c.about)
	}
	fmt.Println("")
	fmt.Println("notes:")
	fmt.Println("  - without --config the built-in defaults are used (data/Return.csv, data/vix.csv)")
	fmt.Println("  - DATA_DIR relocates relative data files; LOG_LEVEL and LOG_FORMAT tune logging")
	fmt.Println("  - commands that need the volatility index skip with a warning when it is missing")
}

// runEnv carries what every subcommand needs: the configuration, the loaded
// series and the signal frame built from it.
type runEnv struct {
	ctx    context.Context
	cfg    *config.Config
	log    zerolog.Logger
	series *model.ReturnSeries
	frame  *model.Frame

	levels      *model.LevelSeries
	levelsErr   error
	levelsTried bool
}

func execute(c command, args []string) int {
	fs := flag.NewFlagSet(c.name, flag.ExitOnError)
	cfgPath := fs.String("config", "", "Path to YAML config (defaults when empty)")
	outDir := fs.String("out", "", "Output directory (overrides output.dir)")
	_ = fs.Parse(args)

	log, err := logger.New(logger.FromEnv(logger.DefaultConfig()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	log = log.With().Str("command", c.name).Logger()

	cfg := config.Default()
	if *cfgPath != "" {
		if cfg, err = config.Load(*cfgPath); err != nil {
			log.Error().Err(err).Msg("failed to load config")
			return 1
		}
	}
	cfg.ApplyEnv()
	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	env := &runEnv{ctx: context.Background(), cfg: cfg, log: log}
	if err := env.load(); err != nil {
		log.Error().Err(err).Msg("failed to prepare data")
		return 1
	}
	if err := c.run(env); err != nil {
		if errors.Is(err, errSkipped) {
			return 0
		}
		log.Error().Err(err).Msg("command failed")
		return 1
	}
	return 0
}

func (e *runEnv) load() error {
	opts, err := e.cfg.LoadOptions()
	if err != nil {
		return err
	}
	e.series, err = data.LoadReturnsCSV(e.cfg.Data.ReturnsFile, opts)
	if err != nil {
		return err
	}
	if e.series.Len() < 2 {
		return fmt.Errorf("%s: %w", e.cfg.Data.ReturnsFile, model.ErrInsufficientSample)
	}
	e.frame, _, err = analysis.BuildFrame(e.ctx, e.series, e.cfg.SignalParams())
	if err != nil {
		return err
	}
	from, to := e.series.Observations[0].Date, e.series.Observations[e.series.Len()-1].Date
	e.log.Info().
		Str("file", e.cfg.Data.ReturnsFile).
		Int("rows", e.frame.Len()).
		Str("from", from.Format(model.DateLayout)).
		Str("to", to.Format(model.DateLayout)).
		Msg("signals ready")
	return nil
}

// errSkipped marks a command that could not run for lack of optional input.
var errSkipped = errors.New("skipped")

// regime loads the volatility index once. A missing file is reported as a
// skip so that the caller can carry on with other work.
func (e *runEnv) regime() (*model.LevelSeries, error) {
	if !e.levelsTried {
		e.levelsTried = true
		if e.cfg.Data.RegimeFile == "" {
			e.levelsErr = fmt.Errorf("no regime file configured: %w", os.ErrNotExist)
		} else {
			e.levels, e.levelsErr = data.LoadLevelsCSV(e.cfg.Data.RegimeFile, e.cfg.Data.RegimeColumn)
		}
	}
	if e.levelsErr != nil {
		if errors.Is(e.levelsErr, os.ErrNotExist) {
			e.log.Warn().Str("file", e.cfg.Data.RegimeFile).Msg("regime file not found, skipping")
			return nil, errSkipped
		}
		return nil, e.levelsErr
	}
	return e.levels, nil
}

// optionalRegime is regime for commands that still run without it.
func (e *runEnv) optionalRegime() (*model.LevelSeries, error) {
	levels, err := e.regime()
	if errors.Is(err, errSkipped) {
		return nil, nil
	}
	return levels, err
}

func (e *runEnv) options() backtest.Options {
	return backtest.Options{CostBps: e.cfg.Backtest.CostBps}
}

// strategyFrame resolves the configured strategy and the frame it runs on.
func (e *runEnv) strategyFrame() (strategy.Strategy, *model.Frame, error) {
	strat, err := e.cfg.BuildStrategy()
	if err != nil {
		return nil, nil, err
	}
	if !strategy.NeedsRegime(e.cfg.Strategy.Name) {
		return strat, e.frame, nil
	}
	levels, err := e.regime()
	if err != nil {
		return nil, nil, err
	}
	return strat, e.frame.JoinRegime(levels), nil
}

func (e *runEnv) vixFilter() *strategy.VIXFilter {
	return strategy.NewVIXFilter(e.cfg.Analysis.VIXThreshold, e.cfg.Analysis.VIXScale)
}

func (e *runEnv) path(name string) (string, error) {
	if err := os.MkdirAll(e.cfg.Output.Dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(e.cfg.Output.Dir, name), nil
}

func (e *runEnv) writeLedger(name string, res *backtest.Result) error {
	if e.cfg.Output.NoLedger {
		return nil
	}
	path, err := e.path(name)
	if err != nil {
		return err
	}
	if err := backtest.WriteLedgerCSV(path, res.Ledger); err != nil {
		return err
	}
	e.log.Info().Str("path", path).Int("rows", len(res.Ledger)).Msg("wrote ledger")
	return nil
}

// chart renders one plot unless plots are disabled. Plot failures are
// logged and never fail the command.
func (e *runEnv) chart(name string, draw func(path string) error) {
	if e.cfg.Output.NoPlots {
		return
	}
	path, err := e.path(name)
	if err == nil {
		err = draw(path)
	}
	if err != nil {
		e.log.Warn().Err(err).Str("plot", name).Msg("failed to write plot")
		return
	}
	e.log.Info().Str("path", path).Msg("wrote plot")
}

func cmdBacktest(e *runEnv) error {
	strat, f, err := e.strategyFrame()
	if err != nil {
		return err
	}
	res, err := backtest.New().Run(f, strat, e.options())
	if err != nil {
		return err
	}
	report.Summary(os.Stdout, res)
	if err := e.writeLedger("ledger_"+sanitize(res.Strategy)+".csv", res); err != nil {
		return err
	}
	e.chart("cumulative.png", func(path string) error {
		return plot.Cumulative(path, "Cumulative returns", []analysis.Named{{Name: res.Strategy, Result: res}})
	})
	return nil
}

func sanitize(name string) string {
	out := []rune(name)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
