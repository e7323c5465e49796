package backtest

import (
	"fmt"
	"math"

	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/strategy"
)

type Options struct {
	// CostBps is charged on every unit of weight change.
	CostBps float64
}

type Engine struct{}

func New() *Engine { return &Engine{} }

// Run evaluates a strategy over a frame. The weight decided on day i-1 earns
// day i's return, so no decision sees the return it is paid on. The first
// row and any row whose weight on day i or i-1 is undefined are dropped.
func (e *Engine) Run(f *model.Frame, strat strategy.Strategy, opts Options) (*Result, error) {
	if strat == nil {
		return nil, fmt.Errorf("strategy is nil")
	}
	if f.Len() == 0 {
		return nil, fmt.Errorf("empty frame: %w", model.ErrInsufficientSample)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if r, ok := strat.(strategy.Resetter); ok {
		r.Reset(f)
	}

	positions := make([]strategy.Position, f.Len())
	for i := range positions {
		positions[i] = strat.Decide(strategy.Context{Index: i, Frame: f})
	}

	cost := opts.CostBps / 1e4
	ledger := make([]LedgerRow, 0, f.Len())
	cumS, cumB := 1.0, 1.0

	for i := 1; i < f.Len(); i++ {
		prev, cur := positions[i-1], positions[i]
		if !model.IsDefined(prev.Weight) || !model.IsDefined(cur.Weight) {
			continue
		}

		exposure := f.ReturnA[i]
		if prev.Hedged {
			exposure = f.SpreadReturn(i)
		}
		turnover := math.Abs(cur.Weight - prev.Weight)
		c := turnover * cost
		ret := prev.Weight*exposure - c

		cumS *= 1 + ret
		cumB *= 1 + f.ReturnA[i]

		regime := model.Undefined()
		if f.HasRegime() {
			regime = f.Regime[i]
		}

		ledger = append(ledger, LedgerRow{
			Index: i,
			Date:  f.Dates[i],

			ReturnA: f.ReturnA[i],
			ReturnB: f.ReturnB[i],
			Regime:  regime,

			PrevWeight: prev.Weight,
			PrevHedged: prev.Hedged,
			Weight:     cur.Weight,
			Hedged:     cur.Hedged,
			Direction:  direction(cur),

			Exposure: exposure,
			Turnover: turnover,
			Cost:     c,

			StrategyReturn:  ret,
			BenchmarkReturn: f.ReturnA[i],

			CumStrategy:  cumS,
			CumBenchmark: cumB,
		})
	}

	if len(ledger) == 0 {
		return nil, fmt.Errorf("strategy %s: no evaluable days: %w", strat.Name(), model.ErrInsufficientSample)
	}

	res := &Result{
		Strategy: strat.Name(),
		CostBps:  opts.CostBps,
		Ledger:   ledger,
	}
	if err := res.summarize(); err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Result) summarize() error {
	var err error
	r.Stats, err = ComputeStats(r.StrategyReturns(), r.Turnovers())
	if err != nil {
		return fmt.Errorf("strategy stats: %w", err)
	}
	r.Benchmark, err = ComputeStats(r.BenchmarkReturns(), nil)
	if err != nil {
		return fmt.Errorf("benchmark stats: %w", err)
	}
	return nil
}

// direction labels an unhedged day as LONG since it holds the risk asset.
func direction(p strategy.Position) model.Direction {
	if !p.Hedged {
		return model.DirectionLong
	}
	return model.DirectionFromWeight(p.Weight)
}
