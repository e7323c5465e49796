package analysis

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"

	"golang.org/x/sync/errgroup"
)

// MonteCarlo bootstraps daily returns with replacement into synthetic paths
// of fixed length. Each trial draws from its own generator seeded by
// (Seed, horizon, trial, stream), so results do not depend on scheduling.
type MonteCarlo struct {
	Simulations int
	Horizons    []int
	Seed        uint64
}

func DefaultMonteCarlo() MonteCarlo {
	return MonteCarlo{Simulations: 1000, Horizons: []int{1, 3, 5, 10, 20}, Seed: 42}
}

// HorizonStats describes the CAGR distribution over one horizon.
type HorizonStats struct {
	Years      int
	ProbLoss   float64
	MeanCAGR   float64
	MedianCAGR float64
	P05CAGR    float64
	P95CAGR    float64

	CAGRs []float64 `json:"-"`
}

type Comparison struct {
	Strategy  []HorizonStats
	Benchmark []HorizonStats
	// ProbUnderperform[k] is the share of trials at Horizons[k] where the
	// strategy CAGR is below the benchmark CAGR of the same trial index.
	ProbUnderperform []float64
}

const (
	streamStrategy uint64 = iota + 1
	streamBenchmark
)

func (m MonteCarlo) Validate() error {
	if m.Simulations <= 0 {
		return fmt.Errorf("monte carlo: simulations must be positive, got %d", m.Simulations)
	}
	if len(m.Horizons) == 0 {
		return fmt.Errorf("monte carlo: no horizons")
	}
	for _, h := range m.Horizons {
		if h <= 0 {
			return fmt.Errorf("monte carlo: horizon must be positive, got %d", h)
		}
	}
	return nil
}

// Simulate returns one HorizonStats per configured horizon.
func (m MonteCarlo) Simulate(ctx context.Context, returns []float64) ([]HorizonStats, error) {
	return m.simulate(ctx, returns, streamStrategy)
}

// Compare bootstraps the strategy and benchmark independently and pairs
// their trials by index.
func (m MonteCarlo) Compare(ctx context.Context, strategyReturns, benchmarkReturns []float64) (*Comparison, error) {
	s, err := m.simulate(ctx, strategyReturns, streamStrategy)
	if err != nil {
		return nil, fmt.Errorf("strategy: %w", err)
	}
	b, err := m.simulate(ctx, benchmarkReturns, streamBenchmark)
	if err != nil {
		return nil, fmt.Errorf("benchmark: %w", err)
	}
	out := &Comparison{Strategy: s, Benchmark: b, ProbUnderperform: make([]float64, len(s))}
	for k := range s {
		below := 0
		for t := range s[k].CAGRs {
			if s[k].CAGRs[t] < b[k].CAGRs[t] {
				below++
			}
		}
		out.ProbUnderperform[k] = float64(below) / float64(len(s[k].CAGRs))
	}
	return out, nil
}

func (m MonteCarlo) simulate(ctx context.Context, returns []float64, stream uint64) ([]HorizonStats, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(returns) == 0 {
		return nil, fmt.Errorf("monte carlo: no returns: %w", model.ErrInsufficientSample)
	}

	out := make([]HorizonStats, len(m.Horizons))
	for k, h := range m.Horizons {
		days := h * backtest.TradingDays
		finals := make([]float64, m.Simulations)

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(runtime.GOMAXPROCS(0))
		for t := 0; t < m.Simulations; t++ {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				rng := rand.New(rand.NewPCG(m.Seed, trialSeq(h, t, stream)))
				c := 1.0
				for d := 0; d < days; d++ {
					c *= 1 + returns[rng.IntN(len(returns))]
				}
				finals[t] = c
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		out[k] = horizonStats(h, finals)
	}
	return out, nil
}

func trialSeq(horizon, trial int, stream uint64) uint64 {
	return uint64(horizon)<<40 | uint64(trial)<<8 | stream
}

func horizonStats(years int, finals []float64) HorizonStats {
	cagrs := make([]float64, len(finals))
	losses := 0
	for t, f := range finals {
		if f < 1 {
			losses++
		}
		cagrs[t] = backtest.CAGR(f, years*backtest.TradingDays)
	}
	d := Summarize(cagrs)
	return HorizonStats{
		Years:      years,
		ProbLoss:   float64(losses) / float64(len(finals)),
		MeanCAGR:   d.Mean,
		MedianCAGR: d.Median,
		P05CAGR:    d.P05,
		P95CAGR:    d.P95,
		CAGRs:      cagrs,
	}
}
