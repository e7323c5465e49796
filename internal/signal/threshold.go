package signal

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
)

// ThresholdSignal runs one independent threshold simulation per delta and
// returns the per-day arithmetic mean of their signals.
//
// Simulations run concurrently; the mean is always reduced in delta order so
// the output is bit-identical across runs.
func ThresholdSignal(ctx context.Context, returnsA, returnsB []float64, target float64, deltas []float64) ([]float64, error) {
	if len(returnsA) != len(returnsB) {
		return nil, errors.New("return series length mismatch")
	}
	if len(deltas) == 0 {
		return nil, errors.New("no deltas")
	}

	paths := make([][]float64, len(deltas))
	g, ctx := errgroup.WithContext(ctx)
	for k, delta := range deltas {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			paths[k] = Simulate(returnsA, returnsB, target, ThresholdTrigger{Delta: delta})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return meanPaths(paths, len(returnsA)), nil
}

func meanPaths(paths [][]float64, n int) []float64 {
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		sum := 0.0
		for _, p := range paths {
			sum += p[i]
		}
		out[i] = sum / float64(len(paths))
	}
	return out
}

// Normalize scales and inverts the ensemble mean: positions fade the drift,
// trading ahead of the rebalance rather than with it.
func Normalize(mean []float64, k float64) []float64 {
	out := make([]float64, len(mean))
	for i, m := range mean {
		out[i] = -(m / k)
	}
	return out
}
