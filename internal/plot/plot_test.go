package plot

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/backtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dates(n int) []time.Time {
	out := make([]time.Time, n)
	start := time.Date(2015, 1, 2, 0, 0, 0, 0, time.UTC)
	for i := range out {
		out[i] = start.AddDate(0, 0, 7*i)
	}
	return out
}

func sampleResult(n int) *backtest.Result {
	r := &backtest.Result{Strategy: "original"}
	cs, cb := 1.0, 1.0
	for i, d := range dates(n) {
		cs *= 1 + 0.002*math.Sin(float64(i)/5)
		cb *= 1.001
		r.Ledger = append(r.Ledger, backtest.LedgerRow{Date: d, CumStrategy: cs, CumBenchmark: cb})
	}
	return r
}

func assertPNG(t *testing.T, path string) {
	t.Helper()
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Greater(t, len(raw), 8)
	assert.Equal(t, "\x89PNG", string(raw[:4]))
}

func TestCumulative(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "cumulative.png")
	err := Cumulative(path, "Cumulative returns", []analysis.Named{
		{Name: "original", Result: sampleResult(200)},
		{Name: "missing"},
	})
	require.NoError(t, err)
	assertPNG(t, path)
}

func TestRollingAlphaBeta(t *testing.T) {
	n := 100
	rr := &analysis.RollingRegression{Window: 10, Dates: dates(n), Alpha: make([]float64, n), Beta: make([]float64, n)}
	for i := range rr.Alpha {
		if i < 9 {
			rr.Alpha[i], rr.Beta[i] = math.NaN(), math.NaN()
			continue
		}
		rr.Alpha[i] = 0.01 * math.Cos(float64(i))
		rr.Beta[i] = 0.3 + 0.1*math.Sin(float64(i))
	}
	path := filepath.Join(t.TempDir(), "rolling.png")
	require.NoError(t, RollingAlphaBeta(path, rr))
	assertPNG(t, path)
}

func TestTurnover(t *testing.T) {
	n := 50
	line := analysis.TurnoverLine{Name: "retail", Dates: dates(n), Rolling: make([]float64, n)}
	for i := range line.Rolling {
		line.Rolling[i] = math.NaN()
		if i >= 20 {
			line.Rolling[i] = 0.05
		}
	}
	path := filepath.Join(t.TempDir(), "turnover.png")
	require.NoError(t, Turnover(path, &analysis.TurnoverBreakdown{Strategies: []analysis.TurnoverLine{line}}))
	assertPNG(t, path)
}
