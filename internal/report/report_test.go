package report

import (
	"bytes"
	"math"
	"strings"
	"testing"
	"time"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/backtest"

	"github.com/stretchr/testify/assert"
)

func result(name string, cagr, sharpe float64) *backtest.Result {
	d := time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC)
	return &backtest.Result{
		Strategy:  name,
		Ledger:    []backtest.LedgerRow{{Date: d}, {Date: d.AddDate(0, 0, 1)}},
		Stats:     backtest.Stats{Days: 2, CAGR: cagr, Sharpe: sharpe, MaxDrawdown: -0.1},
		Benchmark: backtest.Stats{Days: 2, CAGR: 0.05},
	}
}

func TestSummary(t *testing.T) {
	var buf bytes.Buffer
	Summary(&buf, result("original", 0.1234, 0.8))
	out := buf.String()
	assert.Contains(t, out, "original  2021-03-01 to 2021-03-02")
	assert.Contains(t, out, "12.34%")
	assert.Contains(t, out, "5.00%")
	assert.Contains(t, out, "-10.00%")
}

func TestCompareMarksMissingRuns(t *testing.T) {
	var buf bytes.Buffer
	Compare(&buf, []analysis.Named{
		{Name: "retail", Result: result("retail", 0.02, 0.3)},
		{Name: "vix>20"},
	})
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], "retail"))
	assert.Contains(t, lines[2], "no data")
	assert.True(t, strings.HasPrefix(lines[3], "benchmark"))
}

func TestBreachesTable(t *testing.T) {
	d := time.Date(2008, 9, 15, 0, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	Breaches(&buf, []analysis.Breach{
		{Start: d, End: d.AddDate(0, 0, 3), Days: 3, Peak: 45000},
		{Start: d.AddDate(0, 1, 0), End: d.AddDate(0, 1, 2), Days: 2, Peak: 30000, Open: true},
	}, 1000)
	out := buf.String()
	assert.Contains(t, out, "45.00")
	assert.Contains(t, out, "2008-10-17*")
	assert.Contains(t, out, "2 breaches")
}

func TestRollingSkipsUndefined(t *testing.T) {
	var buf bytes.Buffer
	nan := math.NaN()
	Rolling(&buf, &analysis.RollingRegression{
		Window: 2,
		Alpha:  []float64{nan, 0.1, 0.3},
		Beta:   []float64{nan, 0.4, 0.6},
	})
	out := buf.String()
	assert.Contains(t, out, "2 points")
	assert.Contains(t, out, "20.00%")
	assert.Contains(t, out, "0.60")
}

func TestPctUndefined(t *testing.T) {
	assert.Equal(t, "n/a", pct(math.NaN()))
	assert.Equal(t, "1.50%", pct(0.015))
}
