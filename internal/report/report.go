// Package report renders backtest results as fixed-width text tables.
package report

import (
	"fmt"
	"io"
	"math"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"
)

func pct(x float64) string {
	if math.IsNaN(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", x*100)
}

func num(x float64) string {
	if math.IsNaN(x) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", x)
}

// Summary prints strategy and benchmark statistics side by side.
func Summary(w io.Writer, res *backtest.Result) {
	from, to := res.Window()
	fmt.Fprintf(w, "%s  %s to %s  (%d days, cost %.1f bps)\n",
		res.Strategy, from.Format(model.DateLayout), to.Format(model.DateLayout), res.Stats.Days, res.CostBps)
	fmt.Fprintf(w, "%-18s %-12s %-12s\n", "metric", "strategy", "benchmark")
	rows := []struct {
		name string
		s, b string
	}{
		{"CAGR", pct(res.Stats.CAGR), pct(res.Benchmark.CAGR)},
		{"volatility", pct(res.Stats.Volatility), pct(res.Benchmark.Volatility)},
		{"sharpe", num(res.Stats.Sharpe), num(res.Benchmark.Sharpe)},
		{"max drawdown", pct(res.Stats.MaxDrawdown), pct(res.Benchmark.MaxDrawdown)},
		{"annual turnover", num(res.Stats.AnnualTurnover), "-"},
		{"final cumulative", num(res.Stats.FinalCumulative), num(res.Benchmark.FinalCumulative)},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-18s %-12s %-12s\n", r.name, r.s, r.b)
	}
}

// Compare prints one row per run, with the benchmark of the first run last.
func Compare(w io.Writer, runs []analysis.Named) {
	header(w)
	for _, r := range runs {
		if r.Result == nil {
			fmt.Fprintf(w, "%-22s %s\n", r.Name, "no data")
			continue
		}
		row(w, r.Name, r.Result.Stats)
	}
	if len(runs) > 0 && runs[0].Result != nil {
		row(w, "benchmark", runs[0].Result.Benchmark)
	}
}

func header(w io.Writer) {
	fmt.Fprintf(w, "%-22s %-10s %-10s %-8s %-10s %-10s\n", "strategy", "CAGR", "vol", "sharpe", "maxDD", "turnover")
}

func row(w io.Writer, name string, s backtest.Stats) {
	fmt.Fprintf(w, "%-22s %-10s %-10s %-8s %-10s %-10s\n",
		name, pct(s.CAGR), pct(s.Volatility), num(s.Sharpe), pct(s.MaxDrawdown), num(s.AnnualTurnover))
}

func Costs(w io.Writer, points []analysis.CostPoint) {
	fmt.Fprintf(w, "%-8s %-10s %-8s %-10s\n", "bps", "CAGR", "sharpe", "maxDD")
	for _, p := range points {
		s := p.Result.Stats
		fmt.Fprintf(w, "%-8.1f %-10s %-8s %-10s\n", p.CostBps, pct(s.CAGR), num(s.Sharpe), pct(s.MaxDrawdown))
	}
}

func MonteCarlo(w io.Writer, cmp *analysis.Comparison, simulations int) {
	fmt.Fprintf(w, "Monte Carlo (%d simulations)\n", simulations)
	fmt.Fprintf(w, "%-8s %-10s %-10s %-10s %-10s %-10s %-12s\n", "years", "P(loss)", "mean", "median", "p05", "p95", "P(under)")
	for k, h := range cmp.Strategy {
		fmt.Fprintf(w, "%-8d %-10s %-10s %-10s %-10s %-10s %-12s\n",
			h.Years, pct(h.ProbLoss), pct(h.MeanCAGR), pct(h.MedianCAGR), pct(h.P05CAGR), pct(h.P95CAGR), pct(cmp.ProbUnderperform[k]))
	}
	fmt.Fprintln(w, "benchmark")
	for _, h := range cmp.Benchmark {
		fmt.Fprintf(w, "%-8d %-10s %-10s %-10s %-10s %-10s\n",
			h.Years, pct(h.ProbLoss), pct(h.MeanCAGR), pct(h.MedianCAGR), pct(h.P05CAGR), pct(h.P95CAGR))
	}
}

func WalkForward(w io.Writer, wf *analysis.WalkForwardResult) {
	fmt.Fprintf(w, "%-12s %-12s %-10s %-8s %-10s\n", "in-sample", "test", "CAGR", "sharpe", "bench")
	for _, win := range wf.Windows {
		is := fmt.Sprintf("%d-%d", win.InSampleStart, win.InSampleEnd)
		test := fmt.Sprintf("%d-%d", win.TestStart, win.TestEnd)
		if win.Result == nil {
			fmt.Fprintf(w, "%-12s %-12s %s\n", is, test, "no data")
			continue
		}
		fmt.Fprintf(w, "%-12s %-12s %-10s %-8s %-10s\n",
			is, test, pct(win.Result.Stats.CAGR), num(win.Result.Stats.Sharpe), pct(win.Result.Benchmark.CAGR))
	}
	fmt.Fprintln(w, "stitched out-of-sample")
	Summary(w, wf.Stitched)
}

func Sensitivity(w io.Writer, s *analysis.SensitivityResult) {
	sweep := func(title, format string, points []analysis.SensitivityPoint) {
		fmt.Fprintln(w, title)
		for _, p := range points {
			fmt.Fprintf(w, "  "+format+"  CAGR %-9s sharpe %s\n", p.Value, pct(p.Result.Stats.CAGR), num(p.Result.Stats.Sharpe))
		}
	}
	sweep("alpha (threshold weight)", "%-6.2f", s.Alpha)
	sweep("normalization", "%-6.4f", s.Normalization)
	sweep("target weight", "%-6.2f", s.TargetWeight)
	fmt.Fprintln(w, "components")
	Compare(w, s.Components)
}

func Periods(w io.Writer, periods []analysis.PeriodResult) {
	for _, p := range periods {
		fmt.Fprintf(w, "%s (%s to %s)\n", p.Period.Name, p.Period.Start.Format(model.DateLayout), p.Period.End.Format(model.DateLayout))
		if p.NoData {
			fmt.Fprintln(w, "  no data")
			continue
		}
		Compare(w, p.Runs)
	}
}

func Crisis(w io.Writer, c *analysis.CrisisSplit) {
	fmt.Fprintf(w, "regime > %g: %d days, otherwise: %d days\n", c.Threshold, c.CrisisDays, c.CalmDays)
	Compare(w, []analysis.Named{{Name: "crisis", Result: c.Crisis}, {Name: "calm", Result: c.Calm}})
}

func Turnover(w io.Writer, t *analysis.TurnoverBreakdown) {
	fmt.Fprintf(w, "%-22s %-10s\n", "strategy", "annual")
	for _, l := range t.Strategies {
		fmt.Fprintf(w, "%-22s %-10.2f\n", l.Name, l.Annual)
	}
	fmt.Fprintf(w, "%-22s %-10.2f\n", "threshold (unweighted)", t.ThresholdComponent)
	fmt.Fprintf(w, "%-22s %-10.2f\n", "calendar (unweighted)", t.CalendarComponent)
}

// Rolling prints the mean and latest of each regression series.
func Rolling(w io.Writer, rr *analysis.RollingRegression) {
	var sa, sb float64
	n := 0
	last := -1
	for i := range rr.Alpha {
		if !model.IsDefined(rr.Alpha[i]) {
			continue
		}
		sa += rr.Alpha[i]
		sb += rr.Beta[i]
		n++
		last = i
	}
	fmt.Fprintf(w, "rolling %d-day regression: %d points\n", rr.Window, n)
	if n == 0 {
		return
	}
	fmt.Fprintf(w, "%-8s %-10s %-10s\n", "", "alpha", "beta")
	fmt.Fprintf(w, "%-8s %-10s %-10s\n", "mean", pct(sa/float64(n)), num(sb/float64(n)))
	fmt.Fprintf(w, "%-8s %-10s %-10s\n", "latest", pct(rr.Alpha[last]), num(rr.Beta[last]))
}

// Breaches lists regime runs; scale converts levels back to index points.
func Breaches(w io.Writer, breaches []analysis.Breach, scale float64) {
	if scale == 0 {
		scale = 1
	}
	fmt.Fprintf(w, "%-4s %-12s %-12s %-6s %-8s\n", "#", "start", "end", "days", "peak")
	for i, b := range breaches {
		end := b.End.Format(model.DateLayout)
		if b.Open {
			end += "*"
		}
		fmt.Fprintf(w, "%-4d %-12s %-12s %-6d %-8.2f\n", i+1, b.Start.Format(model.DateLayout), end, b.Days, b.Peak/scale)
	}
	fmt.Fprintf(w, "%d breaches\n", len(breaches))
}
