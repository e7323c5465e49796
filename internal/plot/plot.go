// Package plot writes PNG charts of backtest results.
package plot

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/model"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

const (
	width  = 12 * vg.Inch
	height = 7 * vg.Inch
)

// xys keeps points with a defined y; log scales also drop y <= 0.
func xys(dates []time.Time, ys []float64, positive bool) plotter.XYs {
	pts := make(plotter.XYs, 0, len(ys))
	for i, y := range ys {
		if !model.IsDefined(y) || (positive && y <= 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(dates[i].Unix()), Y: y})
	}
	return pts
}

func newTimePlot(title, ylabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Date"
	p.Y.Label.Text = ylabel
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Legend.Top = true
	p.Legend.Left = true
	p.Add(plotter.NewGrid())
	return p
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, color int) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("line %s: %w", name, err)
	}
	line.Color = plotutil.Color(color)
	line.Width = vg.Points(1.2)
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

func save(p *plot.Plot, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return p.Save(width, height, path)
}

// Cumulative charts growth of one for each run on a log scale, with the
// benchmark of the first run.
func Cumulative(path, title string, runs []analysis.Named) error {
	p := newTimePlot(title, "Growth of $1 (log)")
	p.Y.Scale = plot.LogScale{}
	p.Y.Tick.Marker = plot.LogTicks{Prec: -1}

	color := 0
	for _, r := range runs {
		if r.Result == nil {
			continue
		}
		curve := make([]float64, len(r.Result.Ledger))
		for i, row := range r.Result.Ledger {
			curve[i] = row.CumStrategy
		}
		if err := addLine(p, r.Name, xys(r.Result.Dates(), curve, true), color); err != nil {
			return err
		}
		color++
	}
	for _, r := range runs {
		if r.Result == nil {
			continue
		}
		bench := make([]float64, len(r.Result.Ledger))
		for i, row := range r.Result.Ledger {
			bench[i] = row.CumBenchmark
		}
		if err := addLine(p, "benchmark", xys(r.Result.Dates(), bench, true), color); err != nil {
			return err
		}
		break
	}
	return save(p, path)
}

// RollingAlphaBeta stacks the annualized alpha above the beta.
func RollingAlphaBeta(path string, rr *analysis.RollingRegression) error {
	alpha := newTimePlot(fmt.Sprintf("Rolling %d-day alpha (annualized)", rr.Window), "alpha")
	if err := addLine(alpha, "alpha", xys(rr.Dates, rr.Alpha, false), 0); err != nil {
		return err
	}
	beta := newTimePlot(fmt.Sprintf("Rolling %d-day beta", rr.Window), "beta")
	if err := addLine(beta, "beta", xys(rr.Dates, rr.Beta, false), 1); err != nil {
		return err
	}

	img := vgimg.New(width, height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadY:      vg.Millimeter,
		PadTop:    vg.Points(10),
		PadBottom: vg.Points(10),
		PadLeft:   vg.Points(10),
		PadRight:  vg.Points(10),
	}
	grid := [][]*plot.Plot{{alpha}, {beta}}
	canvases := plot.Align(grid, tiles, dc)
	for i := range grid {
		grid[i][0].Draw(canvases[i][0])
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// Turnover charts each strategy's trailing mean daily turnover.
func Turnover(path string, t *analysis.TurnoverBreakdown) error {
	p := newTimePlot("Daily turnover (rolling mean)", "mean |Δweight| per day")
	for i, l := range t.Strategies {
		if err := addLine(p, l.Name, xys(l.Dates, l.Rolling, false), i); err != nil {
			return err
		}
	}
	return save(p, path)
}
