package strategy

import (
	"fmt"

	"rebalance-backtest/internal/model"
)

// VIXFilter holds the calendar hedge on the spread while the regime level is
// above Threshold*Scale and is fully long the risk asset otherwise. Days with
// an undefined calendar position are undefined in either state.
type VIXFilter struct {
	Threshold float64
	// Scale converts Threshold into the units of the regime series.
	Scale float64
}

func NewVIXFilter(threshold, scale float64) *VIXFilter {
	if scale == 0 {
		scale = 1
	}
	return &VIXFilter{Threshold: threshold, Scale: scale}
}

func (s *VIXFilter) Name() string { return fmt.Sprintf("vix>%g", s.Threshold) }

func (s *VIXFilter) Active(level float64) bool {
	return level > s.Threshold*s.Scale
}

func (s *VIXFilter) Decide(ctx Context) Position {
	f := ctx.Frame
	if !f.HasRegime() || !model.IsDefined(f.Regime[ctx.Index]) || !model.IsDefined(f.Calendar[ctx.Index]) {
		return Undefined()
	}
	if s.Active(f.Regime[ctx.Index]) {
		return Position{Weight: f.Calendar[ctx.Index], Hedged: true}
	}
	return Position{Weight: 1}
}

// MAFilter holds the calendar hedge while the risk asset trades below its
// moving average minus Buffer, and drops it above the average plus Buffer.
// Inside the band the previous state is kept. The first Window-1 days have no
// average and are undefined, as are days with no calendar position.
type MAFilter struct {
	Window int
	Buffer float64

	ma     []float64
	hedged []bool
}

func NewMAFilter(window int, buffer float64) *MAFilter {
	return &MAFilter{Window: window, Buffer: buffer}
}

func (s *MAFilter) Name() string { return fmt.Sprintf("ma%d", s.Window) }

// Reset precomputes the moving average and hedge state for the frame.
func (s *MAFilter) Reset(f *model.Frame) {
	s.ma = MovingAverage(f.PriceA, s.Window)
	s.hedged = make([]bool, len(s.ma))
	state := false
	for i, m := range s.ma {
		if model.IsDefined(m) {
			switch p := f.PriceA[i]; {
			case p < m*(1-s.Buffer):
				state = true
			case p > m*(1+s.Buffer):
				state = false
			}
		}
		s.hedged[i] = state
	}
}

func (s *MAFilter) Decide(ctx Context) Position {
	if s.ma == nil || len(s.ma) != ctx.Frame.Len() {
		s.Reset(ctx.Frame)
	}
	i := ctx.Index
	if !model.IsDefined(s.ma[i]) || !model.IsDefined(ctx.Frame.Calendar[i]) {
		return Undefined()
	}
	if s.hedged[i] {
		return Position{Weight: ctx.Frame.Calendar[i], Hedged: true}
	}
	return Position{Weight: 1}
}

// MovingAverage is the trailing simple average over window values,
// undefined until the window is full.
func MovingAverage(xs []float64, window int) []float64 {
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= window {
			sum -= xs[i-window]
		}
		if i < window-1 || window <= 0 {
			out[i] = model.Undefined()
			continue
		}
		out[i] = sum / float64(window)
	}
	return out
}
