package strategy

import (
	"fmt"

	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/signal"
)

// Blend trades the spread at alpha*threshold + (1-alpha)*calendar.
// It is always hedged. A day without a calendar position is undefined for
// every alpha, so all variants share one sample.
type Blend struct {
	Alpha float64

	name string
}

func NewBlend(alpha float64) *Blend {
	return &Blend{Alpha: alpha, name: "original"}
}

// NewCalendarOnly is the month-end variant that ignores the threshold signal.
func NewCalendarOnly() *Blend {
	return &Blend{Alpha: 0, name: "retail"}
}

func NewThresholdOnly() *Blend {
	return &Blend{Alpha: 1, name: "threshold"}
}

func (s *Blend) Name() string {
	if s.name == "" {
		return fmt.Sprintf("blend(%.2f)", s.Alpha)
	}
	return s.name
}

func (s *Blend) Decide(ctx Context) Position {
	f := ctx.Frame
	i := ctx.Index
	switch s.Alpha {
	case 0:
		return Position{Weight: f.Calendar[i], Hedged: true}
	case 1:
		if !model.IsDefined(f.Calendar[i]) {
			return Undefined()
		}
		return Position{Weight: f.Threshold[i], Hedged: true}
	}
	return Position{Weight: signal.Blend(f.Threshold[i], f.Calendar[i], s.Alpha), Hedged: true}
}
