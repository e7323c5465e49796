package strategy

import "rebalance-backtest/internal/model"

type Context struct {
	Index int
	Frame *model.Frame
}

// Position is the decision for one day. Weight is the spread weight when
// Hedged, otherwise the weight on the risk asset alone. An undefined weight
// excludes the day from evaluation.
type Position struct {
	Weight float64
	Hedged bool
}

func Undefined() Position { return Position{Weight: model.Undefined(), Hedged: true} }

type Strategy interface {
	Name() string
	Decide(ctx Context) Position
}

// Resetter is implemented by strategies that carry state across days.
// The engine calls Reset once before the first Decide of a run.
type Resetter interface {
	Reset(f *model.Frame)
}
