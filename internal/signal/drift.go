package signal

import "math"

// DriftState is the mutable state of one rebalancing simulation: the
// risk-asset weight carried into the next day. It is owned by a single
// Simulate call and starts at the target weight.
type DriftState struct {
	Weight float64
}

// Step applies one day of returns. drifted is the weight the risk asset
// reaches without rebalancing; signal is its deviation from target, observed
// before any rebalance decision for the day.
func (s DriftState) Step(target, returnA, returnB float64) (drifted, signal float64) {
	a := s.Weight * (1 + returnA)
	b := (1 - s.Weight) * (1 + returnB)
	drifted = a / (a + b)
	return drifted, drifted - target
}

// Trigger decides whether the simulated portfolio rebalances at the end of a day.
type Trigger interface {
	Fire(day int, drifted, target float64) bool
}

// ThresholdTrigger rebalances once drift reaches Delta.
type ThresholdTrigger struct {
	Delta float64
}

func (t ThresholdTrigger) Fire(_ int, drifted, target float64) bool {
	return math.Abs(drifted-target) >= t.Delta
}

// CalendarTrigger rebalances on the last trading day of each month. The final
// day of the calendar never fires because the next day is unknown.
type CalendarTrigger struct {
	Calendar *Calendar
}

func (t CalendarTrigger) Fire(day int, _, _ float64) bool {
	return t.Calendar.MonthEndWithNext(day)
}

// Simulate runs one drift simulation and returns one signal per day.
// The returned slice is fully defined from day 0.
func Simulate(returnsA, returnsB []float64, target float64, trigger Trigger) []float64 {
	out := make([]float64, len(returnsA))
	state := DriftState{Weight: target}
	for i := range returnsA {
		drifted, sig := state.Step(target, returnsA[i], returnsB[i])
		out[i] = sig
		if trigger.Fire(i, drifted, target) {
			state.Weight = target
		} else {
			state.Weight = drifted
		}
	}
	return out
}
