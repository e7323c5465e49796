package model

import (
	"fmt"
	"time"
)

// Frame is the evaluation table: one row per trading day holding the
// observation, every signal series and, when joined, the regime level.
// All slices have the same length.
type Frame struct {
	Dates []time.Time

	PriceA  []float64
	ReturnA []float64
	ReturnB []float64

	Threshold []float64
	Calendar  []float64
	Combined  []float64

	// Regime is nil until a level series is joined.
	Regime []float64
}

func (f *Frame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Dates)
}

func (f *Frame) HasRegime() bool { return f != nil && f.Regime != nil }

// SpreadReturn is ReturnA - ReturnB on row i.
func (f *Frame) SpreadReturn(i int) float64 {
	return f.ReturnA[i] - f.ReturnB[i]
}

// Validate checks that every column is aligned with Dates.
func (f *Frame) Validate() error {
	n := len(f.Dates)
	cols := map[string][]float64{
		"price_a":   f.PriceA,
		"return_a":  f.ReturnA,
		"return_b":  f.ReturnB,
		"threshold": f.Threshold,
		"calendar":  f.Calendar,
		"combined":  f.Combined,
	}
	for name, c := range cols {
		if len(c) != n {
			return fmt.Errorf("frame column %s has %d rows, want %d", name, len(c), n)
		}
	}
	if f.Regime != nil && len(f.Regime) != n {
		return fmt.Errorf("frame column regime has %d rows, want %d", len(f.Regime), n)
	}
	return nil
}

// Pick returns a new frame with only the given rows, in order.
func (f *Frame) Pick(rows []int) *Frame {
	out := &Frame{
		Dates:     make([]time.Time, len(rows)),
		PriceA:    make([]float64, len(rows)),
		ReturnA:   make([]float64, len(rows)),
		ReturnB:   make([]float64, len(rows)),
		Threshold: make([]float64, len(rows)),
		Calendar:  make([]float64, len(rows)),
		Combined:  make([]float64, len(rows)),
	}
	if f.Regime != nil {
		out.Regime = make([]float64, len(rows))
	}
	for k, i := range rows {
		out.Dates[k] = f.Dates[i]
		out.PriceA[k] = f.PriceA[i]
		out.ReturnA[k] = f.ReturnA[i]
		out.ReturnB[k] = f.ReturnB[i]
		out.Threshold[k] = f.Threshold[i]
		out.Calendar[k] = f.Calendar[i]
		out.Combined[k] = f.Combined[i]
		if f.Regime != nil {
			out.Regime[k] = f.Regime[i]
		}
	}
	return out
}

// Select keeps the rows for which keep returns true.
func (f *Frame) Select(keep func(i int) bool) *Frame {
	var rows []int
	for i := 0; i < f.Len(); i++ {
		if keep(i) {
			rows = append(rows, i)
		}
	}
	return f.Pick(rows)
}

// Between keeps rows with from <= date <= to. A zero bound is open.
func (f *Frame) Between(from, to time.Time) *Frame {
	i, j := DateRange(f.Dates, from, to)
	rows := make([]int, 0, j-i)
	for k := i; k < j; k++ {
		rows = append(rows, k)
	}
	return f.Pick(rows)
}

// JoinRegime inner-joins a level series on calendar date. Days missing from
// either side are dropped.
func (f *Frame) JoinRegime(levels *LevelSeries) *Frame {
	var rows []int
	var vals []float64
	for i, d := range f.Dates {
		v, ok := levels.Lookup(d)
		if !ok {
			continue
		}
		rows = append(rows, i)
		vals = append(vals, v)
	}
	out := f.Pick(rows)
	out.Regime = vals
	if out.Regime == nil {
		out.Regime = []float64{}
	}
	return out
}
