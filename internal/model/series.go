package model

import (
	"fmt"
	"math"
	"time"
)

// Observation is one trading day of the two-asset return table.
// A is the risk asset (equity proxy), B is the hedge asset (bond proxy).
type Observation struct {
	Date time.Time

	PriceA float64
	PriceB float64

	// Simple daily returns versus the previous observation's prices.
	ReturnA float64
	ReturnB float64
}

// SpreadReturn is the return of being long A and short B for the day.
func (o Observation) SpreadReturn() float64 {
	return o.ReturnA - o.ReturnB
}

// ReturnSeries is a date-ordered sequence of observations.
type ReturnSeries struct {
	Observations []Observation
}

// NewReturnSeries builds a return series from aligned price levels.
// The first row has no prior price and is dropped.
func NewReturnSeries(dates []time.Time, pricesA, pricesB []float64) (*ReturnSeries, error) {
	if len(dates) != len(pricesA) || len(dates) != len(pricesB) {
		return nil, fmt.Errorf("length mismatch: %d dates, %d A prices, %d B prices", len(dates), len(pricesA), len(pricesB))
	}
	if len(dates) < 2 {
		return nil, fmt.Errorf("need at least 2 price rows, got %d: %w", len(dates), ErrInsufficientSample)
	}
	obs := make([]Observation, 0, len(dates)-1)
	for i := 1; i < len(dates); i++ {
		pa0, pb0 := pricesA[i-1], pricesB[i-1]
		if pa0 == 0 || pb0 == 0 {
			return nil, fmt.Errorf("zero price on %s", dates[i-1].Format(DateLayout))
		}
		obs = append(obs, Observation{
			Date:    dates[i],
			PriceA:  pricesA[i],
			PriceB:  pricesB[i],
			ReturnA: pricesA[i]/pa0 - 1,
			ReturnB: pricesB[i]/pb0 - 1,
		})
	}
	s := &ReturnSeries{Observations: obs}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks dates are strictly increasing and returns are finite.
func (s *ReturnSeries) Validate() error {
	if s == nil {
		return fmt.Errorf("series is nil")
	}
	for i, o := range s.Observations {
		if math.IsNaN(o.ReturnA) || math.IsInf(o.ReturnA, 0) || math.IsNaN(o.ReturnB) || math.IsInf(o.ReturnB, 0) {
			return fmt.Errorf("row %d (%s): non-finite return: %w", i, o.Date.Format(DateLayout), ErrMissingInput)
		}
		if i > 0 && !o.Date.After(s.Observations[i-1].Date) {
			return fmt.Errorf("row %d: date %s not after %s", i, o.Date.Format(DateLayout), s.Observations[i-1].Date.Format(DateLayout))
		}
	}
	return nil
}

func (s *ReturnSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Observations)
}

func (s *ReturnSeries) Dates() []time.Time {
	out := make([]time.Time, s.Len())
	for i, o := range s.Observations {
		out[i] = o.Date
	}
	return out
}

func (s *ReturnSeries) ReturnsA() []float64 {
	out := make([]float64, s.Len())
	for i, o := range s.Observations {
		out[i] = o.ReturnA
	}
	return out
}

func (s *ReturnSeries) ReturnsB() []float64 {
	out := make([]float64, s.Len())
	for i, o := range s.Observations {
		out[i] = o.ReturnB
	}
	return out
}

// Slice returns rows [i, j) sharing no backing array with s.
func (s *ReturnSeries) Slice(i, j int) *ReturnSeries {
	obs := make([]Observation, j-i)
	copy(obs, s.Observations[i:j])
	return &ReturnSeries{Observations: obs}
}

// Between keeps rows with from <= date <= to. A zero bound is open.
func (s *ReturnSeries) Between(from, to time.Time) *ReturnSeries {
	i, j := DateRange(s.Dates(), from, to)
	return s.Slice(i, j)
}

// DateRange returns the index range [i, j) of sorted dates inside [from, to].
func DateRange(dates []time.Time, from, to time.Time) (int, int) {
	i := 0
	if !from.IsZero() {
		for i < len(dates) && dates[i].Before(from) {
			i++
		}
	}
	j := len(dates)
	if !to.IsZero() {
		for j > i && dates[j-1].After(to) {
			j--
		}
	}
	return i, j
}

// DateLayout is the date format used in CSV files and reports.
const DateLayout = "2006-01-02"

func (s *ReturnSeries) PricesA() []float64 {
	out := make([]float64, s.Len())
	for i, o := range s.Observations {
		out[i] = o.PriceA
	}
	return out
}
