package signal

import (
	"context"
	"fmt"
	"time"

	"rebalance-backtest/internal/model"
)

// Set holds every signal series of one run, aligned 1:1 with the input dates.
type Set struct {
	Params Params

	Dates []time.Time

	// ThresholdRaw is the ensemble-mean drift; Threshold is its normalized, inverted form.
	ThresholdRaw []float64
	Threshold    []float64

	// CalendarRaw is the month-end rebalancer's drift; Calendar is the discrete position.
	CalendarRaw []float64
	Calendar    []float64

	// Combined is the blended target weight.
	Combined []float64
}

// Generate runs the full signal pipeline over a return series.
func Generate(ctx context.Context, series *model.ReturnSeries, p Params) (*Set, error) {
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("signal params: %w", err)
	}
	if series.Len() == 0 {
		return nil, fmt.Errorf("empty return series: %w", model.ErrInsufficientSample)
	}

	ra, rb := series.ReturnsA(), series.ReturnsB()
	dates := series.Dates()

	thrRaw, err := ThresholdSignal(ctx, ra, rb, p.TargetWeight, p.Deltas.Values())
	if err != nil {
		return nil, fmt.Errorf("threshold signal: %w", err)
	}

	cal := NewCalendar(dates)
	calRaw := Simulate(ra, rb, p.TargetWeight, CalendarTrigger{Calendar: cal})

	s := &Set{
		Params:       p,
		Dates:        dates,
		ThresholdRaw: thrRaw,
		CalendarRaw:  calRaw,
		Calendar:     CalendarPositions(calRaw, cal),
	}
	s.Threshold = Normalize(thrRaw, p.Normalization)
	s.Combined = Combine(s.Threshold, s.Calendar, p.Alpha)
	return s, nil
}

func (s *Set) Len() int { return len(s.Dates) }

// Renormalize returns a copy with a different normalization constant.
// The simulations are not rerun.
func (s *Set) Renormalize(k float64) *Set {
	out := s.clone()
	out.Params.Normalization = k
	out.Threshold = Normalize(s.ThresholdRaw, k)
	out.Combined = Combine(out.Threshold, out.Calendar, out.Params.Alpha)
	return out
}

// Reblend returns a copy with a different blend weight.
func (s *Set) Reblend(alpha float64) *Set {
	out := s.clone()
	out.Params.Alpha = alpha
	out.Combined = Combine(out.Threshold, out.Calendar, alpha)
	return out
}

// Pick returns a new set with only the given row indices, in order.
func (s *Set) Pick(rows []int) *Set {
	out := &Set{Params: s.Params}
	out.Dates = make([]time.Time, len(rows))
	out.ThresholdRaw = make([]float64, len(rows))
	out.Threshold = make([]float64, len(rows))
	out.CalendarRaw = make([]float64, len(rows))
	out.Calendar = make([]float64, len(rows))
	out.Combined = make([]float64, len(rows))
	for k, i := range rows {
		out.Dates[k] = s.Dates[i]
		out.ThresholdRaw[k] = s.ThresholdRaw[i]
		out.Threshold[k] = s.Threshold[i]
		out.CalendarRaw[k] = s.CalendarRaw[i]
		out.Calendar[k] = s.Calendar[i]
		out.Combined[k] = s.Combined[i]
	}
	return out
}

func (s *Set) clone() *Set {
	rows := make([]int, s.Len())
	for i := range rows {
		rows[i] = i
	}
	return s.Pick(rows)
}
