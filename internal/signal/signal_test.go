package signal

import (
	"context"
	"math"
	"testing"
	"time"

	"rebalance-backtest/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func businessDays(from, to time.Time) []time.Time {
	var out []time.Time
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if d.Weekday() == time.Saturday || d.Weekday() == time.Sunday {
			continue
		}
		out = append(out, d)
	}
	return out
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDriftStep(t *testing.T) {
	s := DriftState{Weight: 0.6}
	drifted, sig := s.Step(0.6, 0.01, -0.005)

	want := 0.6 * 1.01 / (0.6*1.01 + 0.4*0.995)
	assert.InDelta(t, want, drifted, 1e-15)
	assert.InDelta(t, want-0.6, sig, 1e-15)
}

func TestSimulateThresholdResetsAndCarries(t *testing.T) {
	ra := []float64{0.1, 0}
	rb := []float64{0, 0}

	// delta 0 always rebalances, so day 1 starts from target again.
	always := Simulate(ra, rb, 0.5, ThresholdTrigger{Delta: 0})
	assert.InDelta(t, 0.55/1.05-0.5, always[0], 1e-12)
	assert.InDelta(t, 0.0, always[1], 1e-12)

	// A wide band never rebalances and the drift carries into day 1.
	never := Simulate(ra, rb, 0.5, ThresholdTrigger{Delta: 1})
	assert.InDelta(t, 0.55/1.05-0.5, never[0], 1e-12)
	assert.InDelta(t, 0.55/1.05-0.5, never[1], 1e-12)
}

func TestThresholdSignalIsEnsembleMean(t *testing.T) {
	ra := []float64{0.1, 0}
	rb := []float64{0, 0}

	mean, err := ThresholdSignal(context.Background(), ra, rb, 0.5, []float64{0, 1})
	require.NoError(t, err)
	require.Len(t, mean, 2)

	first := 0.55/1.05 - 0.5
	assert.InDelta(t, first, mean[0], 1e-12)
	assert.InDelta(t, first/2, mean[1], 1e-12)

	a := Simulate(ra, rb, 0.5, ThresholdTrigger{Delta: 0})
	b := Simulate(ra, rb, 0.5, ThresholdTrigger{Delta: 1})
	for i := range mean {
		assert.Equal(t, (a[i]+b[i])/2, mean[i])
	}
}

func TestDefaultDeltaSweep(t *testing.T) {
	vals := DefaultParams().Deltas.Values()
	require.Len(t, vals, 26)
	assert.Equal(t, 0.0, vals[0])
	assert.InDelta(t, 0.025, vals[25], 1e-12)
	assert.InDelta(t, 0.001, vals[1], 1e-15)
}

func TestNormalizeInverts(t *testing.T) {
	out := Normalize([]float64{0.012, -0.006, 0}, 0.012)
	assert.InDelta(t, -1.0, out[0], 1e-12)
	assert.InDelta(t, 0.5, out[1], 1e-12)
	assert.Equal(t, 0.0, math.Abs(out[2]))
}

func TestCalendarDaysToMonthEnd(t *testing.T) {
	dates := []time.Time{
		date(2024, 1, 29), date(2024, 1, 30), date(2024, 1, 31),
		date(2024, 2, 1), date(2024, 2, 2),
	}
	cal := NewCalendar(dates)
	assert.Equal(t, []int{2, 1, 0, 1, 0}, cal.DaysToMonthEnd)

	assert.False(t, cal.MonthEndWithNext(0))
	assert.True(t, cal.MonthEndWithNext(2))
	// The final day has no next day and never triggers.
	assert.False(t, cal.MonthEndWithNext(4))
}

func TestCalendarTriggerRebalancesAtMonthEnd(t *testing.T) {
	dates := []time.Time{date(2024, 1, 30), date(2024, 1, 31), date(2024, 2, 1)}
	ra := []float64{0.1, 0.1, 0}
	rb := []float64{0, 0, 0}
	raw := Simulate(ra, rb, 0.5, CalendarTrigger{Calendar: NewCalendar(dates)})

	// Day 1 carries day 0's drift; day 2 starts from target after the month-end reset.
	w0 := 0.55 / 1.05
	w1 := w0 * 1.1 / (w0*1.1 + (1 - w0))
	assert.InDelta(t, w0-0.5, raw[0], 1e-12)
	assert.InDelta(t, w1-0.5, raw[1], 1e-12)
	assert.InDelta(t, 0.0, raw[2], 1e-12)
}

func TestCalendarReversionRoundTrip(t *testing.T) {
	dates := businessDays(date(2024, 1, 1), date(2024, 3, 31))
	cal := NewCalendar(dates)

	raw := make([]float64, len(dates))
	for i, d := range dates {
		switch d.Month() {
		case time.January, time.March:
			raw[i] = 0.01
		case time.February:
			raw[i] = -0.01
		}
	}
	pos := CalendarPositions(raw, cal)

	fifthToLast := map[time.Month]float64{}
	for i, d := range dates {
		dtme := cal.DaysToMonthEnd[i]
		switch {
		case dtme == 4:
			fifthToLast[d.Month()] = pos[i]
			assert.Equal(t, -sign(raw[i]), pos[i], "trade day %s", d.Format(model.DateLayout))
		case dtme >= 1 && dtme < 4:
			assert.Equal(t, -sign(raw[i]), pos[i], "trade day %s", d.Format(model.DateLayout))
		case dtme == 0:
			// checked below
		default:
			assert.Equal(t, 0.0, pos[i], "idle day %s", d.Format(model.DateLayout))
		}
	}

	lastDay := map[time.Month]float64{}
	for i, d := range dates {
		if cal.DaysToMonthEnd[i] == 0 {
			lastDay[d.Month()] = pos[i]
		}
	}
	assert.True(t, math.IsNaN(lastDay[time.January]), "first month has no prior reversion signal")
	assert.Equal(t, -fifthToLast[time.January], lastDay[time.February])
	assert.Equal(t, -fifthToLast[time.February], lastDay[time.March])
	assert.Equal(t, 1.0, lastDay[time.February])
	assert.Equal(t, -1.0, lastDay[time.March])
}

func TestCalendarShortMonthLeavesNextMonthEndUndefined(t *testing.T) {
	// January is truncated to three trading days, so it never has a 5th-to-last day.
	dates := append(businessDays(date(2024, 1, 29), date(2024, 1, 31)), businessDays(date(2024, 2, 1), date(2024, 2, 29))...)
	raw := make([]float64, len(dates))
	for i := range raw {
		raw[i] = 0.01
	}
	pos := CalendarPositions(raw, NewCalendar(dates))
	assert.True(t, math.IsNaN(pos[len(pos)-1]))
	assert.True(t, math.IsNaN(pos[2]))
}

func TestCalendarZeroDriftMapsToZero(t *testing.T) {
	dates := businessDays(date(2024, 1, 1), date(2024, 1, 31))
	pos := CalendarPositions(make([]float64, len(dates)), NewCalendar(dates))
	for i := 0; i < len(pos)-1; i++ {
		assert.Equal(t, 0.0, pos[i])
		assert.False(t, math.Signbit(pos[i]))
	}
}

func TestCombine(t *testing.T) {
	out := Combine([]float64{1, -0.5, math.NaN()}, []float64{-1, 1, 1}, 0.6)
	assert.InDelta(t, 0.2, out[0], 1e-12)
	assert.InDelta(t, 0.1, out[1], 1e-12)
	assert.True(t, math.IsNaN(out[2]))
}

func syntheticSeries(t *testing.T, n int) *model.ReturnSeries {
	t.Helper()
	days := businessDays(date(2023, 1, 2), date(2025, 12, 31))[:n+1]
	pa := make([]float64, len(days))
	pb := make([]float64, len(days))
	pa[0], pb[0] = 100, 100
	for i := 1; i < len(days); i++ {
		r := 0.01
		if i%2 == 0 {
			r = -0.01
		}
		pa[i] = pa[i-1] * (1 + r)
		pb[i] = pb[i-1] * (1 + 0.0002*float64(i%3))
	}
	s, err := model.NewReturnSeries(days, pa, pb)
	require.NoError(t, err)
	return s
}

func TestGenerateIsDeterministic(t *testing.T) {
	series := syntheticSeries(t, 300)
	p := DefaultParams()

	a, err := Generate(context.Background(), series, p)
	require.NoError(t, err)
	b, err := Generate(context.Background(), series, p)
	require.NoError(t, err)

	require.Equal(t, series.Len(), a.Len())
	for i := range a.Combined {
		assert.Equal(t, math.Float64bits(a.ThresholdRaw[i]), math.Float64bits(b.ThresholdRaw[i]))
		assert.Equal(t, math.Float64bits(a.Combined[i]), math.Float64bits(b.Combined[i]))
	}
}

func TestReblendAndRenormalizeMatchGenerate(t *testing.T) {
	series := syntheticSeries(t, 120)
	base, err := Generate(context.Background(), series, DefaultParams())
	require.NoError(t, err)

	p := DefaultParams()
	p.Alpha = 0.3
	p.Normalization = 0.01
	want, err := Generate(context.Background(), series, p)
	require.NoError(t, err)

	got := base.Renormalize(0.01).Reblend(0.3)
	for i := range want.Combined {
		if math.IsNaN(want.Combined[i]) {
			assert.True(t, math.IsNaN(got.Combined[i]))
			continue
		}
		assert.Equal(t, want.Combined[i], got.Combined[i])
	}
	// The source set is untouched.
	assert.Equal(t, 0.6, base.Params.Alpha)
}

func TestGenerateRejectsBadParams(t *testing.T) {
	series := syntheticSeries(t, 10)
	p := DefaultParams()
	p.Normalization = 0
	_, err := Generate(context.Background(), series, p)
	assert.Error(t, err)
}
