package model

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return d
}

func days(ss ...string) []time.Time {
	out := make([]time.Time, len(ss))
	for i, s := range ss {
		out[i] = day(s)
	}
	return out
}

func frameOn(dates []time.Time) *Frame {
	n := len(dates)
	f := &Frame{
		Dates:     dates,
		PriceA:    make([]float64, n),
		ReturnA:   make([]float64, n),
		ReturnB:   make([]float64, n),
		Threshold: make([]float64, n),
		Calendar:  make([]float64, n),
		Combined:  make([]float64, n),
	}
	for i := range dates {
		f.ReturnA[i] = float64(i) / 100
		f.Threshold[i] = float64(i)
	}
	return f
}

func TestNewReturnSeriesDropsFirstRow(t *testing.T) {
	s, err := NewReturnSeries(
		days("2024-01-02", "2024-01-03", "2024-01-04"),
		[]float64{100, 110, 99},
		[]float64{50, 50, 51},
	)
	require.NoError(t, err)
	require.Equal(t, 2, s.Len())

	assert.Equal(t, day("2024-01-03"), s.Observations[0].Date)
	assert.InDelta(t, 0.10, s.Observations[0].ReturnA, 1e-12)
	assert.InDelta(t, 0.0, s.Observations[0].ReturnB, 1e-12)
	assert.Equal(t, 110.0, s.Observations[0].PriceA)

	assert.Equal(t, day("2024-01-04"), s.Observations[1].Date)
	assert.InDelta(t, -0.10, s.Observations[1].ReturnA, 1e-12)
	assert.InDelta(t, 0.02, s.Observations[1].ReturnB, 1e-12)
	assert.InDelta(t, -0.12, s.Observations[1].SpreadReturn(), 1e-12)

	assert.Equal(t, []float64{110, 99}, s.PricesA())
	assert.Equal(t, days("2024-01-03", "2024-01-04"), s.Dates())
}

func TestNewReturnSeriesRejectsUnorderedDates(t *testing.T) {
	cases := map[string][]time.Time{
		"duplicate":  days("2024-01-02", "2024-01-03", "2024-01-03"),
		"decreasing": days("2024-01-02", "2024-01-04", "2024-01-03"),
	}
	for name, dates := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewReturnSeries(dates, []float64{1, 2, 3}, []float64{1, 1, 1})
			require.Error(t, err)
			assert.Contains(t, err.Error(), "not after")
		})
	}

	// The dropped first row is not part of the ordering check.
	_, err := NewReturnSeries(days("2024-01-05", "2024-01-03", "2024-01-04"), []float64{1, 2, 3}, []float64{1, 1, 1})
	assert.NoError(t, err)
}

func TestNewReturnSeriesErrors(t *testing.T) {
	_, err := NewReturnSeries(days("2024-01-02"), []float64{1}, []float64{1})
	assert.True(t, errors.Is(err, ErrInsufficientSample))

	_, err = NewReturnSeries(days("2024-01-02", "2024-01-03"), []float64{1, 2}, []float64{1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "length mismatch")

	_, err = NewReturnSeries(days("2024-01-02", "2024-01-03"), []float64{0, 2}, []float64{1, 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "zero price on 2024-01-02")

	_, err = NewReturnSeries(days("2024-01-02", "2024-01-03"), []float64{1, math.NaN()}, []float64{1, 1})
	assert.True(t, errors.Is(err, ErrMissingInput))
}

func TestLevelSeriesLookup(t *testing.T) {
	ls, err := NewLevelSeries("vix", days("2024-01-02", "2024-01-03"), []float64{15, math.NaN()})
	require.NoError(t, err)

	v, ok := ls.Lookup(day("2024-01-02").Add(16 * time.Hour))
	assert.True(t, ok, "lookup is by calendar date")
	assert.Equal(t, 15.0, v)

	_, ok = ls.Lookup(day("2024-01-03"))
	assert.False(t, ok, "undefined level counts as missing")

	_, ok = ls.Lookup(day("2024-01-04"))
	assert.False(t, ok)

	literal := &LevelSeries{Dates: days("2024-01-05"), Values: []float64{20}}
	v, ok = literal.Lookup(day("2024-01-05"))
	assert.True(t, ok)
	assert.Equal(t, 20.0, v)

	var none *LevelSeries
	_, ok = none.Lookup(day("2024-01-05"))
	assert.False(t, ok)

	_, err = NewLevelSeries("vix", days("2024-01-02"), nil)
	assert.Error(t, err)
}

func TestJoinRegime(t *testing.T) {
	f := frameOn(days("2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05", "2024-01-08"))
	ls, err := NewLevelSeries("vix",
		// 01-03 is a gap, 01-05 is undefined, 01-01 and 01-09 are extra.
		days("2024-01-01", "2024-01-02", "2024-01-04", "2024-01-05", "2024-01-08", "2024-01-09"),
		[]float64{11, 12, 14, math.NaN(), 18, 19},
	)
	require.NoError(t, err)

	j := f.JoinRegime(ls)
	require.NoError(t, j.Validate())
	assert.Equal(t, days("2024-01-02", "2024-01-04", "2024-01-08"), j.Dates)
	assert.Equal(t, []float64{12, 14, 18}, j.Regime)
	assert.Equal(t, []float64{0, 2, 4}, j.Threshold, "signal rows travel with their dates")
	assert.Equal(t, []float64{0, 0.02, 0.04}, j.ReturnA)

	// The source frame is untouched.
	assert.False(t, f.HasRegime())
	assert.Equal(t, 5, f.Len())
}

func TestJoinRegimeNoOverlap(t *testing.T) {
	f := frameOn(days("2024-01-02", "2024-01-03"))
	ls, err := NewLevelSeries("vix", days("2023-06-01"), []float64{20})
	require.NoError(t, err)

	j := f.JoinRegime(ls)
	assert.Equal(t, 0, j.Len())
	assert.True(t, j.HasRegime())
	assert.NoError(t, j.Validate())
}

func TestFrameBetweenAndSelect(t *testing.T) {
	f := frameOn(days("2024-01-02", "2024-01-03", "2024-01-04", "2024-01-05"))
	f.Regime = []float64{1, 2, 3, 4}

	b := f.Between(day("2024-01-03"), day("2024-01-04"))
	assert.Equal(t, days("2024-01-03", "2024-01-04"), b.Dates)
	assert.Equal(t, []float64{2, 3}, b.Regime)

	open := f.Between(time.Time{}, day("2024-01-03"))
	assert.Equal(t, 2, open.Len())

	s := f.Select(func(i int) bool { return f.Regime[i] > 2 })
	assert.Equal(t, []float64{2, 3}, s.Threshold)

	f.Calendar = f.Calendar[:2]
	assert.Error(t, f.Validate())
}

func TestDirectionFromWeight(t *testing.T) {
	assert.Equal(t, DirectionLong, DirectionFromWeight(0.3))
	assert.Equal(t, DirectionShort, DirectionFromWeight(-1))
	assert.Equal(t, DirectionFlat, DirectionFromWeight(0))
	assert.Equal(t, DirectionUndefined, DirectionFromWeight(Undefined()))
}
