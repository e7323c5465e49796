package signal

import (
	"time"

	"rebalance-backtest/internal/model"
)

// Trade window for the calendar signal, in trading days before month end.
const (
	tradeWindowFirst = 4 // 5th-to-last trading day; also where the reversion signal is captured
	tradeWindowLast  = 1
)

// Calendar is the per-day month table derived once from a date index.
type Calendar struct {
	// DaysToMonthEnd counts the remaining rows of the same calendar month
	// (0 = last trading day of the month in the data).
	DaysToMonthEnd []int
	// MonthKeys identify the calendar month of each row (year*12 + month-1).
	MonthKeys []int
}

func MonthKey(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

func NewCalendar(dates []time.Time) *Calendar {
	n := len(dates)
	c := &Calendar{
		DaysToMonthEnd: make([]int, n),
		MonthKeys:      make([]int, n),
	}
	for i, d := range dates {
		c.MonthKeys[i] = MonthKey(d)
	}
	remaining := 0
	for i := n - 1; i >= 0; i-- {
		if i == n-1 || c.MonthKeys[i] != c.MonthKeys[i+1] {
			remaining = 0
		} else {
			remaining++
		}
		c.DaysToMonthEnd[i] = remaining
	}
	return c
}

func (c *Calendar) Len() int { return len(c.MonthKeys) }

// MonthEndWithNext reports whether the next trading day falls in a different month.
// It is false on the final day, where no next day exists.
func (c *Calendar) MonthEndWithNext(day int) bool {
	return day < len(c.MonthKeys)-1 && c.MonthKeys[day] != c.MonthKeys[day+1]
}

// CalendarPositions turns the raw calendar drift signal into discrete positions:
//   - 1..4 trading days before month end: fade the day's drift, -sign(raw)
//   - last trading day: -(reversion captured on the previous calendar month's
//     5th-to-last day), undefined when that month has no capture
//   - otherwise 0
func CalendarPositions(raw []float64, cal *Calendar) []float64 {
	reversion := make(map[int]float64)
	for i, d := range cal.DaysToMonthEnd {
		if d == tradeWindowFirst {
			reversion[cal.MonthKeys[i]] = -sign(raw[i])
		}
	}

	out := make([]float64, len(raw))
	for i, d := range cal.DaysToMonthEnd {
		switch {
		case d >= tradeWindowLast && d <= tradeWindowFirst:
			out[i] = -sign(raw[i])
		case d == 0:
			prev, ok := reversion[cal.MonthKeys[i]-1]
			if !ok {
				out[i] = model.Undefined()
				continue
			}
			out[i] = -prev
		}
		// Avoid emitting negative zero.
		if out[i] == 0 {
			out[i] = 0
		}
	}
	return out
}

func sign(x float64) float64 {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	case x == 0:
		return 0
	default:
		return model.Undefined()
	}
}
