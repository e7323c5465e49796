package model

import (
	"fmt"
	"time"
)

// LevelSeries is a date-indexed exogenous indicator, e.g. a volatility index level.
type LevelSeries struct {
	Name   string
	Dates  []time.Time
	Values []float64

	index map[string]int
}

func NewLevelSeries(name string, dates []time.Time, values []float64) (*LevelSeries, error) {
	if len(dates) != len(values) {
		return nil, fmt.Errorf("level series %q: %d dates, %d values", name, len(dates), len(values))
	}
	ls := &LevelSeries{Name: name, Dates: dates, Values: values}
	ls.buildIndex()
	return ls, nil
}

func (ls *LevelSeries) buildIndex() {
	ls.index = make(map[string]int, len(ls.Dates))
	for i, d := range ls.Dates {
		ls.index[d.Format(DateLayout)] = i
	}
}

// Lookup returns the level on the given calendar date.
func (ls *LevelSeries) Lookup(date time.Time) (float64, bool) {
	if ls == nil {
		return Undefined(), false
	}
	key := date.Format(DateLayout)
	i, ok := ls.index[key]
	if ls.index == nil {
		// Literal-built series: fall back to a scan.
		for k, d := range ls.Dates {
			if d.Format(DateLayout) == key {
				i, ok = k, true
				break
			}
		}
	}
	if !ok || !IsDefined(ls.Values[i]) {
		return Undefined(), false
	}
	return ls.Values[i], true
}

func (ls *LevelSeries) Len() int {
	if ls == nil {
		return 0
	}
	return len(ls.Dates)
}
