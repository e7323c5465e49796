package backtest

import (
	"fmt"

	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/signal"
)

// NewFrame aligns a return series with the signals generated from it.
func NewFrame(series *model.ReturnSeries, set *signal.Set) (*model.Frame, error) {
	if series.Len() != set.Len() {
		return nil, fmt.Errorf("series has %d rows, signals have %d", series.Len(), set.Len())
	}
	for i, d := range series.Dates() {
		if !d.Equal(set.Dates[i]) {
			return nil, fmt.Errorf("row %d: series date %s, signal date %s", i, d.Format(model.DateLayout), set.Dates[i].Format(model.DateLayout))
		}
	}
	f := &model.Frame{
		Dates:     series.Dates(),
		PriceA:    series.PricesA(),
		ReturnA:   series.ReturnsA(),
		ReturnB:   series.ReturnsB(),
		Threshold: append([]float64(nil), set.Threshold...),
		Calendar:  append([]float64(nil), set.Calendar...),
		Combined:  append([]float64(nil), set.Combined...),
	}
	return f, nil
}
