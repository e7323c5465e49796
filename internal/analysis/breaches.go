package analysis

import (
	"time"

	"rebalance-backtest/internal/model"
)

// Breach is a run of consecutive observations above a level.
type Breach struct {
	Start time.Time
	// End is the first date back at or below the level, or the last
	// observation when the run is still open.
	End  time.Time
	Open bool
	Days int
	Peak float64
}

// Breaches scans a level series for runs strictly above level. Undefined
// values end a run.
func Breaches(levels *model.LevelSeries, level float64) []Breach {
	var out []Breach
	var cur *Breach
	for i, v := range levels.Values {
		above := model.IsDefined(v) && v > level
		switch {
		case above && cur == nil:
			cur = &Breach{Start: levels.Dates[i], Days: 1, Peak: v}
		case above:
			cur.Days++
			if v > cur.Peak {
				cur.Peak = v
			}
		case cur != nil:
			cur.End = levels.Dates[i]
			out = append(out, *cur)
			cur = nil
		}
	}
	if cur != nil {
		cur.End = levels.Dates[len(levels.Dates)-1]
		cur.Open = true
		out = append(out, *cur)
	}
	return out
}
