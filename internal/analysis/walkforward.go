package analysis

import (
	"errors"
	"fmt"
	"time"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/strategy"
)

// WalkForward rolls an in-sample/out-of-sample split across calendar years.
// Signals carry no fitted parameters, so the in-sample block only positions
// each test window; every out-of-sample window is evaluated on its own.
type WalkForward struct {
	InSampleYears    int
	OutOfSampleYears int
	StepYears        int
}

func DefaultWalkForward() WalkForward {
	return WalkForward{InSampleYears: 5, OutOfSampleYears: 2, StepYears: 2}
}

// WalkWindow is one out-of-sample test.
type WalkWindow struct {
	InSampleStart int
	InSampleEnd   int
	TestStart     int
	TestEnd       int

	// Result is nil when the window had too few evaluable rows.
	Result *backtest.Result
}

type WalkForwardResult struct {
	Windows  []WalkWindow
	Stitched *backtest.Result
}

func (w WalkForward) Validate() error {
	if w.InSampleYears < 0 || w.OutOfSampleYears <= 0 || w.StepYears <= 0 {
		return fmt.Errorf("walk-forward years must be positive (in=%d out=%d step=%d)", w.InSampleYears, w.OutOfSampleYears, w.StepYears)
	}
	if w.StepYears < w.OutOfSampleYears {
		return fmt.Errorf("walk-forward step %d shorter than test window %d: windows would overlap", w.StepYears, w.OutOfSampleYears)
	}
	return nil
}

// Run evaluates strat on each test window of f. The frame's signals should be
// computed on the full history. Test windows span whole years
// [start+in, start+in+out-1] and advance while start+in+out <= last year.
func (w WalkForward) Run(f *model.Frame, strat strategy.Strategy, opts backtest.Options) (*WalkForwardResult, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	if f.Len() == 0 {
		return nil, fmt.Errorf("walk-forward: empty frame: %w", model.ErrInsufficientSample)
	}
	first, last := f.Dates[0].Year(), f.Dates[f.Len()-1].Year()
	engine := backtest.New()

	out := &WalkForwardResult{}
	var tested []*backtest.Result
	for cur := first; cur+w.InSampleYears+w.OutOfSampleYears <= last; cur += w.StepYears {
		win := WalkWindow{
			InSampleStart: cur,
			InSampleEnd:   cur + w.InSampleYears - 1,
			TestStart:     cur + w.InSampleYears,
			TestEnd:       cur + w.InSampleYears + w.OutOfSampleYears - 1,
		}
		from := time.Date(win.TestStart, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(win.TestEnd, time.December, 31, 0, 0, 0, 0, time.UTC)

		res, err := engine.Run(f.Between(from, to), strat, opts)
		switch {
		case errors.Is(err, model.ErrInsufficientSample):
		case err != nil:
			return nil, fmt.Errorf("walk-forward %d-%d: %w", win.TestStart, win.TestEnd, err)
		default:
			win.Result = res
			tested = append(tested, res)
		}
		out.Windows = append(out.Windows, win)
	}

	if len(tested) == 0 {
		return nil, fmt.Errorf("walk-forward: no test window fits %d-%d: %w", first, last, model.ErrInsufficientSample)
	}
	stitched, err := backtest.Stitch(tested...)
	if err != nil {
		return nil, fmt.Errorf("walk-forward stitch: %w", err)
	}
	out.Stitched = stitched
	return out, nil
}
