package analysis

import (
	"fmt"
	"time"

	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/model"

	"github.com/montanaflynn/stats"
)

// RollingRegression holds trailing OLS fits of strategy on benchmark returns.
// Alpha is the intercept annualized by 252. The first Window-1 points, and
// windows with a constant benchmark, are undefined.
type RollingRegression struct {
	Window int
	Dates  []time.Time
	Alpha  []float64
	Beta   []float64
}

func RollingAlphaBeta(res *backtest.Result, window int) (*RollingRegression, error) {
	if window < 2 {
		return nil, fmt.Errorf("rolling window must be at least 2, got %d", window)
	}
	y := res.StrategyReturns()
	x := res.BenchmarkReturns()
	n := len(y)

	out := &RollingRegression{
		Window: window,
		Dates:  res.Dates(),
		Alpha:  make([]float64, n),
		Beta:   make([]float64, n),
	}
	for i := 0; i < n; i++ {
		out.Alpha[i], out.Beta[i] = model.Undefined(), model.Undefined()
		if i < window-1 {
			continue
		}
		alpha, beta, ok := ols(x[i-window+1:i+1], y[i-window+1:i+1])
		if !ok {
			continue
		}
		out.Alpha[i] = alpha * backtest.TradingDays
		out.Beta[i] = beta
	}
	return out, nil
}

// ols fits y = alpha + beta*x.
func ols(x, y []float64) (alpha, beta float64, ok bool) {
	varX, err := stats.SampleVariance(x)
	if err != nil || varX == 0 {
		return 0, 0, false
	}
	cov, err := stats.Covariance(x, y)
	if err != nil {
		return 0, 0, false
	}
	mx, _ := stats.Mean(x)
	my, _ := stats.Mean(y)
	beta = cov / varX
	return my - beta*mx, beta, true
}
