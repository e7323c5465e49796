package models

import "time"

// BacktestResponse represents the response from a backtest run
type BacktestResponse struct {
	ID      string          `json:"id,omitempty"`
	Status  string          `json:"status"`
	Summary BacktestSummary `json:"summary"`
	Ledger  []LedgerRow     `json:"ledger,omitempty"`
}

// BacktestSummary contains aggregated backtest results
type BacktestSummary struct {
	Strategy       string     `json:"strategy"`
	CostBps        float64    `json:"cost_bps"`
	TotalDays      int        `json:"total_days"`
	BacktestWindow TimeWindow `json:"backtest_window"`
	HedgedShare    float64    `json:"hedged_share"`
	StrategyStats  Stats      `json:"strategy_stats"`
	BenchmarkStats Stats      `json:"benchmark_stats"`
}

// Stats mirrors backtest.Stats
type Stats struct {
	CAGR            float64 `json:"cagr"`
	Volatility      float64 `json:"volatility"`
	Sharpe          float64 `json:"sharpe"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	AnnualTurnover  float64 `json:"annual_turnover"`
	FinalCumulative float64 `json:"final_cumulative"`
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// LedgerRow represents one day in the backtest ledger. Regime is null when
// no regime series was joined.
type LedgerRow struct {
	Index           int      `json:"index"`
	Date            string   `json:"date"`
	ReturnA         float64  `json:"return_a"`
	ReturnB         float64  `json:"return_b"`
	Regime          *float64 `json:"regime"`
	PrevWeight      float64  `json:"prev_weight"`
	PrevHedged      bool     `json:"prev_hedged"`
	Weight          float64  `json:"weight"`
	Hedged          bool     `json:"hedged"`
	Direction       string   `json:"direction"` // "LONG", "FLAT", "SHORT"
	Exposure        float64  `json:"exposure"`
	Turnover        float64  `json:"turnover"`
	Cost            float64  `json:"cost"`
	StrategyReturn  float64  `json:"strategy_return"`
	BenchmarkReturn float64  `json:"benchmark_return"`
	CumStrategy     float64  `json:"cum_strategy"`
	CumBenchmark    float64  `json:"cum_benchmark"`
}

// LedgerResponse is returned by the stored-ledger endpoint
type LedgerResponse struct {
	ID     string      `json:"id"`
	Count  int         `json:"count"`
	Ledger []LedgerRow `json:"ledger"`
}

// CompareBacktestResponse represents the response from a comparison
type CompareBacktestResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
	Failed     []FailedVariation  `json:"failed,omitempty"`
}

// ComparisonResult contains results for one variation, ranked by Sharpe
type ComparisonResult struct {
	Rank    int             `json:"rank"`
	Name    string          `json:"name"`
	ID      string          `json:"id"`
	Summary BacktestSummary `json:"summary"`
}

// FailedVariation names a variation that could not be run
type FailedVariation struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// StrategyInfo represents information about a strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	NeedsRegime bool            `json:"needs_regime"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// DatasetInfo represents a CSV file under the data directory
type DatasetInfo struct {
	ID      string   `json:"id"`
	File    string   `json:"file"`
	Kind    string   `json:"kind"`
	Columns []string `json:"columns"`
	Error   string   `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
