package models

// BacktestRequest represents the request body for running a backtest
type BacktestRequest struct {
	DataSource DataSourceConfig `json:"data_source" binding:"required"`
	Config     BacktestConfig   `json:"config"`
	Options    BacktestOptions  `json:"options,omitempty"`
}

// DataSourceConfig selects the price history: a CSV dataset under the data
// directory, or prices posted inline.
type DataSourceConfig struct {
	Type string `json:"type" binding:"required,oneof=csv inline"`

	// csv
	DatasetID       string `json:"dataset_id,omitempty"`
	RegimeDatasetID string `json:"regime_dataset_id,omitempty"`
	ColumnA         string `json:"column_a,omitempty" default:"SPYSIM"`
	ColumnB         string `json:"column_b,omitempty" default:"TLTSIM"`
	RegimeColumn    string `json:"regime_column,omitempty" default:"VIXSIM"`
	StartDate       string `json:"start_date,omitempty" binding:"omitempty,datetime=2006-01-02"` // YYYY-MM-DD
	EndDate         string `json:"end_date,omitempty" binding:"omitempty,datetime=2006-01-02"`

	Inline *InlineData `json:"inline,omitempty"`
}

// InlineData holds aligned price levels. Regime, when set, is aligned with Dates.
type InlineData struct {
	Dates   []string  `json:"dates" binding:"required,min=2"`
	PricesA []float64 `json:"prices_a" binding:"required,min=2"`
	PricesB []float64 `json:"prices_b" binding:"required,min=2"`
	Regime  []float64 `json:"regime,omitempty"`
}

// BacktestConfig contains signal and strategy configuration
type BacktestConfig struct {
	Params   ParamsConfig   `json:"params,omitempty"`
	Strategy StrategyConfig `json:"strategy,omitempty"`
	CostBps  float64        `json:"cost_bps,omitempty" binding:"gte=0"`
}

// ParamsConfig overrides signal parameters; zero fields keep the defaults.
type ParamsConfig struct {
	TargetWeight  float64 `json:"target_weight,omitempty"`
	DeltaMin      float64 `json:"delta_min,omitempty"`
	DeltaMax      float64 `json:"delta_max,omitempty"`
	DeltaStep     float64 `json:"delta_step,omitempty"`
	Normalization float64 `json:"normalization,omitempty"`
	Alpha         float64 `json:"alpha,omitempty"`
}

// StrategyConfig defines strategy and its parameters
type StrategyConfig struct {
	Name   string                 `json:"name,omitempty"` // default: "original"
	Params map[string]interface{} `json:"params,omitempty"`
}

// BacktestOptions contains optional backtest parameters
type BacktestOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// CompareBacktestRequest represents a request to compare multiple backtests
type CompareBacktestRequest struct {
	DataSource DataSourceConfig    `json:"data_source" binding:"required"`
	BaseConfig BacktestConfig      `json:"base_config"`
	Variations []BacktestVariation `json:"variations" binding:"required,min=1,dive"`
}

// BacktestVariation defines a variation to test
type BacktestVariation struct {
	Name   string         `json:"name" binding:"required"`
	Config BacktestConfig `json:"config"`
}
