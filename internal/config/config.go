package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rebalance-backtest/internal/data"
	"rebalance-backtest/internal/signal"
	"rebalance-backtest/internal/strategy"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the on-disk configuration shape (YAML).
type Config struct {
	Data DataConfig `yaml:"data"`

	// Optional: load signal parameters from a separate YAML preset.
	// Fields set in Params override the preset.
	ParamsFile string       `yaml:"params_file"`
	Params     ParamsConfig `yaml:"params"`

	Strategy StrategyConfig `yaml:"strategy"`
	Backtest BacktestConfig `yaml:"backtest"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Output   OutputConfig   `yaml:"output"`
}

type DataConfig struct {
	ReturnsFile  string `yaml:"returns_file" default:"data/Return.csv" validate:"required"`
	RegimeFile   string `yaml:"regime_file" default:"data/vix.csv"`
	ColumnA      string `yaml:"column_a" default:"SPYSIM"`
	ColumnB      string `yaml:"column_b" default:"TLTSIM"`
	RegimeColumn string `yaml:"regime_column" default:"VIXSIM"`
	Start        string `yaml:"start" validate:"omitempty,datetime=2006-01-02"`
	End          string `yaml:"end" validate:"omitempty,datetime=2006-01-02"`
}

type ParamsConfig struct {
	TargetWeight  float64 `yaml:"target_weight" default:"0.6" validate:"gt=0,lt=1"`
	DeltaMin      float64 `yaml:"delta_min" validate:"gte=0"`
	DeltaMax      float64 `yaml:"delta_max" default:"0.025" validate:"gtefield=DeltaMin"`
	DeltaStep     float64 `yaml:"delta_step" default:"0.001" validate:"gt=0"`
	Normalization float64 `yaml:"normalization" default:"0.012" validate:"gt=0"`
	Alpha         float64 `yaml:"alpha" default:"0.6" validate:"gte=0,lte=1"`
}

type StrategyConfig struct {
	Name   string         `yaml:"name" default:"original" validate:"required"`
	Params map[string]any `yaml:"params"`
}

type BacktestConfig struct {
	CostBps float64 `yaml:"cost_bps" validate:"gte=0"`
}

type AnalysisConfig struct {
	VIXThresholds   []float64         `yaml:"vix_thresholds" default:"[15,20,25,30]" validate:"dive,gt=0"`
	VIXThreshold    float64           `yaml:"vix_threshold" default:"20" validate:"gt=0"`
	VIXScale        float64           `yaml:"vix_scale" default:"1000" validate:"gt=0"`
	CrisisThreshold float64           `yaml:"crisis_threshold" default:"25" validate:"gt=0"`
	CostGrid        []float64         `yaml:"cost_grid" default:"[0,1,2,5,10]" validate:"dive,gte=0"`
	RollingWindow   int               `yaml:"rolling_window" default:"252" validate:"gt=1"`
	MA              MAConfig          `yaml:"ma"`
	WalkForward     WalkForwardConfig `yaml:"walk_forward"`
	MonteCarlo      MonteCarloConfig  `yaml:"monte_carlo"`
	Periods         []PeriodConfig    `yaml:"periods" validate:"dive"`
}

type MAConfig struct {
	Window int     `yaml:"window" default:"200" validate:"gt=0"`
	Buffer float64 `yaml:"buffer" default:"0.02" validate:"gte=0"`
}

type WalkForwardConfig struct {
	InSampleYears    int `yaml:"in_sample_years" default:"5" validate:"gte=0"`
	OutOfSampleYears int `yaml:"out_of_sample_years" default:"2" validate:"gt=0"`
	StepYears        int `yaml:"step_years" default:"2" validate:"gt=0"`
}

type MonteCarloConfig struct {
	Simulations int    `yaml:"simulations" default:"1000" validate:"gt=0"`
	Horizons    []int  `yaml:"horizons" default:"[1,3,5,10,20]" validate:"min=1,dive,gt=0"`
	Seed        uint64 `yaml:"seed" default:"42"`
}

type PeriodConfig struct {
	Name  string `yaml:"name" validate:"required"`
	Start string `yaml:"start" validate:"required,datetime=2006-01-02"`
	End   string `yaml:"end" validate:"required,datetime=2006-01-02"`
}

type OutputConfig struct {
	Dir      string `yaml:"dir" default:"out"`
	NoLedger bool   `yaml:"no_ledger"`
	NoPlots  bool   `yaml:"no_plots"`
}

// DefaultPeriods are the named stress windows analyzed when none are configured.
var DefaultPeriods = []PeriodConfig{
	{Name: "Dot-Com Bust", Start: "2000-03-24", End: "2002-10-09"},
	{Name: "Global Financial Crisis", Start: "2007-10-09", End: "2009-03-09"},
}

var validate = validator.New()

// Default returns a config with every default applied.
func Default() *Config {
	var c Config
	_ = c.applyDefaults()
	return &c
}

func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads, merges and fills defaults, but does not validate.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	alpha := writtenAlpha(raw)
	// If params_file is set, load it and merge in any explicit overrides from c.Params.
	if c.ParamsFile != "" {
		paramsPath := c.ParamsFile
		if !filepath.IsAbs(paramsPath) {
			// Prefer interpreting relative paths as relative to the config file directory,
			// but fall back to the provided path (relative to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), paramsPath)
			if _, err := os.Stat(cand); err == nil {
				paramsPath = cand
			}
		}
		loaded, presetAlpha, err := loadParamsFile(paramsPath)
		if err != nil {
			return nil, err
		}
		c.Params = MergeParams(loaded, c.Params)
		if alpha == nil {
			alpha = presetAlpha
		}
	}
	if err := c.applyDefaults(); err != nil {
		return nil, err
	}
	// defaults.Set cannot tell alpha: 0 from a missing key.
	if alpha != nil {
		c.Params.Alpha = *alpha
	}
	return &c, nil
}

// writtenAlpha returns params.alpha when the document sets it, including 0.
func writtenAlpha(raw []byte) *float64 {
	var doc struct {
		Params struct {
			Alpha *float64 `yaml:"alpha"`
		} `yaml:"params"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil
	}
	return doc.Params.Alpha
}

func (c *Config) applyDefaults() error {
	if err := defaults.Set(c); err != nil {
		return fmt.Errorf("apply defaults: %w", err)
	}
	if len(c.Analysis.Periods) == 0 {
		c.Analysis.Periods = append([]PeriodConfig(nil), DefaultPeriods...)
	}
	return nil
}

// ApplyEnv overrides data locations from the environment.
func (c *Config) ApplyEnv() {
	if dir := os.Getenv("DATA_DIR"); dir != "" {
		if !filepath.IsAbs(c.Data.ReturnsFile) {
			c.Data.ReturnsFile = filepath.Join(dir, filepath.Base(c.Data.ReturnsFile))
		}
		if c.Data.RegimeFile != "" && !filepath.IsAbs(c.Data.RegimeFile) {
			c.Data.RegimeFile = filepath.Join(dir, filepath.Base(c.Data.RegimeFile))
		}
	}
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	if err := c.SignalParams().Validate(); err != nil {
		return fmt.Errorf("config invalid: %w", err)
	}
	return nil
}

// SignalParams converts the params block for the signal pipeline.
func (c *Config) SignalParams() signal.Params {
	return c.Params.ToSignalParams()
}

func (p ParamsConfig) ToSignalParams() signal.Params {
	return signal.Params{
		TargetWeight: p.TargetWeight,
		Deltas: signal.DeltaSweep{
			Min:  p.DeltaMin,
			Max:  p.DeltaMax,
			Step: p.DeltaStep,
		},
		Normalization: p.Normalization,
		Alpha:         p.Alpha,
	}
}

// LoadOptions converts the data block for the CSV loader.
func (c *Config) LoadOptions() (data.LoadOptions, error) {
	opts := data.LoadOptions{ColumnA: c.Data.ColumnA, ColumnB: c.Data.ColumnB}
	var err error
	if opts.Start, err = parseOptionalDate(c.Data.Start); err != nil {
		return opts, err
	}
	if opts.End, err = parseOptionalDate(c.Data.End); err != nil {
		return opts, err
	}
	return opts, nil
}

func (p PeriodConfig) Bounds() (time.Time, time.Time, error) {
	start, err := data.ParseDate(p.Start)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := data.ParseDate(p.End)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseOptionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return data.ParseDate(s)
}

type paramsFileWrapper struct {
	Params ParamsConfig `yaml:"params"`
}

func loadParamsFile(path string) (ParamsConfig, *float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ParamsConfig{}, nil, err
	}
	var w paramsFileWrapper
	if err := yaml.Unmarshal(raw, &w); err != nil {
		return ParamsConfig{}, nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return w.Params, writtenAlpha(raw), nil
}

// MergeParams overlays non-zero fields from override onto base.
// This is used when loading a params file and then applying overrides from the config or request.
func MergeParams(base, override ParamsConfig) ParamsConfig {
	out := base
	if override.TargetWeight != 0 {
		out.TargetWeight = override.TargetWeight
	}
	if override.DeltaMin != 0 {
		out.DeltaMin = override.DeltaMin
	}
	if override.DeltaMax != 0 {
		out.DeltaMax = override.DeltaMax
	}
	if override.DeltaStep != 0 {
		out.DeltaStep = override.DeltaStep
	}
	if override.Normalization != 0 {
		out.Normalization = override.Normalization
	}
	// Zero alpha cannot be told apart from unset here; YAML loading restores
	// an explicit alpha: 0 after defaults are applied.
	if override.Alpha != 0 {
		out.Alpha = override.Alpha
	}
	return out
}

// BuildStrategy resolves the configured strategy. The blend weight of the
// original strategy defaults to params.alpha.
func (c *Config) BuildStrategy() (strategy.Strategy, error) {
	params := make(map[string]interface{}, len(c.Strategy.Params)+1)
	for k, v := range c.Strategy.Params {
		params[k] = v
	}
	if _, ok := params["alpha"]; !ok {
		params["alpha"] = c.Params.Alpha
	}
	if _, ok := params["scale"]; !ok {
		params["scale"] = c.Analysis.VIXScale
	}
	return strategy.ByName(c.Strategy.Name, params)
}
