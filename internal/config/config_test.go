package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rebalance-backtest/internal/signal"
	"rebalance-backtest/internal/strategy"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestDefaultMatchesSignalDefaults(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, signal.DefaultParams(), c.SignalParams())
	assert.Equal(t, "original", c.Strategy.Name)
	assert.Equal(t, []float64{0, 1, 2, 5, 10}, c.Analysis.CostGrid)
	assert.Equal(t, []int{1, 3, 5, 10, 20}, c.Analysis.MonteCarlo.Horizons)
	assert.Equal(t, 5, c.Analysis.WalkForward.InSampleYears)
	assert.Equal(t, 200, c.Analysis.MA.Window)
	assert.Len(t, c.Analysis.Periods, 2)
}

func TestLoadWithParamsFile(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "paper.yaml", `
params:
  target_weight: 0.7
  normalization: 0.01
  alpha: 0.5
`)
	p := write(t, dir, "cfg.yaml", `
data:
  returns_file: data/Return.csv
  start: "1997-09-10"
params_file: paper.yaml
params:
  alpha: 0.8
strategy:
  name: vix
  params:
    threshold: 25
backtest:
  cost_bps: 2
`)
	c, err := Load(p)
	require.NoError(t, err)

	sp := c.SignalParams()
	assert.Equal(t, 0.7, sp.TargetWeight)
	assert.Equal(t, 0.01, sp.Normalization)
	assert.Equal(t, 0.8, sp.Alpha, "config overrides the preset")
	assert.Equal(t, 0.025, sp.Deltas.Max, "unset fields take defaults")
	assert.Equal(t, "vix", c.Strategy.Name)
	assert.Equal(t, 25, c.Strategy.Params["threshold"])
	assert.Equal(t, 2.0, c.Backtest.CostBps)

	opts, err := c.LoadOptions()
	require.NoError(t, err)
	assert.Equal(t, time.Date(1997, 9, 10, 0, 0, 0, 0, time.UTC), opts.Start)
	assert.True(t, opts.End.IsZero())
}

func TestLoadKeepsExplicitZeroAlpha(t *testing.T) {
	dir := t.TempDir()

	p := write(t, dir, "zero.yaml", `
params:
  alpha: 0
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Params.Alpha)
	assert.Equal(t, 0.6, c.Params.TargetWeight)
	s, err := c.BuildStrategy()
	require.NoError(t, err)
	assert.Equal(t, 0.0, s.(*strategy.Blend).Alpha)

	// Unset alpha still takes the default.
	p = write(t, dir, "unset.yaml", `
params:
  target_weight: 0.7
`)
	c, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, 0.6, c.Params.Alpha)

	// A preset with alpha 0 applies unless the config sets its own.
	write(t, dir, "preset.yaml", `
params:
  alpha: 0
`)
	p = write(t, dir, "from_preset.yaml", `params_file: preset.yaml`)
	c, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, 0.0, c.Params.Alpha)

	p = write(t, dir, "override.yaml", `
params_file: preset.yaml
params:
  alpha: 0.3
`)
	c, err = Load(p)
	require.NoError(t, err)
	assert.Equal(t, 0.3, c.Params.Alpha)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()

	p := write(t, dir, "bad.yaml", `
params:
  target_weight: 1.5
`)
	_, err := Load(p)
	assert.Error(t, err)

	p = write(t, dir, "date.yaml", `
data:
  start: "10/09/1997x"
`)
	_, err = Load(p)
	assert.Error(t, err)

	p = write(t, dir, "missing.yaml", `params_file: nope.yaml`)
	_, err = Load(p)
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "absent.yaml"))
	assert.Error(t, err)
}

func TestMergeParams(t *testing.T) {
	base := ParamsConfig{TargetWeight: 0.6, Normalization: 0.012, Alpha: 0.6}
	out := MergeParams(base, ParamsConfig{Alpha: 0.4})
	assert.Equal(t, 0.4, out.Alpha)
	assert.Equal(t, 0.012, out.Normalization)
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("DATA_DIR", "/srv/data")
	c := Default()
	c.ApplyEnv()
	assert.Equal(t, filepath.Join("/srv/data", "Return.csv"), c.Data.ReturnsFile)
	assert.Equal(t, filepath.Join("/srv/data", "vix.csv"), c.Data.RegimeFile)
}

func TestPeriodBounds(t *testing.T) {
	start, end, err := DefaultPeriods[1].Bounds()
	require.NoError(t, err)
	assert.Equal(t, 2007, start.Year())
	assert.Equal(t, time.March, end.Month())
}

func TestBuildStrategy(t *testing.T) {
	c := Default()
	c.Params.Alpha = 0.7
	s, err := c.BuildStrategy()
	require.NoError(t, err)
	require.IsType(t, &strategy.Blend{}, s)
	assert.Equal(t, 0.7, s.(*strategy.Blend).Alpha)

	c.Strategy = StrategyConfig{Name: "vix", Params: map[string]any{"threshold": 25}}
	s, err = c.BuildStrategy()
	require.NoError(t, err)
	assert.Equal(t, "vix>25", s.Name())
	assert.Equal(t, 1000.0, s.(*strategy.VIXFilter).Scale)

	c.Strategy = StrategyConfig{Name: "bogus"}
	_, err = c.BuildStrategy()
	assert.Error(t, err)
}
