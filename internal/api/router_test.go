package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"rebalance-backtest/internal/api/models"
	"rebalance-backtest/internal/data"
	"rebalance-backtest/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	router *gin.Engine
	store  *data.ResultStore
	series *model.ReturnSeries
	dir    string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	opts := data.DefaultSyntheticOptions()
	opts.Days = 300
	series, err := data.Synthetic(opts)
	require.NoError(t, err)

	dir := t.TempDir()
	levels := data.SyntheticLevels(series.Dates(), 7, 1000)
	var ret, vix strings.Builder
	ret.WriteString("Date,SPYSIM,TLTSIM\n")
	vix.WriteString("Date,VIXSIM\n")
	for i, o := range series.Observations {
		fmt.Fprintf(&ret, "%s,%.6f,%.6f\n", o.Date.Format(model.DateLayout), o.PriceA, o.PriceB)
		fmt.Fprintf(&vix, "%s,%.2f\n", o.Date.Format(model.DateLayout), levels.Values[i])
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Return.csv"), []byte(ret.String()), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vix.csv"), []byte(vix.String()), 0o644))

	store := data.NewResultStore(0)
	router := NewRouter(Options{DataDir: dir, Store: store, Log: zerolog.Nop()})
	return &fixture{router: router, store: store, series: series, dir: dir}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func (f *fixture) inline() *models.InlineData {
	in := &models.InlineData{}
	for _, o := range f.series.Observations {
		in.Dates = append(in.Dates, o.Date.Format(model.DateLayout))
		in.PricesA = append(in.PricesA, o.PriceA)
		in.PricesB = append(in.PricesB, o.PriceB)
	}
	return in
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestListStrategies(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/strategies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Strategies []models.StrategyInfo `json:"strategies"`
	}](t, w)
	require.Len(t, body.Strategies, 5)
	assert.Equal(t, "original", body.Strategies[0].Name)
}

func TestListDatasets(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[struct {
		Datasets []models.DatasetInfo `json:"datasets"`
		Count    int                  `json:"count"`
	}](t, w)
	assert.Equal(t, 2, body.Count)
	assert.Equal(t, "returns", body.Datasets[0].Kind)
	assert.Equal(t, "levels", body.Datasets[1].Kind)
}

func TestListDatasetsWithUnreadableFile(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, os.WriteFile(filepath.Join(f.dir, "scratch.csv"), nil, 0o644))

	w := f.do(t, http.MethodGet, "/api/v1/datasets", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[struct {
		Datasets []models.DatasetInfo `json:"datasets"`
		Count    int                  `json:"count"`
	}](t, w)
	require.Equal(t, 3, body.Count)
	assert.Equal(t, "Return", body.Datasets[0].ID)
	assert.Equal(t, "returns", body.Datasets[0].Kind)
	assert.Equal(t, "scratch", body.Datasets[1].ID)
	assert.Equal(t, "unknown", body.Datasets[1].Kind)
	assert.NotEmpty(t, body.Datasets[1].Error)
	assert.Equal(t, "levels", body.Datasets[2].Kind)
}

func TestRunBacktestInlineAndFetchLedger(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/backtest", models.BacktestRequest{
		DataSource: models.DataSourceConfig{Type: "inline", Inline: f.inline()},
		Config:     models.BacktestConfig{CostBps: 1},
		Options:    models.BacktestOptions{IncludeLedger: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[models.BacktestResponse](t, w)
	assert.Equal(t, "completed", resp.Status)
	assert.Equal(t, "original", resp.Summary.Strategy)
	assert.Equal(t, 1.0, resp.Summary.CostBps)
	require.NotEmpty(t, resp.Ledger)
	assert.Len(t, resp.Ledger, resp.Summary.TotalDays)
	assert.Nil(t, resp.Ledger[0].Regime)
	assert.Equal(t, 1, f.store.Len())

	w = f.do(t, http.MethodGet, "/api/v1/backtest/"+resp.ID+"/ledger", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ledger := decode[models.LedgerResponse](t, w)
	assert.Equal(t, resp.Summary.TotalDays, ledger.Count)

	w = f.do(t, http.MethodGet, "/api/v1/backtest/"+resp.ID+"/ledger?format=csv", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	assert.True(t, strings.HasPrefix(lines[0], "index,date,"))
	assert.Len(t, lines, resp.Summary.TotalDays+1)
}

func TestRunBacktestCSVWithRegime(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/backtest", models.BacktestRequest{
		DataSource: models.DataSourceConfig{Type: "csv", DatasetID: "Return", RegimeDatasetID: "vix"},
		Config: models.BacktestConfig{
			Strategy: models.StrategyConfig{Name: "vix", Params: map[string]interface{}{"threshold": 18}},
		},
		Options: models.BacktestOptions{IncludeLedger: true},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.BacktestResponse](t, w)
	assert.Equal(t, "vix>18", resp.Summary.Strategy)
	require.NotNil(t, resp.Ledger[0].Regime)
}

func TestRunBacktestErrors(t *testing.T) {
	f := newFixture(t)

	w := f.do(t, http.MethodPost, "/api/v1/backtest", map[string]interface{}{"data_source": map[string]string{"type": "ftp"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_REQUEST", decode[models.ErrorResponse](t, w).Error.Code)

	w = f.do(t, http.MethodPost, "/api/v1/backtest", models.BacktestRequest{
		DataSource: models.DataSourceConfig{Type: "csv", DatasetID: "missing"},
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "DATASET_NOT_FOUND", decode[models.ErrorResponse](t, w).Error.Code)

	w = f.do(t, http.MethodPost, "/api/v1/backtest", models.BacktestRequest{
		DataSource: models.DataSourceConfig{Type: "inline", Inline: f.inline()},
		Config:     models.BacktestConfig{Strategy: models.StrategyConfig{Name: "vix"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "MISSING_INPUT", decode[models.ErrorResponse](t, w).Error.Code)

	w = f.do(t, http.MethodPost, "/api/v1/backtest", models.BacktestRequest{
		DataSource: models.DataSourceConfig{Type: "inline", Inline: f.inline()},
		Config:     models.BacktestConfig{Params: models.ParamsConfig{TargetWeight: 2}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_CONFIG", decode[models.ErrorResponse](t, w).Error.Code)

	w = f.do(t, http.MethodGet, "/api/v1/backtest/not-a-uuid/ledger", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCompareBacktests(t *testing.T) {
	f := newFixture(t)
	w := f.do(t, http.MethodPost, "/api/v1/backtest/compare", models.CompareBacktestRequest{
		DataSource: models.DataSourceConfig{Type: "csv", DatasetID: "Return"},
		BaseConfig: models.BacktestConfig{CostBps: 1},
		Variations: []models.BacktestVariation{
			{Name: "base"},
			{Name: "retail", Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "retail"}}},
			{Name: "threshold", Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "threshold"}}},
			{Name: "bogus", Config: models.BacktestConfig{Strategy: models.StrategyConfig{Name: "bogus"}}},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[models.CompareBacktestResponse](t, w)
	require.Len(t, resp.Comparison, 3)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "bogus", resp.Failed[0].Name)

	for i, r := range resp.Comparison {
		assert.Equal(t, i+1, r.Rank)
		assert.NotEmpty(t, r.ID)
		assert.Equal(t, 1.0, r.Summary.CostBps)
		if i > 0 {
			assert.GreaterOrEqual(t, resp.Comparison[i-1].Summary.StrategyStats.Sharpe, r.Summary.StrategyStats.Sharpe)
		}
	}
	assert.Equal(t, 3, f.store.Len())
}

func TestCORSPreflight(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/backtest", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/v1/backtest", models.BacktestRequest{
		DataSource: models.DataSourceConfig{Type: "inline", Inline: f.inline()},
	})
	w := f.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "backtest_runs_total")
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestPanicRecovery(t *testing.T) {
	f := newFixture(t)
	f.router.GET("/boom", func(c *gin.Context) { panic("boom") })
	w := f.do(t, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decode[models.ErrorResponse](t, w)
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "boom", resp.Error.Message)
}
