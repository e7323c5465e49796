package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"rebalance-backtest/internal/analysis"
	"rebalance-backtest/internal/api/middleware"
	"rebalance-backtest/internal/api/models"
	"rebalance-backtest/internal/backtest"
	"rebalance-backtest/internal/config"
	"rebalance-backtest/internal/data"
	"rebalance-backtest/internal/model"
	"rebalance-backtest/internal/strategy"

	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BacktestHandler handles backtest-related requests
type BacktestHandler struct {
	store   *data.ResultStore
	dataDir string
	log     zerolog.Logger
}

// NewBacktestHandler creates a new backtest handler
func NewBacktestHandler(store *data.ResultStore, dataDir string, log zerolog.Logger) *BacktestHandler {
	return &BacktestHandler{store: store, dataDir: dataDir, log: log}
}

// inputs is the loaded market data for one request.
type inputs struct {
	series *model.ReturnSeries
	levels *model.LevelSeries
}

// RunBacktest handles POST /api/v1/backtest
func (h *BacktestHandler) RunBacktest(c *gin.Context) {
	var req models.BacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	if err := defaults.Set(&req); err != nil {
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	in, err := h.loadInputs(req.DataSource)
	if err != nil {
		dataError(c, err)
		return
	}

	cfg, err := h.buildConfig(req.Config)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_CONFIG", err)
		return
	}

	result, err := h.run(c.Request.Context(), in, cfg)
	if err != nil {
		runError(c, err)
		return
	}

	id := h.store.Put(result)
	h.log.Info().
		Str("id", id).
		Str("strategy", result.Strategy).
		Int("days", result.Stats.Days).
		Float64("cagr", result.Stats.CAGR).
		Msg("backtest completed")

	c.JSON(http.StatusOK, h.buildResponse(id, result, req.Options.IncludeLedger))
}

// GetLedger handles GET /api/v1/backtest/:id/ledger
// ?format=csv streams the ledger as CSV instead of JSON.
func (h *BacktestHandler) GetLedger(c *gin.Context) {
	id := c.Param("id")
	result, ok := h.store.Get(id)
	if !ok {
		abortWithError(c, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("no stored backtest with id %q", id))
		return
	}

	if c.Query("format") == "csv" {
		c.Header("Content-Type", "text/csv")
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".csv"))
		c.Status(http.StatusOK)
		if err := backtest.WriteLedger(c.Writer, result.Ledger); err != nil {
			h.log.Error().Err(err).Str("id", id).Msg("write ledger csv")
		}
		return
	}

	c.JSON(http.StatusOK, models.LedgerResponse{
		ID:     id,
		Count:  len(result.Ledger),
		Ledger: convertLedger(result.Ledger),
	})
}

// CompareBacktests handles POST /api/v1/backtest/compare
func (h *BacktestHandler) CompareBacktests(c *gin.Context) {
	var req models.CompareBacktestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "INVALID_REQUEST", err)
		return
	}
	if err := defaults.Set(&req); err != nil {
		abortWithError(c, http.StatusInternalServerError, "INTERNAL_ERROR", err)
		return
	}

	// Load data once
	in, err := h.loadInputs(req.DataSource)
	if err != nil {
		dataError(c, err)
		return
	}

	runs := make([]analysis.Named, 0, len(req.Variations))
	ids := make(map[*backtest.Result]string, len(req.Variations))
	var failed []models.FailedVariation

	for _, variation := range req.Variations {
		merged := mergeConfig(req.BaseConfig, variation.Config)
		cfg, err := h.buildConfig(merged)
		if err == nil {
			var result *backtest.Result
			result, err = h.run(c.Request.Context(), in, cfg)
			if err == nil {
				ids[result] = h.store.Put(result)
				runs = append(runs, analysis.Named{Name: variation.Name, Result: result})
				continue
			}
		}
		h.log.Warn().Err(err).Str("variation", variation.Name).Msg("variation skipped")
		failed = append(failed, models.FailedVariation{Name: variation.Name, Error: err.Error()})
	}

	ranked := analysis.RankBySharpe(runs)
	comparison := make([]models.ComparisonResult, 0, len(ranked))
	for i, r := range ranked {
		comparison = append(comparison, models.ComparisonResult{
			Rank:    i + 1,
			Name:    r.Name,
			ID:      ids[r.Result],
			Summary: buildSummary(r.Result),
		})
	}

	c.JSON(http.StatusOK, models.CompareBacktestResponse{
		Comparison: comparison,
		Failed:     failed,
	})
}

// Helper methods

func (h *BacktestHandler) loadInputs(ds models.DataSourceConfig) (*inputs, error) {
	start, err := optionalDate(ds.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := optionalDate(ds.EndDate)
	if err != nil {
		return nil, err
	}

	switch ds.Type {
	case "csv":
		path, err := data.DatasetPath(h.dataDir, ds.DatasetID)
		if err != nil {
			return nil, err
		}
		series, err := data.LoadReturnsCSV(path, data.LoadOptions{
			ColumnA: ds.ColumnA,
			ColumnB: ds.ColumnB,
			Start:   start,
			End:     end,
		})
		if err != nil {
			return nil, err
		}
		in := &inputs{series: series}
		if ds.RegimeDatasetID != "" {
			rpath, err := data.DatasetPath(h.dataDir, ds.RegimeDatasetID)
			if err != nil {
				return nil, err
			}
			if in.levels, err = data.LoadLevelsCSV(rpath, ds.RegimeColumn); err != nil {
				return nil, err
			}
		}
		return in, nil

	case "inline":
		if ds.Inline == nil {
			return nil, fmt.Errorf("inline data source needs an inline block: %w", model.ErrMissingInput)
		}
		series, err := data.ParsePrices(ds.Inline.Dates, ds.Inline.PricesA, ds.Inline.PricesB)
		if err != nil {
			return nil, err
		}
		in := &inputs{series: series.Between(start, end)}
		if len(ds.Inline.Regime) > 0 {
			if len(ds.Inline.Regime) != len(ds.Inline.Dates) {
				return nil, fmt.Errorf("inline regime has %d values for %d dates", len(ds.Inline.Regime), len(ds.Inline.Dates))
			}
			dates := make([]time.Time, len(ds.Inline.Dates))
			for i, s := range ds.Inline.Dates {
				if dates[i], err = data.ParseDate(s); err != nil {
					return nil, err
				}
			}
			if in.levels, err = model.NewLevelSeries("regime", dates, ds.Inline.Regime); err != nil {
				return nil, err
			}
		}
		return in, nil

	default:
		return nil, fmt.Errorf("unsupported data source type: %s", ds.Type)
	}
}

func (h *BacktestHandler) buildConfig(req models.BacktestConfig) (*config.Config, error) {
	cfg := config.Default()
	cfg.Params = config.MergeParams(cfg.Params, config.ParamsConfig(req.Params))
	cfg.Strategy = config.StrategyConfig{
		Name:   req.Strategy.Name,
		Params: req.Strategy.Params,
	}
	if cfg.Strategy.Name == "" {
		cfg.Strategy.Name = "original"
	}
	cfg.Backtest.CostBps = req.CostBps

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (h *BacktestHandler) run(ctx context.Context, in *inputs, cfg *config.Config) (*backtest.Result, error) {
	started := time.Now()
	result, err := h.evaluate(ctx, in, cfg)
	middleware.ObserveBacktest(cfg.Strategy.Name, err, time.Since(started))
	return result, err
}

func (h *BacktestHandler) evaluate(ctx context.Context, in *inputs, cfg *config.Config) (*backtest.Result, error) {
	strat, err := cfg.BuildStrategy()
	if err != nil {
		return nil, err
	}
	frame, _, err := analysis.BuildFrame(ctx, in.series, cfg.SignalParams())
	if err != nil {
		return nil, err
	}
	if strategy.NeedsRegime(cfg.Strategy.Name) {
		if in.levels == nil {
			return nil, fmt.Errorf("strategy %s needs regime data: %w", cfg.Strategy.Name, model.ErrMissingInput)
		}
		frame = frame.JoinRegime(in.levels)
	}
	return backtest.New().Run(frame, strat, backtest.Options{CostBps: cfg.Backtest.CostBps})
}

// mergeConfig overlays non-zero fields of override onto base.
func mergeConfig(base, override models.BacktestConfig) models.BacktestConfig {
	merged := base
	p := config.MergeParams(
		config.ParamsConfig(base.Params),
		config.ParamsConfig(override.Params),
	)
	merged.Params = models.ParamsConfig(p)
	if override.Strategy.Name != "" {
		merged.Strategy = override.Strategy
	}
	if override.CostBps != 0 {
		merged.CostBps = override.CostBps
	}
	return merged
}

func (h *BacktestHandler) buildResponse(id string, result *backtest.Result, includeLedger bool) models.BacktestResponse {
	response := models.BacktestResponse{
		ID:      id,
		Status:  "completed",
		Summary: buildSummary(result),
	}
	if includeLedger {
		response.Ledger = convertLedger(result.Ledger)
	}
	return response
}

func buildSummary(result *backtest.Result) models.BacktestSummary {
	start, end := result.Window()
	return models.BacktestSummary{
		Strategy:       result.Strategy,
		CostBps:        result.CostBps,
		TotalDays:      len(result.Ledger),
		BacktestWindow: models.TimeWindow{Start: start, End: end},
		HedgedShare:    result.HedgedShare(),
		StrategyStats:  convertStats(result.Stats),
		BenchmarkStats: convertStats(result.Benchmark),
	}
}

func convertStats(s backtest.Stats) models.Stats {
	return models.Stats{
		CAGR:            s.CAGR,
		Volatility:      s.Volatility,
		Sharpe:          s.Sharpe,
		MaxDrawdown:     s.MaxDrawdown,
		AnnualTurnover:  s.AnnualTurnover,
		FinalCumulative: s.FinalCumulative,
	}
}

func convertLedger(ledger []backtest.LedgerRow) []models.LedgerRow {
	result := make([]models.LedgerRow, len(ledger))
	for i, row := range ledger {
		var regime *float64
		if model.IsDefined(row.Regime) {
			v := row.Regime
			regime = &v
		}
		result[i] = models.LedgerRow{
			Index:           row.Index,
			Date:            row.Date.Format(model.DateLayout),
			ReturnA:         row.ReturnA,
			ReturnB:         row.ReturnB,
			Regime:          regime,
			PrevWeight:      row.PrevWeight,
			PrevHedged:      row.PrevHedged,
			Weight:          row.Weight,
			Hedged:          row.Hedged,
			Direction:       string(row.Direction),
			Exposure:        row.Exposure,
			Turnover:        row.Turnover,
			Cost:            row.Cost,
			StrategyReturn:  row.StrategyReturn,
			BenchmarkReturn: row.BenchmarkReturn,
			CumStrategy:     row.CumStrategy,
			CumBenchmark:    row.CumBenchmark,
		}
	}
	return result
}

func optionalDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return data.ParseDate(s)
}

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

func dataError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, os.ErrNotExist):
		abortWithError(c, http.StatusNotFound, "DATASET_NOT_FOUND", err)
	default:
		abortWithError(c, http.StatusBadRequest, "DATA_LOAD_ERROR", err)
	}
}

func runError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInsufficientSample):
		abortWithError(c, http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", err)
	case errors.Is(err, model.ErrMissingInput):
		abortWithError(c, http.StatusBadRequest, "MISSING_INPUT", err)
	default:
		abortWithError(c, http.StatusBadRequest, "BACKTEST_ERROR", err)
	}
}
