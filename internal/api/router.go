// Package api wires the HTTP handlers into a gin router.
package api

import (
	"net/http"

	"rebalance-backtest/internal/api/handlers"
	"rebalance-backtest/internal/api/middleware"
	"rebalance-backtest/internal/data"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type Options struct {
	DataDir string
	Store   *data.ResultStore
	Log     zerolog.Logger
	CORS    cors.Options
}

func NewRouter(opts Options) *gin.Engine {
	if opts.Store == nil {
		opts.Store = data.NewResultStore(0)
	}

	router := gin.New()
	router.Use(middleware.CORS(opts.CORS))
	router.Use(middleware.Logger(opts.Log))
	router.Use(middleware.Metrics())
	router.Use(middleware.ErrorHandler(opts.Log))

	backtestHandler := handlers.NewBacktestHandler(opts.Store, opts.DataDir, opts.Log)
	strategyHandler := handlers.NewStrategyHandler()
	datasetHandler := handlers.NewDatasetHandler(opts.DataDir, opts.Log)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "stored_results": opts.Store.Len()})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/backtest", backtestHandler.RunBacktest)
		v1.GET("/backtest/:id/ledger", backtestHandler.GetLedger)
		v1.POST("/backtest/compare", backtestHandler.CompareBacktests)

		v1.GET("/strategies", strategyHandler.ListStrategies)
		v1.GET("/datasets", datasetHandler.ListDatasets)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": gin.H{"code": "NOT_FOUND", "message": "Not found"}})
	})
	return router
}
