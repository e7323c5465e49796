package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"rebalance-backtest/internal/api"
	"rebalance-backtest/internal/api/middleware"
	"rebalance-backtest/internal/data"
	"rebalance-backtest/internal/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	log, err := logger.New(logger.FromEnv(logger.DefaultConfig()))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Get configuration from environment
	port := os.Getenv("API_PORT")
	if port == "" {
		port = "8080"
	}
	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	dataDir := data.DefaultDataDir()
	if info, err := os.Stat(dataDir); err != nil || !info.IsDir() {
		log.Warn().Str("data_dir", dataDir).Msg("data directory not found; only inline backtests will work")
	} else {
		log.Info().Str("data_dir", dataDir).Msg("serving datasets")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := data.NewResultStore(time.Hour)
	go store.Run(ctx, 5*time.Minute)

	router := api.NewRouter(api.Options{
		DataDir: dataDir,
		Store:   store,
		Log:     log,
		CORS:    middleware.CORSOptions(),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
