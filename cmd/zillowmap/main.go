package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/zillow-map-service/internal/adapter/boundary"
	httpadapter "github.com/couchcryptid/zillow-map-service/internal/adapter/http"
	"github.com/couchcryptid/zillow-map-service/internal/adapter/zillow"
	"github.com/couchcryptid/zillow-map-service/internal/chart"
	"github.com/couchcryptid/zillow-map-service/internal/config"
	"github.com/couchcryptid/zillow-map-service/internal/dashboard"
	"github.com/couchcryptid/zillow-map-service/internal/observability"
	"github.com/couchcryptid/zillow-map-service/internal/pipeline"
)

func main() {
	// Local development reads a .env file when present.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(zillow.NewCSVLoader(cfg.DataFile), pipeline.NewTransformer(logger), logger, metrics, clock)
	table, err := p.Run(ctx)
	if err != nil {
		logger.Error("failed to load dataset", "path", cfg.DataFile, "error", err)
		os.Exit(1)
	}

	boundaries, err := boundary.Load(cfg.BoundaryFile)
	if err != nil {
		logger.Error("failed to load boundaries", "path", cfg.BoundaryFile, "error", err)
		os.Exit(1)
	}
	basemap, err := chart.NewBasemap(boundaries, chart.NewAlbersUSA())
	if err != nil {
		logger.Error("failed to project boundaries", "path", cfg.BoundaryFile, "error", err)
		os.Exit(1)
	}
	if skipped := basemap.Skipped(); len(skipped) > 0 {
		logger.Info("boundary features without a state code", "features", skipped)
	}

	svc, err := dashboard.NewService(table, basemap, chart.DefaultScale(), logger, metrics, clock)
	if err != nil {
		logger.Error("failed to start dashboard", "error", err)
		os.Exit(1)
	}

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.Debug, svc, p, logger)

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
