package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volcano-globe-api/internal/adapter/gvp"
	httpadapter "github.com/couchcryptid/volcano-globe-api/internal/adapter/http"
	"github.com/couchcryptid/volcano-globe-api/internal/catalog"
	"github.com/couchcryptid/volcano-globe-api/internal/config"
	"github.com/couchcryptid/volcano-globe-api/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	watchlists, err := cfg.Watchlists()
	if err != nil {
		logger.Error("failed to load watchlists", "error", err)
		os.Exit(1)
	}
	if cfg.WatchlistFile != "" {
		logger.Info("watchlists loaded from file", "path", cfg.WatchlistFile)
	}

	clock := clockwork.NewRealClock()
	client := gvp.NewClient(cfg.CatalogURL, cfg.EruptionURL, cfg.FetchTimeout, metrics, logger)
	eruptions := gvp.NewEruptionCache(client, cfg.EruptionTTL, clock, metrics, logger)
	aggregator := catalog.NewAggregator(client, eruptions, watchlists, cfg.CatalogTTL, clock, metrics, logger)
	svc := catalog.NewService(aggregator, eruptions, clock)

	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, cfg.EruptionTTL, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
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
