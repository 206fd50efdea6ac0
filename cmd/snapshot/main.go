// Command snapshot performs one full catalog build with the same internals as
// the server and writes the merged, sorted volcano list as JSON. Useful for
// inspecting upstream data offline and for sanity-checking watchlist files.
//
// Usage:
//
//	snapshot [-o volcanoes.json] [-timeout 60s]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volcano-globe-api/internal/adapter/gvp"
	"github.com/couchcryptid/volcano-globe-api/internal/catalog"
	"github.com/couchcryptid/volcano-globe-api/internal/config"
	"github.com/couchcryptid/volcano-globe-api/internal/domain"
	"github.com/couchcryptid/volcano-globe-api/internal/observability"
)

type output struct {
	Volcanoes     []domain.Volcano `json:"volcanoes"`
	LastUpdated   string           `json:"lastUpdated"`
	TotalCount    int              `json:"totalCount"`
	EruptingCount int              `json:"eruptingCount"`
}

func main() {
	outPath := flag.String("o", "", "write JSON to this file instead of stdout")
	timeout := flag.Duration("timeout", 60*time.Second, "overall deadline for both upstream fetches")
	flag.Parse()

	// Logs go to stderr so stdout stays valid JSON.
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	watchlists, err := cfg.Watchlists()
	if err != nil {
		logger.Error("failed to load watchlists", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()
	client := gvp.NewClient(cfg.CatalogURL, cfg.EruptionURL, cfg.FetchTimeout, metrics, logger)
	eruptions := gvp.NewEruptionCache(client, cfg.EruptionTTL, clock, metrics, logger)
	aggregator := catalog.NewAggregator(client, eruptions, watchlists, cfg.CatalogTTL, clock, metrics, logger)
	svc := catalog.NewService(aggregator, eruptions, clock)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	snap, snapErr := svc.Volcanoes(ctx)
	if snapErr != nil {
		logger.Error("catalog fetch failed; output is the fallback dataset", "error", snapErr)
	}
	summary := svc.EruptionSummary(ctx)

	out := output{
		Volcanoes:     snap.Volcanoes,
		LastUpdated:   snap.FetchedAt.UTC().Format(time.RFC3339),
		TotalCount:    len(snap.Volcanoes),
		EruptingCount: summary.Count,
	}

	dst := os.Stdout
	if *outPath != "" {
		f, err := os.Create(*outPath)
		if err != nil {
			logger.Error("failed to create output file", "path", *outPath, "error", err)
			os.Exit(1)
		}
		defer f.Close()
		dst = f
	}

	enc := json.NewEncoder(dst)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		logger.Error("failed to write output", "error", err)
		os.Exit(1)
	}

	logger.Info("snapshot written", "volcanoes", out.TotalCount, "erupting", out.EruptingCount)
	if snapErr != nil {
		os.Exit(1)
	}
}
