// Package catalog produces the authoritative, status-annotated, sorted
// volcano list and exposes the query facade used by request handlers.
package catalog

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volcano-globe-api/internal/domain"
	"github.com/couchcryptid/volcano-globe-api/internal/observability"
)

// CatalogFetcher fetches the full volcano catalog from the upstream service.
type CatalogFetcher interface {
	FetchCatalog(ctx context.Context) ([]domain.Volcano, error)
}

// EruptionProvider yields the current continuing-eruption snapshot. It never
// fails; degraded reads produce a stale or empty snapshot.
type EruptionProvider interface {
	ActiveEruptions(ctx context.Context) map[string]domain.ActiveEruption
}

// Aggregator merges the volcano catalog with eruption-derived status and the
// configured watchlists, and caches the sorted result behind a TTL window.
type Aggregator struct {
	catalog    CatalogFetcher
	eruptions  EruptionProvider
	watchlists domain.Watchlists
	ttl        time.Duration
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger

	mu        sync.Mutex
	snapshot  []domain.Volcano
	fetchedAt time.Time
}

// NewAggregator creates a catalog aggregator. The clock is injected so tests
// can advance time without sleeping.
func NewAggregator(catalog CatalogFetcher, eruptions EruptionProvider, watchlists domain.Watchlists, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		catalog:    catalog,
		eruptions:  eruptions,
		watchlists: watchlists,
		ttl:        ttl,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Snapshot returns the merged catalog. A cached snapshot younger than the TTL
// is served without I/O. On a miss, the eruption snapshot is read first (it
// feeds status derivation), then the catalog is fetched, statuses derived,
// and the sorted result cached. On any fetch failure the fixed fallback
// dataset is returned together with the error, so the HTTP boundary can
// signal degradation while still serving usable data; the failure path
// deliberately prefers the fallback over a stale cache, because a stale
// snapshot carries hours-old statuses with nothing marking them as such.
// The returned slice never aliases cache state.
func (a *Aggregator) Snapshot(ctx context.Context) (domain.CatalogSnapshot, error) {
	if snap, ok := a.cached(); ok {
		a.metrics.CacheReads.WithLabelValues("catalog", "hit").Inc()
		return snap, nil
	}
	a.metrics.CacheReads.WithLabelValues("catalog", "miss").Inc()

	erupting := a.eruptions.ActiveEruptions(ctx)

	volcanoes, err := a.catalog.FetchCatalog(ctx)
	if err != nil {
		a.logger.Error("catalog fetch failed, serving fallback", "error", err)
		a.metrics.FallbackServed.Inc()
		return domain.CatalogSnapshot{
			Volcanoes: domain.FallbackVolcanoes(),
			FetchedAt: a.clock.Now(),
		}, err
	}

	for i := range volcanoes {
		volcanoes[i].Status = domain.DeriveStatus(volcanoes[i].ID, erupting, a.watchlists)
	}
	domain.SortVolcanoes(volcanoes)

	fetchedAt := a.store(volcanoes)
	a.metrics.CatalogSize.Set(float64(len(volcanoes)))
	a.logger.Info("catalog refreshed", "volcanoes", len(volcanoes), "erupting", len(erupting))

	return domain.CatalogSnapshot{
		Volcanoes: slices.Clone(volcanoes),
		FetchedAt: fetchedAt,
	}, nil
}

func (a *Aggregator) cached() (domain.CatalogSnapshot, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.snapshot == nil || a.clock.Since(a.fetchedAt) >= a.ttl {
		return domain.CatalogSnapshot{}, false
	}
	return domain.CatalogSnapshot{
		Volcanoes: slices.Clone(a.snapshot),
		FetchedAt: a.fetchedAt,
	}, true
}

func (a *Aggregator) store(volcanoes []domain.Volcano) time.Time {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snapshot = volcanoes
	a.fetchedAt = a.clock.Now()
	return a.fetchedAt
}
