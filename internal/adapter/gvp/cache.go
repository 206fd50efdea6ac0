package gvp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volcano-globe-api/internal/domain"
	"github.com/couchcryptid/volcano-globe-api/internal/observability"
)

// EruptionFetcher is the slice of the GVP client the eruption cache needs.
type EruptionFetcher interface {
	FetchEruptions(ctx context.Context) ([]domain.ActiveEruption, error)
}

// EruptionCache serves the volcano-id → active-eruption snapshot behind a TTL
// window, refreshing lazily on read. Failed refreshes fail open: the previous
// snapshot is served regardless of age, or an empty map when none exists.
// Reads never return an error.
type EruptionCache struct {
	fetcher EruptionFetcher
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
	logger  *slog.Logger

	mu        sync.Mutex
	snapshot  map[string]domain.ActiveEruption
	fetchedAt time.Time
}

// NewEruptionCache creates an eruption cache with the given TTL. The clock is
// injected so tests can advance time without sleeping.
func NewEruptionCache(fetcher EruptionFetcher, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics, logger *slog.Logger) *EruptionCache {
	return &EruptionCache{
		fetcher: fetcher,
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
		logger:  logger,
	}
}

// ActiveEruptions returns the current snapshot, refetching when the cached one
// has aged past the TTL. Concurrent callers past expiry may each issue a
// fetch; the cache slot takes the last successful write. That race is
// accepted: fetches are idempotent and every outcome is a usable snapshot.
// The returned map is the caller's to keep; it never aliases cache state.
func (c *EruptionCache) ActiveEruptions(ctx context.Context) map[string]domain.ActiveEruption {
	if snap, ok := c.cached(false); ok {
		c.metrics.CacheReads.WithLabelValues("eruptions", "hit").Inc()
		return snap
	}
	c.metrics.CacheReads.WithLabelValues("eruptions", "miss").Inc()

	records, err := c.fetcher.FetchEruptions(ctx)
	if err != nil {
		c.logger.Warn("eruption feed refresh failed", "error", err)
		if snap, ok := c.cached(true); ok {
			c.metrics.CacheReads.WithLabelValues("eruptions", "stale").Inc()
			return snap
		}
		return map[string]domain.ActiveEruption{}
	}

	snap := buildSnapshot(records)
	c.store(snap)
	c.metrics.ActiveEruptions.Set(float64(len(snap)))
	c.logger.Info("eruption snapshot refreshed", "continuing", len(snap))
	return copySnapshot(snap)
}

// Invalidate clears the snapshot unconditionally; the next read must refetch.
func (c *EruptionCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
	c.fetchedAt = time.Time{}
}

// cached returns a copy of the snapshot when one exists and either it is
// still fresh or allowStale is set.
func (c *EruptionCache) cached(allowStale bool) (map[string]domain.ActiveEruption, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return nil, false
	}
	if !allowStale && c.clock.Since(c.fetchedAt) >= c.ttl {
		return nil, false
	}
	return copySnapshot(c.snapshot), true
}

func (c *EruptionCache) store(snap map[string]domain.ActiveEruption) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = snap
	c.fetchedAt = c.clock.Now()
}

// buildSnapshot keys continuing eruptions by volcano id. When the feed carries
// multiple continuing records for one volcano, the first encountered wins: the
// feed orders a volcano's eruptions newest-first, so the first record is the
// current episode.
func buildSnapshot(records []domain.ActiveEruption) map[string]domain.ActiveEruption {
	snap := make(map[string]domain.ActiveEruption, len(records))
	for _, r := range records {
		if _, exists := snap[r.VolcanoID]; exists {
			continue
		}
		snap[r.VolcanoID] = r
	}
	return snap
}

func copySnapshot(snap map[string]domain.ActiveEruption) map[string]domain.ActiveEruption {
	out := make(map[string]domain.ActiveEruption, len(snap))
	for k, v := range snap {
		out[k] = v
	}
	return out
}
