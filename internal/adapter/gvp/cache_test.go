package gvp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/volcano-globe-api/internal/domain"
	"github.com/couchcryptid/volcano-globe-api/internal/observability"
)

// --- mock fetcher ---

type fakeFetcher struct {
	calls   int
	records []domain.ActiveEruption
	err     error
}

func (f *fakeFetcher) FetchEruptions(_ context.Context) ([]domain.ActiveEruption, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

func newTestCache(fetcher EruptionFetcher, clock clockwork.Clock) *EruptionCache {
	return NewEruptionCache(fetcher, 30*time.Minute, clock,
		observability.NewMetricsForTesting(),
		slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func kilaueaRecord() domain.ActiveEruption {
	return domain.ActiveEruption{VolcanoID: "332010", VolcanoName: "Kilauea", StartDate: "2023-09-10"}
}

// --- tests ---

func TestEruptionCache_FreshHitSkipsFetch(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.ActiveEruption{kilaueaRecord()}}
	clock := clockwork.NewFakeClock()
	cache := newTestCache(fetcher, clock)

	first := cache.ActiveEruptions(context.Background())
	require.Len(t, first, 1)

	clock.Advance(29 * time.Minute)
	second := cache.ActiveEruptions(context.Background())

	assert.Equal(t, first, second)
	assert.Equal(t, 1, fetcher.calls, "fresh snapshot must be served without I/O")
}

func TestEruptionCache_TTLExpiryRefetches(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.ActiveEruption{kilaueaRecord()}}
	clock := clockwork.NewFakeClock()
	cache := newTestCache(fetcher, clock)

	cache.ActiveEruptions(context.Background())
	clock.Advance(31 * time.Minute)
	cache.ActiveEruptions(context.Background())

	assert.Equal(t, 2, fetcher.calls)
}

func TestEruptionCache_InvalidateForcesRefetch(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.ActiveEruption{kilaueaRecord()}}
	clock := clockwork.NewFakeClock()
	cache := newTestCache(fetcher, clock)

	cache.ActiveEruptions(context.Background())
	// Entry is still fresh; invalidation must bypass the TTL check.
	cache.Invalidate()
	cache.ActiveEruptions(context.Background())

	assert.Equal(t, 2, fetcher.calls)
}

func TestEruptionCache_FailureWithoutCacheReturnsEmpty(t *testing.T) {
	fetcher := &fakeFetcher{err: errors.New("feed down")}
	cache := newTestCache(fetcher, clockwork.NewFakeClock())

	snap := cache.ActiveEruptions(context.Background())

	assert.NotNil(t, snap)
	assert.Empty(t, snap)
	assert.Equal(t, 1, fetcher.calls)
}

func TestEruptionCache_FailureServesStaleSnapshot(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.ActiveEruption{kilaueaRecord()}}
	clock := clockwork.NewFakeClock()
	cache := newTestCache(fetcher, clock)

	cache.ActiveEruptions(context.Background())

	// Expire the entry, then break the feed: stale data beats no data.
	clock.Advance(2 * time.Hour)
	fetcher.err = errors.New("feed down")

	snap := cache.ActiveEruptions(context.Background())
	require.Len(t, snap, 1)
	assert.Equal(t, "Kilauea", snap["332010"].VolcanoName)
	assert.Equal(t, 2, fetcher.calls)

	// A failed refresh must not replace the entry: the stale snapshot
	// survives for the next reader too.
	snap = cache.ActiveEruptions(context.Background())
	assert.Len(t, snap, 1)
}

func TestEruptionCache_DuplicateContinuingRecordsFirstWins(t *testing.T) {
	vei3 := 3
	fetcher := &fakeFetcher{records: []domain.ActiveEruption{
		{VolcanoID: "211060", VolcanoName: "Etna", StartDate: "2023-11-12", VEI: &vei3},
		{VolcanoID: "211060", VolcanoName: "Etna", StartDate: "2021-02-16"},
		{VolcanoID: "332010", VolcanoName: "Kilauea"},
	}}
	cache := newTestCache(fetcher, clockwork.NewFakeClock())

	snap := cache.ActiveEruptions(context.Background())

	require.Len(t, snap, 2)
	assert.Equal(t, "2023-11-12", snap["211060"].StartDate, "first record encountered wins")
	require.NotNil(t, snap["211060"].VEI)
	assert.Equal(t, 3, *snap["211060"].VEI)
}

func TestEruptionCache_CopyOnRead(t *testing.T) {
	fetcher := &fakeFetcher{records: []domain.ActiveEruption{kilaueaRecord()}}
	cache := newTestCache(fetcher, clockwork.NewFakeClock())

	first := cache.ActiveEruptions(context.Background())
	first["999999"] = domain.ActiveEruption{VolcanoID: "999999"}
	delete(first, "332010")

	second := cache.ActiveEruptions(context.Background())
	require.Len(t, second, 1)
	assert.Contains(t, second, "332010")
	assert.Equal(t, 1, fetcher.calls, "second read must still be a cache hit")
}
