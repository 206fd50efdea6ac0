package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/volcano-globe-api/internal/domain"
)

// SnapshotProvider is the aggregator surface the facade reads from.
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (domain.CatalogSnapshot, error)
}

// EruptionStore is the eruption cache surface the facade reads and
// invalidates.
type EruptionStore interface {
	ActiveEruptions(ctx context.Context) map[string]domain.ActiveEruption
	Invalidate()
}

// EruptionSummary is the read-only view of currently continuing eruptions.
type EruptionSummary struct {
	Count     int
	Eruptions []domain.ActiveEruption
}

// Service is the single read/write entry point used by request handlers.
type Service struct {
	catalog   SnapshotProvider
	eruptions EruptionStore
	clock     clockwork.Clock
	served    atomic.Bool
}

// NewService creates the query facade over the aggregator and eruption cache.
func NewService(catalog SnapshotProvider, eruptions EruptionStore, clock clockwork.Clock) *Service {
	return &Service{
		catalog:   catalog,
		eruptions: eruptions,
		clock:     clock,
	}
}

// Volcanoes returns the merged catalog snapshot. The list is always non-empty
// and sorted: cache, fresh fetch, or fallback. A non-nil error means the
// snapshot is the degraded fallback.
func (s *Service) Volcanoes(ctx context.Context) (domain.CatalogSnapshot, error) {
	snap, err := s.catalog.Snapshot(ctx)
	s.served.Store(true)
	return snap, err
}

// RefreshEruptions invalidates the eruption cache and returns the
// invalidation time. The refetch is lazy: the next read triggers it. The
// catalog cache is left alone and serves until its own TTL lapses.
func (s *Service) RefreshEruptions() time.Time {
	s.eruptions.Invalidate()
	return s.clock.Now()
}

// EruptionSummary reports the currently continuing eruptions, ordered by
// volcano id for a stable response. It reads through the eruption cache's own
// TTL logic and never forces an early refresh.
func (s *Service) EruptionSummary(ctx context.Context) EruptionSummary {
	snap := s.eruptions.ActiveEruptions(ctx)

	list := make([]domain.ActiveEruption, 0, len(snap))
	for _, e := range snap {
		list = append(list, e)
	}
	slices.SortFunc(list, func(a, b domain.ActiveEruption) int {
		return strings.Compare(a.VolcanoID, b.VolcanoID)
	})

	return EruptionSummary{Count: len(list), Eruptions: list}
}

// CheckReadiness returns nil once the service has served at least one catalog
// snapshot.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.served.Load() {
		return errors.New("catalog has not been served yet")
	}
	return nil
}
