package gateway

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/snapcache"
)

// SnapshotCache is the read side of the Redis snapshot cache.
type SnapshotCache interface {
	Get(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error)
}

// Snapshots reads draft snapshots, preferring the cache when one is set.
type Snapshots struct {
	engine Engine
	cache  SnapshotCache
	clock  clockwork.Clock
}

// NewSnapshots creates a snapshot reader. cache may be nil.
func NewSnapshots(engine Engine, cache SnapshotCache) *Snapshots {
	return &Snapshots{engine: engine, cache: cache, clock: clockwork.NewRealClock()}
}

// Snapshot returns the cached snapshot of a draft, falling back to the engine
// on a miss or cache error. A cached snapshot can trail the engine; callers
// that saw a later sequence must use FreshSnapshot. Cached snapshots hold the
// pick clock as of their commit, so it is read again here.
func (s *Snapshots) Snapshot(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error) {
	if s.cache != nil {
		snap, err := s.cache.Get(ctx, draftID)
		if err == nil {
			return snap.At(s.clock.Now()), nil
		}
		if !errors.Is(err, snapcache.ErrNotCached) {
			log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("snapshot cache read failed")
		}
	}
	return s.engine.GetSnapshot(ctx, draftID)
}

// FreshSnapshot always asks the engine.
func (s *Snapshots) FreshSnapshot(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error) {
	return s.engine.GetSnapshot(ctx, draftID)
}

// ActiveDrafts lists the drafts the engine has loaded.
func (s *Snapshots) ActiveDrafts(ctx context.Context) ([]uuid.UUID, error) {
	return s.engine.ListActiveDrafts(ctx)
}
