package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// MemoryStore keeps drafts in process. It backs tests and the serve
// command's --memory mode.
type MemoryStore struct {
	mu            sync.Mutex
	records       map[uuid.UUID]*Record
	pools         map[uuid.UUID][]models.Player
	commissioners map[uuid.UUID]uuid.UUID // league id -> user id
	events        map[uuid.UUID][]events.Envelope
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records:       make(map[uuid.UUID]*Record),
		pools:         make(map[uuid.UUID][]models.Player),
		commissioners: make(map[uuid.UUID]uuid.UUID),
		events:        make(map[uuid.UUID][]events.Envelope),
	}
}

// Seed registers a draft, its player pool and the league commissioner.
func (m *MemoryStore) Seed(rec Record, pool []models.Player, commissionerID uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records[rec.Draft.ID] = cloneRecord(&rec)
	m.pools[rec.Draft.ID] = append([]models.Player(nil), pool...)
	m.commissioners[rec.Draft.LeagueID] = commissionerID
}

func (m *MemoryStore) LoadDraft(ctx context.Context, draftID uuid.UUID) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[draftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", draftID, drafterr.ErrDraftNotFound)
	}
	return cloneRecord(rec), nil
}

func (m *MemoryStore) ListActiveDraftIDs(ctx context.Context) ([]uuid.UUID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var ids []uuid.UUID
	for id, rec := range m.records {
		if rec.Draft.Status != models.DraftStatusCompleted {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// Persist applies a change atomically. Like the Postgres store it rejects a
// change whose draft sequence does not follow the stored one.
func (m *MemoryStore) Persist(ctx context.Context, change Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[change.Draft.ID]
	if !ok {
		return fmt.Errorf("draft %s: %w", change.Draft.ID, drafterr.ErrDraftNotFound)
	}

	expected := change.Draft.Sequence - int64(len(change.Events))
	if rec.Draft.Sequence != expected {
		return fmt.Errorf("draft %s at sequence %d, expected %d: %w",
			change.Draft.ID, rec.Draft.Sequence, expected, drafterr.ErrStaleOperation)
	}

	picks := rec.Picks
	if change.ClearPicks {
		picks = nil
	}
	if change.RemovedPick != nil {
		n := len(picks)
		if n == 0 || picks[n-1].ID != change.RemovedPick.ID {
			return fmt.Errorf("pick %s is not the last pick of draft %s", change.RemovedPick.ID, change.Draft.ID)
		}
		picks = picks[: n-1 : n-1]
	}
	if change.AppendedPick != nil {
		picks = append(picks, *change.AppendedPick)
	}

	rec.Draft = change.Draft
	rec.Draft.Settings.DraftOrder = append([]uuid.UUID(nil), change.Draft.Settings.DraftOrder...)
	rec.Picks = picks
	for _, p := range change.Participants {
		for i := range rec.Participants {
			if rec.Participants[i].TeamID == p.TeamID {
				rec.Participants[i] = p
			}
		}
	}
	m.events[change.Draft.ID] = append(m.events[change.Draft.ID], change.Events...)
	return nil
}

// ListPool implements PlayerPool.
func (m *MemoryStore) ListPool(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	pool, ok := m.pools[draftID]
	if !ok {
		return nil, fmt.Errorf("draft %s: %w", draftID, drafterr.ErrDraftNotFound)
	}
	return append([]models.Player(nil), pool...), nil
}

// IsCommissioner reports whether userID runs leagueID.
func (m *MemoryStore) IsCommissioner(ctx context.Context, leagueID, userID uuid.UUID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.commissioners[leagueID] == userID, nil
}

// Events returns every event persisted for a draft, in commit order.
func (m *MemoryStore) Events(draftID uuid.UUID) []events.Envelope {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]events.Envelope(nil), m.events[draftID]...)
}

func cloneRecord(rec *Record) *Record {
	c := &Record{
		Draft:        rec.Draft,
		Participants: append([]models.DraftParticipant(nil), rec.Participants...),
		Picks:        append([]models.DraftPick(nil), rec.Picks...),
	}
	c.Draft.Settings.DraftOrder = append([]uuid.UUID(nil), rec.Draft.Settings.DraftOrder...)
	return c
}
