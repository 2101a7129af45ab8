// Package store defines how the draft engine persists transitions.
package store

//go:generate mockgen -package=mocks -destination=mocks/mock_store.go github.com/mcdev12/dynasty-draft/go/internal/draft/store Store,PlayerPool

import (
	"context"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Record is the persisted state of one draft.
type Record struct {
	Draft        models.Draft
	Participants []models.DraftParticipant
	Picks        []models.DraftPick
}

// Change is everything one transition writes. It is applied atomically.
type Change struct {
	Draft        models.Draft
	AppendedPick *models.DraftPick
	RemovedPick  *models.DraftPick
	ClearPicks   bool
	// Participants lists only the seats whose flags changed.
	Participants []models.DraftParticipant
	Events       []events.Envelope
}

// Store loads and persists drafts. LoadDraft returns drafterr.ErrDraftNotFound
// for unknown drafts.
type Store interface {
	LoadDraft(ctx context.Context, draftID uuid.UUID) (*Record, error)
	ListActiveDraftIDs(ctx context.Context) ([]uuid.UUID, error)
	Persist(ctx context.Context, change Change) error
}

// PlayerPool supplies the draftable players for a draft.
type PlayerPool interface {
	ListPool(ctx context.Context, draftID uuid.UUID) ([]models.Player, error)
}
