// Package draftrpc serves the draft engine over Connect with a JSON codec
// and provides the matching client.
package draftrpc

import (
	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// ServiceName is the fully-qualified name of the draft service.
const ServiceName = "draft.v1.DraftService"

// Procedure paths, one per RPC.
const (
	StartDraftProcedure           = "/" + ServiceName + "/StartDraft"
	PauseDraftProcedure           = "/" + ServiceName + "/PauseDraft"
	ResumeDraftProcedure          = "/" + ServiceName + "/ResumeDraft"
	CompleteDraftProcedure        = "/" + ServiceName + "/CompleteDraft"
	ResetDraftProcedure           = "/" + ServiceName + "/ResetDraft"
	UndoLastPickProcedure         = "/" + ServiceName + "/UndoLastPick"
	SubmitPickProcedure           = "/" + ServiceName + "/SubmitPick"
	SetAutopickProcedure          = "/" + ServiceName + "/SetAutopick"
	SetPresenceProcedure          = "/" + ServiceName + "/SetPresence"
	GetSnapshotProcedure          = "/" + ServiceName + "/GetSnapshot"
	ListAvailablePlayersProcedure = "/" + ServiceName + "/ListAvailablePlayers"
	ActivateDraftProcedure        = "/" + ServiceName + "/ActivateDraft"
	ListActiveDraftsProcedure     = "/" + ServiceName + "/ListActiveDrafts"
)

type DraftRequest struct {
	DraftID uuid.UUID `json:"draftId"`
}

type CommissionerRequest struct {
	DraftID        uuid.UUID `json:"draftId"`
	CommissionerID uuid.UUID `json:"commissionerId"`
}

type StatusResponse struct {
	Status models.DraftStatus `json:"status"`
}

type SubmitPickRequest struct {
	DraftID  uuid.UUID `json:"draftId"`
	TeamID   uuid.UUID `json:"teamId"`
	PlayerID uuid.UUID `json:"playerId"`
}

type SubmitPickResponse struct {
	Pick models.DraftPick `json:"pick"`
}

type SetAutopickRequest struct {
	DraftID uuid.UUID `json:"draftId"`
	TeamID  uuid.UUID `json:"teamId"`
	Enabled bool      `json:"enabled"`
}

type SetPresenceRequest struct {
	DraftID uuid.UUID `json:"draftId"`
	TeamID  uuid.UUID `json:"teamId"`
	Online  bool      `json:"online"`
}

type SetPresenceResponse struct{}

type SnapshotResponse struct {
	Snapshot *ledger.Snapshot `json:"snapshot"`
}

type ListAvailablePlayersResponse struct {
	Players []models.Player `json:"players"`
}

type ListActiveDraftsRequest struct{}

type ListActiveDraftsResponse struct {
	DraftIDs []uuid.UUID `json:"draftIds"`
}
