package pick

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Reason enumerates why a pick was refused.
type Reason string

const (
	ReasonDraftNotInProgress Reason = "DRAFT_NOT_IN_PROGRESS"
	ReasonNotYourTurn        Reason = "NOT_YOUR_TURN"
	ReasonPlayerUnavailable  Reason = "PLAYER_UNAVAILABLE"
	ReasonRosterSlotFilled   Reason = "ROSTER_SLOT_FILLED"
)

// View is the read side of a ledger that validation needs.
type View interface {
	Status() models.DraftStatus
	TeamOnClock() uuid.UUID
	IsAvailable(playerID uuid.UUID) bool
	PlayerPosition(playerID uuid.UUID) (string, bool)
}

// Rejection is returned for an illegal pick. It unwraps to the matching
// drafterr sentinel.
type Rejection struct {
	Reason   Reason    `json:"reason"`
	TeamID   uuid.UUID `json:"team_id"`
	PlayerID uuid.UUID `json:"player_id"`
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("pick rejected (%s): team %s player %s", r.Reason, r.TeamID, r.PlayerID)
}

func (r *Rejection) Unwrap() error {
	switch r.Reason {
	case ReasonDraftNotInProgress:
		return drafterr.ErrInvalidTransition
	case ReasonNotYourTurn:
		return drafterr.ErrNotYourTurn
	case ReasonPlayerUnavailable:
		return drafterr.ErrPlayerUnavailable
	case ReasonRosterSlotFilled:
		return drafterr.ErrRosterSlotFilled
	default:
		return nil
	}
}
