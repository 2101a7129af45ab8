package pick

import (
	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Validate decides whether teamID may draft playerID right now. Checks run in
// order: draft status, turn, availability, then roster need. A nil or empty
// needs set means the need evaluator had no answer and the last check is
// skipped. Returns nil when the pick is legal.
func Validate(v View, teamID, playerID uuid.UUID, needs []string) *Rejection {
	reject := func(reason Reason) *Rejection {
		return &Rejection{Reason: reason, TeamID: teamID, PlayerID: playerID}
	}

	if v.Status() != models.DraftStatusInProgress {
		return reject(ReasonDraftNotInProgress)
	}
	if v.TeamOnClock() != teamID {
		return reject(ReasonNotYourTurn)
	}
	if !v.IsAvailable(playerID) {
		return reject(ReasonPlayerUnavailable)
	}
	if len(needs) == 0 {
		return nil
	}

	position, ok := v.PlayerPosition(playerID)
	if !ok {
		return nil
	}
	if !Needs(needs).Includes(position) {
		return reject(ReasonRosterSlotFilled)
	}
	return nil
}

// Needs is the set of roster positions a team can still fill.
type Needs []string

// Includes reports whether position is among the needs. "FLEX" and "BN"
// accept any position.
func (n Needs) Includes(position string) bool {
	for _, need := range n {
		if need == position || need == "FLEX" || need == "BN" {
			return true
		}
	}
	return false
}
