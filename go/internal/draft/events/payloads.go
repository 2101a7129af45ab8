package events

import (
	"time"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
)

// Event payload types that are shared between the engine, the outbox relay and the gateway

// Transition names the operation behind a StateChanged event.
type Transition string

const (
	TransitionDraftStarted    Transition = "DraftStarted"
	TransitionDraftPaused     Transition = "DraftPaused"
	TransitionDraftResumed    Transition = "DraftResumed"
	TransitionPickMade        Transition = "PickMade"
	TransitionPickUndone      Transition = "PickUndone"
	TransitionDraftCompleted  Transition = "DraftCompleted"
	TransitionDraftReset      Transition = "DraftReset"
	TransitionPresenceChanged Transition = "PresenceChanged"
	TransitionAutopickToggled Transition = "AutopickToggled"
	TransitionResync          Transition = "Resync"
)

// StateChangedPayload carries the full draft state after a transition
type StateChangedPayload struct {
	Transition Transition       `json:"transition"`
	Resync     bool             `json:"resync,omitempty"`
	Snapshot   *ledger.Snapshot `json:"snapshot"`
}

// PickMadePayload is the payload for a PickMade event
type PickMadePayload struct {
	PickID      string    `json:"pick_id"`
	TeamID      string    `json:"team_id"`
	PlayerID    string    `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	Position    string    `json:"position"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`
	OverallPick int       `json:"overall_pick"`
	IsAutoPick  bool      `json:"is_auto_pick"`
	MadeAt      time.Time `json:"made_at"`
}

// ParticipantPresenceChangedPayload is the payload for a ParticipantPresenceChanged event
type ParticipantPresenceChangedPayload struct {
	TeamID    string    `json:"team_id"`
	Online    bool      `json:"online"`
	ChangedAt time.Time `json:"changed_at"`
}

// TimerArmedPayload is the payload for a TimerArmed event
type TimerArmedPayload struct {
	OverallPick int       `json:"overall_pick"`
	TeamID      string    `json:"team_id"`
	Deadline    time.Time `json:"deadline"`
	DurationMs  int64     `json:"duration_ms"`
}
