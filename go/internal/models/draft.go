package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftType defines the type of draft.
type DraftType string

const (
	DraftTypeSnake   DraftType = "SNAKE"
	DraftTypeAuction DraftType = "AUCTION"
)

// DraftStatus defines the status of a draft.
type DraftStatus string

const (
	DraftStatusScheduled  DraftStatus = "SCHEDULED"
	DraftStatusInProgress DraftStatus = "IN_PROGRESS"
	DraftStatusPaused     DraftStatus = "PAUSED"
	DraftStatusCompleted  DraftStatus = "COMPLETED"
)

// DraftSettings holds JSONB configuration for drafts.
type DraftSettings struct {
	Rounds         int         `json:"rounds"`
	TimePerPickSec int         `json:"time_per_pick_sec"`
	DraftOrder     []uuid.UUID `json:"draft_order,omitempty"`
}

// PickInterval is the full clock allotted to each pick.
func (s DraftSettings) PickInterval() time.Duration {
	return time.Duration(s.TimePerPickSec) * time.Second
}

// TotalPicks is the number of picks needed to fill every round.
func (s DraftSettings) TotalPicks() int {
	return len(s.DraftOrder) * s.Rounds
}

// Draft represents a draft instance.
type Draft struct {
	ID          uuid.UUID     `json:"id"`
	LeagueID    uuid.UUID     `json:"league_id"`
	DraftType   DraftType     `json:"draft_type"`
	Status      DraftStatus   `json:"status"`
	Settings    DraftSettings `json:"settings"`
	CurrentPick int           `json:"current_pick"`
	// CurrentRound is derived from CurrentPick and the number of teams.
	CurrentRound int       `json:"current_round"`
	TeamOnClock  uuid.UUID `json:"team_on_clock"`
	// PickDeadline is set only while the clock is running.
	PickDeadline *time.Time `json:"pick_deadline,omitempty"`
	// PausedRemaining holds the frozen clock while paused.
	PausedRemaining time.Duration `json:"paused_remaining"`
	// Sequence is the number of the last event emitted for this draft.
	Sequence    int64      `json:"sequence"`
	ScheduledAt *time.Time `json:"scheduled_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	PausedAt    *time.Time `json:"paused_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// DraftParticipant is one team's seat in a draft.
type DraftParticipant struct {
	TeamID          uuid.UUID     `json:"team_id"`
	DraftPosition   int           `json:"draft_position"`
	Online          bool          `json:"online"`
	AutopickEnabled bool          `json:"autopick_enabled"`
	TimeRemaining   time.Duration `json:"time_remaining"`
}
