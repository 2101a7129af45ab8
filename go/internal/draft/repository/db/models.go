package db

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

type Draft struct {
	ID                uuid.UUID       `json:"id"`
	LeagueID          uuid.UUID       `json:"league_id"`
	DraftType         string          `json:"draft_type"`
	Status            string          `json:"status"`
	Settings          json.RawMessage `json:"settings"`
	CurrentPick       int32           `json:"current_pick"`
	PickDeadline      sql.NullTime    `json:"pick_deadline"`
	PausedRemainingMs int64           `json:"paused_remaining_ms"`
	EventSequence     int64           `json:"event_sequence"`
	ScheduledAt       sql.NullTime    `json:"scheduled_at"`
	StartedAt         sql.NullTime    `json:"started_at"`
	PausedAt          sql.NullTime    `json:"paused_at"`
	CompletedAt       sql.NullTime    `json:"completed_at"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

type DraftParticipant struct {
	DraftID         uuid.UUID `json:"draft_id"`
	TeamID          uuid.UUID `json:"team_id"`
	DraftPosition   int32     `json:"draft_position"`
	Online          bool      `json:"online"`
	AutopickEnabled bool      `json:"autopick_enabled"`
}

type DraftPick struct {
	ID          uuid.UUID `json:"id"`
	DraftID     uuid.UUID `json:"draft_id"`
	Round       int32     `json:"round"`
	Pick        int32     `json:"pick"`
	OverallPick int32     `json:"overall_pick"`
	TeamID      uuid.UUID `json:"team_id"`
	PlayerID    uuid.UUID `json:"player_id"`
	IsAutoPick  bool      `json:"is_auto_pick"`
	PickedAt    time.Time `json:"picked_at"`
}

type DraftOutbox struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	EventType string          `json:"event_type"`
	Sequence  int64           `json:"sequence"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	SentAt    sql.NullTime    `json:"sent_at"`
}

type Player struct {
	ID       uuid.UUID             `json:"id"`
	FullName string                `json:"full_name"`
	Position string                `json:"position"`
	Metadata pqtype.NullRawMessage `json:"metadata"`
}
