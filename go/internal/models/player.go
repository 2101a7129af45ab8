package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Player is a draftable player in a draft's pool.
type Player struct {
	ID       uuid.UUID `json:"id"`
	FullName string    `json:"full_name"`
	Position string    `json:"position"` // 'QB', 'RB', 'WR', etc.
	// Rank is the external ranking, 1 is best.
	Rank     int             `json:"rank"`
	Metadata json.RawMessage `json:"metadata,omitempty"` // pro team, bye week, etc.
}
