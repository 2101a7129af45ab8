package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Snapshot is a complete, self-consistent copy of draft state.
type Snapshot struct {
	Draft           models.Draft              `json:"draft"`
	Participants    []models.DraftParticipant `json:"participants"`
	Picks           []models.DraftPick        `json:"picks"`
	AvailableCount  int                       `json:"available_count"`
	TimeRemainingMs int64                     `json:"time_remaining_ms"`
	// Sequence is the last event reflected in this snapshot. Clients drop
	// events at or below it.
	Sequence int64     `json:"sequence"`
	TakenAt  time.Time `json:"taken_at"`
}

// Snapshot copies the ledger. The on-clock participant carries the
// remaining time.
func (l *Ledger) Snapshot(now time.Time) *Snapshot {
	c := l.Clone()
	remaining := l.TimeRemaining(now)

	for i := range c.Participants {
		if c.Participants[i].TeamID == c.Draft.TeamOnClock && c.Draft.TeamOnClock != uuid.Nil {
			c.Participants[i].TimeRemaining = remaining
		} else {
			c.Participants[i].TimeRemaining = 0
		}
	}

	return &Snapshot{
		Draft:           c.Draft,
		Participants:    c.Participants,
		Picks:           c.Picks,
		AvailableCount:  len(l.Pool) - len(l.drafted),
		TimeRemainingMs: remaining.Milliseconds(),
		Sequence:        c.Draft.Sequence,
		TakenAt:         now,
	}
}

// At returns a copy of the snapshot with the clock read at now. Stored
// snapshots keep the remaining time of their commit; readers call At before
// handing one out.
func (s *Snapshot) At(now time.Time) *Snapshot {
	out := *s
	out.Participants = append([]models.DraftParticipant(nil), s.Participants...)
	out.Picks = append([]models.DraftPick(nil), s.Picks...)

	remaining := timeRemaining(&out.Draft, now)
	for i := range out.Participants {
		if out.Participants[i].TeamID == out.Draft.TeamOnClock && out.Draft.TeamOnClock != uuid.Nil {
			out.Participants[i].TimeRemaining = remaining
		}
	}
	out.TimeRemainingMs = remaining.Milliseconds()
	out.TakenAt = now
	return &out
}

// OnClock returns the participant currently on the clock.
func (s *Snapshot) OnClock() (models.DraftParticipant, bool) {
	for _, p := range s.Participants {
		if p.TeamID == s.Draft.TeamOnClock {
			return p, true
		}
	}
	return models.DraftParticipant{}, false
}
