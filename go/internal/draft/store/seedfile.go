package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// SeedFile describes one league, its scheduled snake draft and the player
// pool. It feeds both the Postgres seed tool and in-memory servers.
type SeedFile struct {
	League struct {
		ID             uuid.UUID `json:"id"`
		Name           string    `json:"name"`
		CommissionerID uuid.UUID `json:"commissioner_id"`
	} `json:"league"`
	Draft struct {
		ID             uuid.UUID   `json:"id"`
		Rounds         int         `json:"rounds"`
		TimePerPickSec int         `json:"time_per_pick_sec"`
		Teams          []uuid.UUID `json:"teams"`
	} `json:"draft"`
	Players []models.Player `json:"players"`
}

// LoadSeedFile reads and checks a seed file.
func LoadSeedFile(path string) (*SeedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var f SeedFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	switch {
	case f.Draft.ID == uuid.Nil || f.League.ID == uuid.Nil:
		return nil, errors.New("seed file needs league and draft ids")
	case len(f.Draft.Teams) < 2:
		return nil, errors.New("seed file needs at least two teams")
	case f.Draft.Rounds < 1:
		return nil, errors.New("seed file needs at least one round")
	}
	return &f, nil
}

// Settings returns the draft settings the file describes.
func (f *SeedFile) Settings() models.DraftSettings {
	return models.DraftSettings{
		Rounds:         f.Draft.Rounds,
		TimePerPickSec: f.Draft.TimePerPickSec,
		DraftOrder:     f.Draft.Teams,
	}
}

// Record returns the scheduled draft with one seat per team in draft order.
func (f *SeedFile) Record(now time.Time) Record {
	rec := Record{Draft: models.Draft{
		ID:        f.Draft.ID,
		LeagueID:  f.League.ID,
		DraftType: models.DraftTypeSnake,
		Status:    models.DraftStatusScheduled,
		Settings:  f.Settings(),
		CreatedAt: now,
		UpdatedAt: now,
	}}
	for i, teamID := range f.Draft.Teams {
		rec.Participants = append(rec.Participants, models.DraftParticipant{
			TeamID:        teamID,
			DraftPosition: i + 1,
		})
	}
	return rec
}
