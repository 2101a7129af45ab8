package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/repository/db"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

func TestDbDraftToModel(t *testing.T) {
	deadline := time.Date(2025, 9, 1, 18, 1, 30, 0, time.UTC)
	team := uuid.New()

	d, err := dbDraftToModel(db.Draft{
		ID:                uuid.New(),
		LeagueID:          uuid.New(),
		DraftType:         "SNAKE",
		Status:            "IN_PROGRESS",
		Settings:          []byte(`{"rounds":16,"time_per_pick_sec":90,"draft_order":["` + team.String() + `"]}`),
		CurrentPick:       7,
		PickDeadline:      sql.NullTime{Time: deadline, Valid: true},
		PausedRemainingMs: 42500,
		EventSequence:     31,
	})
	require.NoError(t, err)

	assert.Equal(t, models.DraftTypeSnake, d.DraftType)
	assert.Equal(t, models.DraftStatusInProgress, d.Status)
	assert.Equal(t, 16, d.Settings.Rounds)
	assert.Equal(t, 90*time.Second, d.Settings.PickInterval())
	assert.Equal(t, []uuid.UUID{team}, d.Settings.DraftOrder)
	assert.Equal(t, 7, d.CurrentPick)
	require.NotNil(t, d.PickDeadline)
	assert.True(t, deadline.Equal(*d.PickDeadline))
	assert.Equal(t, 42500*time.Millisecond, d.PausedRemaining)
	assert.Equal(t, int64(31), d.Sequence)
	assert.Nil(t, d.StartedAt)
}

func TestDbDraftToModel_BadSettings(t *testing.T) {
	_, err := dbDraftToModel(db.Draft{ID: uuid.New(), Settings: []byte(`{`)})
	assert.Error(t, err)
}
