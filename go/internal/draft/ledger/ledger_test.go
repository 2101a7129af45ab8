package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

func newTestLedger(t *testing.T, teams, rounds, poolSize int) *Ledger {
	t.Helper()

	order := make([]uuid.UUID, teams)
	for i := range order {
		order[i] = uuid.New()
	}
	pool := make([]models.Player, poolSize)
	for i := range pool {
		pool[i] = models.Player{ID: uuid.New(), FullName: fmt.Sprintf("Player %d", i+1), Position: "WR", Rank: i + 1}
	}

	l, err := New(models.Draft{
		ID:        uuid.New(),
		DraftType: models.DraftTypeSnake,
		Status:    models.DraftStatusInProgress,
		Settings:  models.DraftSettings{Rounds: rounds, TimePerPickSec: 90, DraftOrder: order},
	}, nil, nil, pool)
	require.NoError(t, err)
	return l
}

func TestNew_DerivesClock(t *testing.T) {
	l := newTestLedger(t, 4, 2, 20)

	assert.Equal(t, 1, l.Draft.CurrentPick)
	assert.Equal(t, 1, l.Draft.CurrentRound)
	assert.Equal(t, l.Draft.Settings.DraftOrder[0], l.TeamOnClock())
	assert.Len(t, l.Participants, 4)
	assert.NoError(t, l.CheckInvariants())
}

func TestNew_RejectsMismatchedOrder(t *testing.T) {
	order := []uuid.UUID{uuid.New(), uuid.New()}
	_, err := New(models.Draft{
		ID:       uuid.New(),
		Settings: models.DraftSettings{Rounds: 1, DraftOrder: order},
	}, []models.DraftParticipant{
		{TeamID: order[1], DraftPosition: 1},
		{TeamID: order[0], DraftPosition: 2},
	}, nil, nil)
	assert.Error(t, err)
}

func TestAppendPick_FollowsSnake(t *testing.T) {
	l := newTestLedger(t, 3, 2, 10)
	order := l.Draft.Settings.DraftOrder
	expected := []uuid.UUID{order[0], order[1], order[2], order[2], order[1], order[0]}

	for i, team := range expected {
		require.Equal(t, team, l.TeamOnClock(), "pick %d", i+1)
		p, err := l.AppendPick(models.DraftPick{PlayerID: l.Available()[0].ID})
		require.NoError(t, err)
		assert.Equal(t, i+1, p.OverallPick)
		assert.Equal(t, team, p.TeamID)
		require.NoError(t, l.CheckInvariants())
	}

	assert.True(t, l.IsComplete())
	assert.Equal(t, uuid.Nil, l.TeamOnClock())
	_, err := l.AppendPick(models.DraftPick{PlayerID: l.Available()[0].ID})
	assert.Error(t, err)
}

func TestAppendPick_RejectsTakenPlayer(t *testing.T) {
	l := newTestLedger(t, 2, 2, 5)
	player := l.Pool[0].ID

	_, err := l.AppendPick(models.DraftPick{PlayerID: player})
	require.NoError(t, err)

	_, err = l.AppendPick(models.DraftPick{PlayerID: player})
	assert.Error(t, err)
	assert.Len(t, l.Picks, 1)
	assert.False(t, l.IsAvailable(player))
}

func TestAppendPick_RejectsUnknownPlayer(t *testing.T) {
	l := newTestLedger(t, 2, 2, 5)
	_, err := l.AppendPick(models.DraftPick{PlayerID: uuid.New()})
	assert.Error(t, err)
}

func TestRemoveLastPick_RestoresAvailability(t *testing.T) {
	l := newTestLedger(t, 2, 2, 5)
	first, err := l.AppendPick(models.DraftPick{PlayerID: l.Pool[0].ID})
	require.NoError(t, err)
	_, err = l.AppendPick(models.DraftPick{PlayerID: l.Pool[1].ID})
	require.NoError(t, err)

	removed, err := l.RemoveLastPick()
	require.NoError(t, err)
	assert.Equal(t, 2, removed.OverallPick)
	assert.Equal(t, 2, l.Draft.CurrentPick)
	assert.True(t, l.IsAvailable(l.Pool[1].ID))
	assert.Equal(t, removed.TeamID, l.TeamOnClock())

	removed, err = l.RemoveLastPick()
	require.NoError(t, err)
	assert.Equal(t, first.ID, removed.ID)

	_, err = l.RemoveLastPick()
	assert.Error(t, err)
	assert.NoError(t, l.CheckInvariants())
}

func TestClone_IsIndependent(t *testing.T) {
	l := newTestLedger(t, 2, 2, 5)
	deadline := time.Now()
	l.Draft.PickDeadline = &deadline

	c := l.Clone()
	_, err := c.AppendPick(models.DraftPick{PlayerID: c.Pool[0].ID})
	require.NoError(t, err)
	c.Participants[0].Online = true
	*c.Draft.PickDeadline = deadline.Add(time.Minute)

	assert.Empty(t, l.Picks)
	assert.True(t, l.IsAvailable(l.Pool[0].ID))
	assert.False(t, l.Participants[0].Online)
	assert.Equal(t, deadline, *l.Draft.PickDeadline)
}

func TestCheckInvariants_DetectsCorruption(t *testing.T) {
	l := newTestLedger(t, 2, 2, 5)
	_, err := l.AppendPick(models.DraftPick{PlayerID: l.Pool[0].ID})
	require.NoError(t, err)

	l.Draft.CurrentPick = 5
	assert.Error(t, l.CheckInvariants())

	l.Draft.CurrentPick = 2
	l.SyncClock()
	require.NoError(t, l.CheckInvariants())

	l.Draft.TeamOnClock = uuid.New()
	assert.Error(t, l.CheckInvariants())
}

func TestSnapshot_TimeRemaining(t *testing.T) {
	l := newTestLedger(t, 2, 2, 5)
	now := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	deadline := now.Add(50 * time.Second)
	l.Draft.PickDeadline = &deadline
	l.Draft.Sequence = 7

	snap := l.Snapshot(now)
	assert.Equal(t, int64(50000), snap.TimeRemainingMs)
	assert.Equal(t, int64(7), snap.Sequence)
	assert.Equal(t, 5, snap.AvailableCount)

	onClock, ok := snap.OnClock()
	require.True(t, ok)
	assert.Equal(t, 50*time.Second, onClock.TimeRemaining)

	l.Draft.Status = models.DraftStatusPaused
	l.Draft.PausedRemaining = 20 * time.Second
	assert.Equal(t, int64(20000), l.Snapshot(now).TimeRemainingMs)

	snap.Participants[0].Online = true
	assert.False(t, l.Participants[0].Online)
}

func TestSnapshotAt_ReadsClockAgain(t *testing.T) {
	l := newTestLedger(t, 2, 2, 5)
	committed := time.Date(2025, 9, 1, 12, 0, 0, 0, time.UTC)
	deadline := committed.Add(90 * time.Second)
	l.Draft.PickDeadline = &deadline

	snap := l.Snapshot(committed)
	later := snap.At(committed.Add(70 * time.Second))
	assert.Equal(t, int64(20000), later.TimeRemainingMs)
	assert.Equal(t, committed.Add(70*time.Second), later.TakenAt)
	onClock, ok := later.OnClock()
	require.True(t, ok)
	assert.Equal(t, 20*time.Second, onClock.TimeRemaining)

	// past the deadline the clock reads zero, never negative
	assert.Equal(t, int64(0), snap.At(committed.Add(2*time.Minute)).TimeRemainingMs)

	// the stored snapshot keeps its commit-time values
	assert.Equal(t, int64(90000), snap.TimeRemainingMs)
	later.Participants[0].Online = true
	assert.False(t, snap.Participants[0].Online)

	l.Draft.Status = models.DraftStatusPaused
	l.Draft.PickDeadline = nil
	l.Draft.PausedRemaining = 30 * time.Second
	paused := l.Snapshot(committed)
	assert.Equal(t, int64(30000), paused.At(committed.Add(time.Hour)).TimeRemainingMs)
}
