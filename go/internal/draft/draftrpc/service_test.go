package draftrpc_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/broadcast"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/draftrpc"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/orchestrator"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

type fixture struct {
	client       *draftrpc.Client
	draftID      uuid.UUID
	teams        []uuid.UUID
	pool         []models.Player
	commissioner uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.NewMemoryStore()
	f := &fixture{
		teams:        []uuid.UUID{uuid.New(), uuid.New(), uuid.New()},
		commissioner: uuid.New(),
	}
	for i := 0; i < 12; i++ {
		f.pool = append(f.pool, models.Player{
			ID:       uuid.New(),
			FullName: fmt.Sprintf("Player %d", i+1),
			Position: "WR",
			Rank:     i + 1,
		})
	}
	rec := store.Record{Draft: models.Draft{
		ID:        uuid.New(),
		LeagueID:  uuid.New(),
		DraftType: models.DraftTypeSnake,
		Status:    models.DraftStatusScheduled,
		Settings: models.DraftSettings{
			Rounds:         2,
			TimePerPickSec: 90,
			DraftOrder:     f.teams,
		},
		CreatedAt: time.Now(),
	}}
	f.draftID = rec.Draft.ID
	st.Seed(rec, f.pool, f.commissioner)

	o := orchestrator.New(st, st, st, broadcast.NewHub())
	t.Cleanup(func() { _ = o.Close() })

	mux := http.NewServeMux()
	mux.Handle(draftrpc.NewHandler(draftrpc.NewService(o)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f.client = draftrpc.NewClient(srv.Client(), srv.URL)
	return f
}

func TestDraftService_Lifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	status, err := f.client.StartDraft(ctx, f.draftID, f.commissioner)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusInProgress, status)

	snap, err := f.client.GetSnapshot(ctx, f.draftID)
	require.NoError(t, err)
	assert.Equal(t, 1, snap.Draft.CurrentPick)
	assert.Equal(t, f.teams[0], snap.Draft.TeamOnClock)

	p, err := f.client.SubmitPick(ctx, f.draftID, f.teams[0], f.pool[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 1, p.OverallPick)
	assert.Equal(t, f.pool[0].ID, p.PlayerID)

	available, err := f.client.ListAvailablePlayers(ctx, f.draftID)
	require.NoError(t, err)
	assert.Len(t, available, len(f.pool)-1)

	snap, err = f.client.SetAutopick(ctx, f.draftID, f.teams[2], true)
	require.NoError(t, err)
	for _, part := range snap.Participants {
		if part.TeamID == f.teams[2] {
			assert.True(t, part.AutopickEnabled)
		}
	}

	require.NoError(t, f.client.SetPresence(ctx, f.draftID, f.teams[1], true))

	snap, err = f.client.UndoLastPick(ctx, f.draftID, f.commissioner)
	require.NoError(t, err)
	assert.Empty(t, snap.Picks)
	assert.Equal(t, f.teams[0], snap.Draft.TeamOnClock)

	status, err = f.client.PauseDraft(ctx, f.draftID, f.commissioner)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusPaused, status)

	status, err = f.client.ResumeDraft(ctx, f.draftID, f.commissioner)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusInProgress, status)

	status, err = f.client.CompleteDraft(ctx, f.draftID, f.commissioner)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusCompleted, status)

	status, err = f.client.ResetDraft(ctx, f.draftID, f.commissioner)
	require.NoError(t, err)
	assert.Equal(t, models.DraftStatusScheduled, status)

	active, err := f.client.ListActiveDrafts(ctx)
	require.NoError(t, err)
	assert.Contains(t, active, f.draftID)
}

func TestDraftService_ErrorsKeepTheirKind(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.client.StartDraft(ctx, f.draftID, uuid.New())
	require.Error(t, err)
	assert.ErrorIs(t, err, drafterr.ErrUnauthorized)
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	_, err = f.client.SubmitPick(ctx, f.draftID, f.teams[0], f.pool[0].ID)
	assert.ErrorIs(t, err, drafterr.ErrInvalidTransition)
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))

	_, err = f.client.StartDraft(ctx, f.draftID, f.commissioner)
	require.NoError(t, err)

	_, err = f.client.SubmitPick(ctx, f.draftID, f.teams[1], f.pool[0].ID)
	assert.ErrorIs(t, err, drafterr.ErrNotYourTurn)

	_, err = f.client.SubmitPick(ctx, f.draftID, f.teams[0], uuid.New())
	assert.ErrorIs(t, err, drafterr.ErrPlayerUnavailable)

	_, err = f.client.GetSnapshot(ctx, uuid.New())
	assert.ErrorIs(t, err, drafterr.ErrDraftNotFound)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	_, err = f.client.GetSnapshot(ctx, uuid.Nil)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

// failingEngine fails every snapshot read with an unclassified error.
type failingEngine struct {
	draftrpc.Engine
}

func (failingEngine) GetSnapshot(context.Context, uuid.UUID) (*ledger.Snapshot, error) {
	return nil, errors.New("disk on fire")
}

func TestDraftService_UnknownErrorsAreInternal(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(draftrpc.NewHandler(draftrpc.NewService(failingEngine{})))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	client := draftrpc.NewClient(srv.Client(), srv.URL)
	_, err := client.GetSnapshot(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, connect.CodeInternal, connect.CodeOf(err))
}
