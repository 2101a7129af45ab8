package pick

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

type fakeView struct {
	status    models.DraftStatus
	onClock   uuid.UUID
	available map[uuid.UUID]string
}

func (f fakeView) Status() models.DraftStatus { return f.status }
func (f fakeView) TeamOnClock() uuid.UUID     { return f.onClock }
func (f fakeView) IsAvailable(id uuid.UUID) bool {
	_, ok := f.available[id]
	return ok
}
func (f fakeView) PlayerPosition(id uuid.UUID) (string, bool) {
	pos, ok := f.available[id]
	return pos, ok && pos != ""
}

func TestValidate(t *testing.T) {
	team := uuid.New()
	other := uuid.New()
	qb := uuid.New()
	unknownPos := uuid.New()
	taken := uuid.New()

	view := fakeView{
		status:    models.DraftStatusInProgress,
		onClock:   team,
		available: map[uuid.UUID]string{qb: "QB", unknownPos: ""},
	}

	tests := []struct {
		name     string
		view     fakeView
		team     uuid.UUID
		player   uuid.UUID
		needs    []string
		expected Reason
		sentinel error
	}{
		{name: "legal pick", view: view, team: team, player: qb},
		{name: "legal pick with matching need", view: view, team: team, player: qb, needs: []string{"RB", "QB"}},
		{name: "flex accepts any position", view: view, team: team, player: qb, needs: []string{"FLEX"}},
		{name: "unknown position skips need check", view: view, team: team, player: unknownPos, needs: []string{"RB"}},
		{
			name:     "paused draft",
			view:     fakeView{status: models.DraftStatusPaused, onClock: team, available: view.available},
			team:     team,
			player:   qb,
			expected: ReasonDraftNotInProgress,
			sentinel: drafterr.ErrInvalidTransition,
		},
		{name: "wrong team", view: view, team: other, player: qb, expected: ReasonNotYourTurn, sentinel: drafterr.ErrNotYourTurn},
		{name: "taken player", view: view, team: team, player: taken, expected: ReasonPlayerUnavailable, sentinel: drafterr.ErrPlayerUnavailable},
		{name: "filled position", view: view, team: team, player: qb, needs: []string{"RB"}, expected: ReasonRosterSlotFilled, sentinel: drafterr.ErrRosterSlotFilled},
		{
			name:     "status checked before turn",
			view:     fakeView{status: models.DraftStatusScheduled, onClock: team},
			team:     other,
			player:   taken,
			expected: ReasonDraftNotInProgress,
			sentinel: drafterr.ErrInvalidTransition,
		},
		{name: "turn checked before availability", view: view, team: other, player: taken, expected: ReasonNotYourTurn, sentinel: drafterr.ErrNotYourTurn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rej := Validate(tt.view, tt.team, tt.player, tt.needs)
			if tt.expected == "" {
				assert.Nil(t, rej)
				return
			}
			require.NotNil(t, rej)
			assert.Equal(t, tt.expected, rej.Reason)

			var err error = rej
			assert.True(t, errors.Is(err, tt.sentinel))
			assert.True(t, drafterr.IsRejection(err))
		})
	}
}
