package turn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeamForPick_TenTeams(t *testing.T) {
	tests := []struct {
		name     string
		pick     int
		expected Slot
	}{
		{name: "first pick", pick: 1, expected: Slot{Round: 1, PickInRound: 1, TeamPosition: 1}},
		{name: "end of round one", pick: 10, expected: Slot{Round: 1, PickInRound: 10, TeamPosition: 10}},
		{name: "turn at round two", pick: 11, expected: Slot{Round: 2, PickInRound: 1, TeamPosition: 10}},
		{name: "end of round two", pick: 20, expected: Slot{Round: 2, PickInRound: 10, TeamPosition: 1}},
		{name: "start of round three", pick: 21, expected: Slot{Round: 3, PickInRound: 1, TeamPosition: 1}},
		{name: "middle of round four", pick: 35, expected: Slot{Round: 4, PickInRound: 5, TeamPosition: 6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, err := TeamForPick(tt.pick, 10)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, slot)
		})
	}
}

func TestTeamForPick_InvalidInput(t *testing.T) {
	_, err := TeamForPick(0, 10)
	assert.Error(t, err)

	_, err = TeamForPick(1, 0)
	assert.Error(t, err)
}

func TestTeamForPick_EveryTeamPicksOncePerRound(t *testing.T) {
	for n := 1; n <= 20; n++ {
		for r := 1; r <= 30; r++ {
			counts := make(map[int]int)
			for p := 1; p <= n*r; p++ {
				slot, err := TeamForPick(p, n)
				require.NoError(t, err)

				require.GreaterOrEqual(t, slot.TeamPosition, 1)
				require.LessOrEqual(t, slot.TeamPosition, n)

				if slot.Round%2 == 1 {
					require.Equal(t, slot.PickInRound, slot.TeamPosition)
				} else {
					require.Equal(t, n-slot.PickInRound+1, slot.TeamPosition)
				}
				counts[slot.TeamPosition]++
			}

			require.Len(t, counts, n, "n=%d r=%d", n, r)
			for pos, c := range counts {
				require.Equal(t, r, c, "team %d in n=%d r=%d", pos, n, r)
			}
		}
	}
}

func TestTeamForPick_RoundBoundariesRepeatTeam(t *testing.T) {
	// The last pick of a round and the first pick of the next belong to the same team.
	for n := 2; n <= 20; n++ {
		for round := 1; round < 30; round++ {
			last, err := TeamForPick(round*n, n)
			require.NoError(t, err)
			next, err := TeamForPick(round*n+1, n)
			require.NoError(t, err)
			require.Equal(t, last.TeamPosition, next.TeamPosition)
		}
	}
}

func TestIsDraftComplete(t *testing.T) {
	assert.False(t, IsDraftComplete(1, 10, 16))
	assert.False(t, IsDraftComplete(160, 10, 16))
	assert.True(t, IsDraftComplete(161, 10, 16))
}
