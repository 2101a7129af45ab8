// Package turn computes snake-draft ordering.
package turn

import "fmt"

// Slot locates an overall pick within the draft.
type Slot struct {
	Round        int `json:"round"`
	PickInRound  int `json:"pick_in_round"`
	TeamPosition int `json:"team_position"` // 1-based draft position
}

// TeamForPick maps an overall pick number to its round, position within the
// round and the draft position of the team that owns it. Odd rounds run
// 1..N, even rounds run N..1.
func TeamForPick(overallPick, numTeams int) (Slot, error) {
	if numTeams <= 0 {
		return Slot{}, fmt.Errorf("invalid team count %d", numTeams)
	}
	if overallPick <= 0 {
		return Slot{}, fmt.Errorf("invalid overall pick %d", overallPick)
	}

	round := (overallPick + numTeams - 1) / numTeams
	pickInRound := (overallPick-1)%numTeams + 1

	teamPosition := pickInRound
	if round%2 == 0 {
		teamPosition = numTeams - pickInRound + 1
	}

	return Slot{
		Round:        round,
		PickInRound:  pickInRound,
		TeamPosition: teamPosition,
	}, nil
}

// IsDraftComplete reports whether overallPick lies past the last pick.
func IsDraftComplete(overallPick, numTeams, rounds int) bool {
	return overallPick > numTeams*rounds
}
