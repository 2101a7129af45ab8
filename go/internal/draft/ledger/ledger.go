// Package ledger holds the authoritative in-memory record of one draft.
//
// A Ledger is owned by a single coordinator goroutine and is not safe for
// concurrent use. Readers receive a Snapshot, which shares no memory with
// the ledger it was taken from.
package ledger

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/turn"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// Ledger is the draft configuration, its participants, committed picks and player pool.
type Ledger struct {
	Draft        models.Draft
	Participants []models.DraftParticipant // ordered by draft position
	Picks        []models.DraftPick        // ordered by overall pick
	Pool         []models.Player           // ordered by rank

	players map[uuid.UUID]int // player id -> index into Pool
	drafted map[uuid.UUID]int // player id -> overall pick
}

// New builds a ledger from persisted state. The team on the clock and
// current round are recomputed from the current pick.
func New(draft models.Draft, participants []models.DraftParticipant, picks []models.DraftPick, pool []models.Player) (*Ledger, error) {
	l := &Ledger{
		Draft:        draft,
		Participants: append([]models.DraftParticipant(nil), participants...),
		Picks:        append([]models.DraftPick(nil), picks...),
		Pool:         append([]models.Player(nil), pool...),
	}
	l.Draft.Settings.DraftOrder = append([]uuid.UUID(nil), draft.Settings.DraftOrder...)

	sort.Slice(l.Participants, func(i, j int) bool {
		return l.Participants[i].DraftPosition < l.Participants[j].DraftPosition
	})
	sort.Slice(l.Picks, func(i, j int) bool {
		return l.Picks[i].OverallPick < l.Picks[j].OverallPick
	})
	sort.SliceStable(l.Pool, func(i, j int) bool {
		return l.Pool[i].Rank < l.Pool[j].Rank
	})

	if len(l.Participants) == 0 {
		for i, teamID := range l.Draft.Settings.DraftOrder {
			l.Participants = append(l.Participants, models.DraftParticipant{TeamID: teamID, DraftPosition: i + 1})
		}
	}
	if len(l.Draft.Settings.DraftOrder) == 0 {
		for _, p := range l.Participants {
			l.Draft.Settings.DraftOrder = append(l.Draft.Settings.DraftOrder, p.TeamID)
		}
	}
	if err := l.checkSeats(); err != nil {
		return nil, err
	}
	if l.Draft.Settings.Rounds <= 0 {
		return nil, fmt.Errorf("draft %s has invalid rounds %d", draft.ID, l.Draft.Settings.Rounds)
	}

	l.reindex()
	if l.Draft.CurrentPick == 0 {
		l.Draft.CurrentPick = len(l.Picks) + 1
	}
	l.SyncClock()

	return l, nil
}

func (l *Ledger) checkSeats() error {
	order := l.Draft.Settings.DraftOrder
	if len(order) == 0 {
		return fmt.Errorf("draft %s has no participants", l.Draft.ID)
	}
	if len(order) != len(l.Participants) {
		return fmt.Errorf("draft %s order has %d teams but %d participants", l.Draft.ID, len(order), len(l.Participants))
	}
	for i, p := range l.Participants {
		if p.DraftPosition != i+1 {
			return fmt.Errorf("draft %s has gap at draft position %d", l.Draft.ID, i+1)
		}
		if order[i] != p.TeamID {
			return fmt.Errorf("draft %s order does not match participant at position %d", l.Draft.ID, i+1)
		}
	}
	return nil
}

func (l *Ledger) reindex() {
	l.players = make(map[uuid.UUID]int, len(l.Pool))
	for i, p := range l.Pool {
		l.players[p.ID] = i
	}
	l.drafted = make(map[uuid.UUID]int, len(l.Picks))
	for _, p := range l.Picks {
		l.drafted[p.PlayerID] = p.OverallPick
	}
}

// NumTeams is the number of seats in the draft.
func (l *Ledger) NumTeams() int {
	return len(l.Draft.Settings.DraftOrder)
}

// Status returns the draft status.
func (l *Ledger) Status() models.DraftStatus {
	return l.Draft.Status
}

// TeamOnClock returns the team entitled to the current pick, or uuid.Nil
// when nobody is.
func (l *Ledger) TeamOnClock() uuid.UUID {
	return l.Draft.TeamOnClock
}

// IsComplete reports whether every round has been filled.
func (l *Ledger) IsComplete() bool {
	return turn.IsDraftComplete(l.Draft.CurrentPick, l.NumTeams(), l.Draft.Settings.Rounds)
}

// SlotFor returns the sequencer output for an overall pick.
func (l *Ledger) SlotFor(overallPick int) (turn.Slot, uuid.UUID, error) {
	slot, err := turn.TeamForPick(overallPick, l.NumTeams())
	if err != nil {
		return turn.Slot{}, uuid.Nil, err
	}
	return slot, l.Draft.Settings.DraftOrder[slot.TeamPosition-1], nil
}

// SyncClock recomputes the current round and team on the clock from the
// current pick.
func (l *Ledger) SyncClock() {
	if l.Draft.Status == models.DraftStatusCompleted || l.IsComplete() {
		l.Draft.TeamOnClock = uuid.Nil
		l.Draft.CurrentRound = l.Draft.Settings.Rounds
		return
	}
	slot, team, err := l.SlotFor(l.Draft.CurrentPick)
	if err != nil {
		l.Draft.TeamOnClock = uuid.Nil
		return
	}
	l.Draft.CurrentRound = slot.Round
	l.Draft.TeamOnClock = team
}

// Participant returns the seat for teamID.
func (l *Ledger) Participant(teamID uuid.UUID) (*models.DraftParticipant, bool) {
	for i := range l.Participants {
		if l.Participants[i].TeamID == teamID {
			return &l.Participants[i], true
		}
	}
	return nil, false
}

// Player looks up a pool player.
func (l *Ledger) Player(playerID uuid.UUID) (models.Player, bool) {
	i, ok := l.players[playerID]
	if !ok {
		return models.Player{}, false
	}
	return l.Pool[i], true
}

// PlayerPosition returns the roster position of a pool player.
func (l *Ledger) PlayerPosition(playerID uuid.UUID) (string, bool) {
	p, ok := l.Player(playerID)
	if !ok || p.Position == "" {
		return "", false
	}
	return p.Position, true
}

// IsAvailable reports whether playerID is in the pool and not yet drafted.
func (l *Ledger) IsAvailable(playerID uuid.UUID) bool {
	if _, ok := l.players[playerID]; !ok {
		return false
	}
	_, taken := l.drafted[playerID]
	return !taken
}

// Available returns the undrafted players in rank order.
func (l *Ledger) Available() []models.Player {
	out := make([]models.Player, 0, len(l.Pool)-len(l.drafted))
	for _, p := range l.Pool {
		if _, taken := l.drafted[p.ID]; !taken {
			out = append(out, p)
		}
	}
	return out
}

// PicksForTeam counts the committed picks owned by teamID.
func (l *Ledger) PicksForTeam(teamID uuid.UUID) int {
	n := 0
	for _, p := range l.Picks {
		if p.TeamID == teamID {
			n++
		}
	}
	return n
}

// LastPick returns the most recent committed pick.
func (l *Ledger) LastPick() (models.DraftPick, bool) {
	if len(l.Picks) == 0 {
		return models.DraftPick{}, false
	}
	return l.Picks[len(l.Picks)-1], true
}

// AppendPick commits a pick for the current slot and advances the clock.
// The pick's round, position and team are filled from the sequencer.
func (l *Ledger) AppendPick(p models.DraftPick) (models.DraftPick, error) {
	if l.IsComplete() {
		return models.DraftPick{}, fmt.Errorf("draft %s has no picks remaining", l.Draft.ID)
	}
	if p.OverallPick != 0 && p.OverallPick != l.Draft.CurrentPick {
		return models.DraftPick{}, fmt.Errorf("pick %d does not match current pick %d", p.OverallPick, l.Draft.CurrentPick)
	}
	if !l.IsAvailable(p.PlayerID) {
		return models.DraftPick{}, fmt.Errorf("player %s is not available", p.PlayerID)
	}

	slot, team, err := l.SlotFor(l.Draft.CurrentPick)
	if err != nil {
		return models.DraftPick{}, err
	}
	if p.TeamID != uuid.Nil && p.TeamID != team {
		return models.DraftPick{}, fmt.Errorf("team %s does not own pick %d", p.TeamID, l.Draft.CurrentPick)
	}

	p.DraftID = l.Draft.ID
	p.OverallPick = l.Draft.CurrentPick
	p.Round = slot.Round
	p.Pick = slot.PickInRound
	p.TeamID = team
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	l.Picks = append(l.Picks, p)
	l.drafted[p.PlayerID] = p.OverallPick
	l.Draft.CurrentPick++
	l.SyncClock()

	return p, nil
}

// RemoveLastPick drops the most recent pick and moves the clock back to it.
func (l *Ledger) RemoveLastPick() (models.DraftPick, error) {
	last, ok := l.LastPick()
	if !ok {
		return models.DraftPick{}, fmt.Errorf("draft %s has no picks", l.Draft.ID)
	}
	l.Picks = l.Picks[:len(l.Picks)-1]
	delete(l.drafted, last.PlayerID)
	l.Draft.CurrentPick = last.OverallPick
	l.SyncClock()
	return last, nil
}

// ClearPicks removes every pick and rewinds to the first pick.
func (l *Ledger) ClearPicks() {
	l.Picks = nil
	l.drafted = make(map[uuid.UUID]int)
	l.Draft.CurrentPick = 1
	l.SyncClock()
}

// Clone returns a deep copy.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		Draft:        l.Draft,
		Participants: append([]models.DraftParticipant(nil), l.Participants...),
		Picks:        append([]models.DraftPick(nil), l.Picks...),
		Pool:         l.Pool, // never mutated after New
		players:      l.players,
	}
	c.Draft.Settings.DraftOrder = append([]uuid.UUID(nil), l.Draft.Settings.DraftOrder...)
	c.Draft.PickDeadline = copyTime(l.Draft.PickDeadline)
	c.Draft.ScheduledAt = copyTime(l.Draft.ScheduledAt)
	c.Draft.StartedAt = copyTime(l.Draft.StartedAt)
	c.Draft.PausedAt = copyTime(l.Draft.PausedAt)
	c.Draft.CompletedAt = copyTime(l.Draft.CompletedAt)
	c.drafted = make(map[uuid.UUID]int, len(l.drafted))
	for k, v := range l.drafted {
		c.drafted[k] = v
	}
	return c
}

// CheckInvariants verifies the ledger is internally consistent.
func (l *Ledger) CheckInvariants() error {
	if l.Draft.CurrentPick-1 != len(l.Picks) {
		return fmt.Errorf("current pick %d does not follow %d committed picks", l.Draft.CurrentPick, len(l.Picks))
	}

	seen := make(map[uuid.UUID]int, len(l.Picks))
	perTeam := make(map[uuid.UUID]int, l.NumTeams())
	for i, p := range l.Picks {
		if p.OverallPick != i+1 {
			return fmt.Errorf("pick at index %d numbered %d", i, p.OverallPick)
		}
		if prev, dup := seen[p.PlayerID]; dup {
			return fmt.Errorf("player %s drafted at picks %d and %d", p.PlayerID, prev, p.OverallPick)
		}
		seen[p.PlayerID] = p.OverallPick

		_, team, err := l.SlotFor(p.OverallPick)
		if err != nil {
			return err
		}
		if team != p.TeamID {
			return fmt.Errorf("pick %d owned by %s, expected %s", p.OverallPick, p.TeamID, team)
		}
		perTeam[p.TeamID]++
		if perTeam[p.TeamID] > l.Draft.Settings.Rounds {
			return fmt.Errorf("team %s has more than %d picks", p.TeamID, l.Draft.Settings.Rounds)
		}
	}

	if len(seen) != len(l.drafted) {
		return fmt.Errorf("availability index out of sync: %d drafted, %d picks", len(l.drafted), len(seen))
	}

	if l.Draft.Status != models.DraftStatusCompleted && !l.IsComplete() {
		_, team, err := l.SlotFor(l.Draft.CurrentPick)
		if err != nil {
			return err
		}
		if team != l.Draft.TeamOnClock {
			return fmt.Errorf("team on clock %s, expected %s", l.Draft.TeamOnClock, team)
		}
	}

	return nil
}

// TimeRemaining returns the clock left on the current pick at now.
func (l *Ledger) TimeRemaining(now time.Time) time.Duration {
	return timeRemaining(&l.Draft, now)
}

func timeRemaining(d *models.Draft, now time.Time) time.Duration {
	switch d.Status {
	case models.DraftStatusInProgress:
		if d.PickDeadline == nil {
			return 0
		}
		if left := d.PickDeadline.Sub(now); left > 0 {
			return left
		}
		return 0
	case models.DraftStatusPaused:
		return d.PausedRemaining
	default:
		return 0
	}
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
