package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/pick"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// handle runs one command against the live ledger. Handlers mutate a clone
// and hand it to commit, so a rejected or failed operation leaves no trace.
func (c *Coordinator) handle(ctx context.Context, cmd command) result {
	if c.halted {
		return result{err: fmt.Errorf("draft %s: %w", c.draftID, drafterr.ErrDraftHalted)}
	}

	switch cmd.op {
	case opStart:
		return c.handleStart(ctx)
	case opPause:
		return c.handlePause(ctx)
	case opResume:
		return c.handleResume(ctx)
	case opPick:
		return c.handlePick(ctx, cmd.teamID, cmd.playerID)
	case opTimeout:
		return c.handleTimeout(ctx, cmd.pick, cmd.generation)
	case opAutopick:
		return c.handleVoluntaryAutopick(ctx, cmd.pick)
	case opUndo:
		return c.handleUndo(ctx)
	case opComplete:
		return c.handleComplete(ctx)
	case opReset:
		return c.handleReset(ctx)
	case opPresence:
		return c.handlePresence(ctx, cmd.teamID, cmd.flag)
	case opSetAutopick:
		return c.handleSetAutopick(ctx, cmd.teamID, cmd.flag)
	case opAvailable:
		return result{players: c.ledger.Available()}
	default:
		return result{err: fmt.Errorf("unknown operation %d", cmd.op)}
	}
}

func (c *Coordinator) invalid(op string) result {
	return result{err: fmt.Errorf("cannot %s draft in status %s: %w", op, c.ledger.Draft.Status, drafterr.ErrInvalidTransition)}
}

func (c *Coordinator) handleStart(ctx context.Context) result {
	if c.ledger.Draft.Status != models.DraftStatusScheduled {
		return c.invalid("start")
	}
	if c.ledger.Draft.DraftType != models.DraftTypeSnake {
		return result{err: fmt.Errorf("draft type %s: %w", c.ledger.Draft.DraftType, drafterr.ErrUnsupportedDraftType)}
	}

	now := c.o.clock.Now()
	next := c.ledger.Clone()
	next.Draft.Status = models.DraftStatusInProgress
	next.Draft.StartedAt = &now
	next.Draft.PausedAt = nil
	next.Draft.PausedRemaining = 0
	next.SyncClock()

	snap, err := c.commit(ctx, next, transition{
		name:     events.TransitionDraftStarted,
		armTimer: true,
		armFor:   next.Draft.Settings.PickInterval(),
	})
	return result{snapshot: snap, err: err}
}

func (c *Coordinator) handlePause(ctx context.Context) result {
	if c.ledger.Draft.Status != models.DraftStatusInProgress {
		return c.invalid("pause")
	}

	now := c.o.clock.Now()
	next := c.ledger.Clone()
	next.Draft.PausedRemaining = c.ledger.TimeRemaining(now)
	next.Draft.Status = models.DraftStatusPaused
	next.Draft.PausedAt = &now

	snap, err := c.commit(ctx, next, transition{
		name:   events.TransitionDraftPaused,
		disarm: true,
	})
	return result{snapshot: snap, err: err}
}

func (c *Coordinator) handleResume(ctx context.Context) result {
	if c.ledger.Draft.Status != models.DraftStatusPaused {
		return c.invalid("resume")
	}

	next := c.ledger.Clone()
	remaining := next.Draft.PausedRemaining
	next.Draft.Status = models.DraftStatusInProgress
	next.Draft.PausedAt = nil
	next.Draft.PausedRemaining = 0

	snap, err := c.commit(ctx, next, transition{
		name:     events.TransitionDraftResumed,
		armTimer: true,
		armFor:   remaining,
	})
	return result{snapshot: snap, err: err}
}

func (c *Coordinator) handlePick(ctx context.Context, teamID, playerID uuid.UUID) result {
	if rej := pick.Validate(c.ledger, teamID, playerID, nil); rej != nil {
		c.o.metrics.PickRejected(string(rej.Reason))
		return result{err: rej}
	}

	// Roster need is only consulted once the cheap checks pass.
	needs := c.o.resolver.needsFor(ctx, c.draftID, teamID)
	if rej := pick.Validate(c.ledger, teamID, playerID, needs); rej != nil {
		c.o.metrics.PickRejected(string(rej.Reason))
		return result{err: rej}
	}

	return c.commitPick(ctx, teamID, playerID, false)
}

// commitPick appends a pick through the one path shared by manual and
// automatic picks, then either re-arms for the next pick or completes.
func (c *Coordinator) commitPick(ctx context.Context, teamID, playerID uuid.UUID, auto bool) result {
	now := c.o.clock.Now()
	next := c.ledger.Clone()

	p, err := next.AppendPick(models.DraftPick{
		TeamID:     teamID,
		PlayerID:   playerID,
		PickedAt:   now,
		IsAutoPick: auto,
	})
	if err != nil {
		return result{err: fmt.Errorf("failed to append pick: %w", err)}
	}

	t := transition{name: events.TransitionPickMade, appended: &p}
	if next.IsComplete() {
		next.Draft.Status = models.DraftStatusCompleted
		next.Draft.CompletedAt = &now
		next.SyncClock()
		t.name = events.TransitionDraftCompleted
		t.disarm = true
	} else {
		t.armTimer = true
		t.armFor = next.Draft.Settings.PickInterval()
	}

	snap, err := c.commit(ctx, next, t)
	if err != nil {
		return result{err: err}
	}

	c.o.metrics.PickCommitted(auto)
	log.Info().
		Str("draft_id", c.draftID.String()).
		Str("team_id", teamID.String()).
		Str("player_id", playerID.String()).
		Int("overall_pick", p.OverallPick).
		Bool("auto", auto).
		Msg("pick committed")

	return result{snapshot: snap, pick: p}
}

func (c *Coordinator) handleTimeout(ctx context.Context, pickNumber int, generation uint64) result {
	l := c.ledger
	if l.Draft.Status != models.DraftStatusInProgress ||
		pickNumber != l.Draft.CurrentPick ||
		!c.timer.isCurrent(pickNumber, generation) {
		c.o.metrics.StaleTimeout()
		return result{err: fmt.Errorf("timeout for pick %d (current %d): %w", pickNumber, l.Draft.CurrentPick, drafterr.ErrStaleOperation)}
	}
	c.timer.expire()

	log.Info().
		Str("draft_id", c.draftID.String()).
		Int("pick", pickNumber).
		Str("team_id", l.Draft.TeamOnClock.String()).
		Msg("auto-pick timeout firing")

	res := c.autopick(ctx)
	if res.err != nil && c.ledger.Draft.Status == models.DraftStatusInProgress && !c.timer.armed {
		// Keep the draft moving if the commit failed.
		c.timer.arm(c.ledger.Draft.CurrentPick, defaultRetryDelay)
	}
	return res
}

func (c *Coordinator) handleVoluntaryAutopick(ctx context.Context, pickNumber int) result {
	l := c.ledger
	if l.Draft.Status != models.DraftStatusInProgress || pickNumber != l.Draft.CurrentPick {
		return result{err: fmt.Errorf("voluntary autopick for pick %d: %w", pickNumber, drafterr.ErrStaleOperation)}
	}
	p, ok := l.Participant(l.Draft.TeamOnClock)
	if !ok || !p.AutopickEnabled {
		return result{err: fmt.Errorf("autopick disabled for pick %d: %w", pickNumber, drafterr.ErrStaleOperation)}
	}
	return c.autopick(ctx)
}

// autopick picks for the team on the clock. It only fails if the pool is
// empty or persistence fails; an empty pool pauses the draft.
func (c *Coordinator) autopick(ctx context.Context) result {
	teamID := c.ledger.Draft.TeamOnClock

	playerID, source, err := c.o.resolver.choosePlayer(ctx, c.ledger, teamID)
	if errors.Is(err, drafterr.ErrNoPlayersAvailable) {
		log.Error().Str("draft_id", c.draftID.String()).Msg("player pool exhausted, pausing draft")
		res := c.handlePause(ctx)
		if res.err != nil {
			return res
		}
		return result{snapshot: res.snapshot, err: err}
	}
	if err != nil {
		return result{err: err}
	}

	c.o.metrics.AutopickSource(string(source))
	return c.commitPick(ctx, teamID, playerID, true)
}

func (c *Coordinator) handleUndo(ctx context.Context) result {
	status := c.ledger.Draft.Status
	if status != models.DraftStatusInProgress && status != models.DraftStatusPaused {
		return c.invalid("undo pick in")
	}
	if len(c.ledger.Picks) == 0 {
		return result{err: fmt.Errorf("no picks to undo: %w", drafterr.ErrInvalidTransition)}
	}

	next := c.ledger.Clone()
	removed, err := next.RemoveLastPick()
	if err != nil {
		return result{err: err}
	}

	t := transition{name: events.TransitionPickUndone, removed: &removed}
	interval := next.Draft.Settings.PickInterval()
	if status == models.DraftStatusInProgress {
		t.armTimer = true
		t.armFor = interval
	} else {
		next.Draft.PausedRemaining = interval
	}

	snap, err := c.commit(ctx, next, t)
	if err != nil {
		return result{err: err}
	}

	log.Info().
		Str("draft_id", c.draftID.String()).
		Int("overall_pick", removed.OverallPick).
		Str("player_id", removed.PlayerID.String()).
		Msg("pick undone")
	return result{snapshot: snap}
}

func (c *Coordinator) handleComplete(ctx context.Context) result {
	if c.ledger.Draft.Status == models.DraftStatusCompleted {
		return c.invalid("complete")
	}

	now := c.o.clock.Now()
	next := c.ledger.Clone()
	next.Draft.Status = models.DraftStatusCompleted
	next.Draft.CompletedAt = &now
	next.Draft.PausedAt = nil
	next.Draft.PausedRemaining = 0
	next.SyncClock()

	snap, err := c.commit(ctx, next, transition{
		name:   events.TransitionDraftCompleted,
		disarm: true,
	})
	return result{snapshot: snap, err: err}
}

func (c *Coordinator) handleReset(ctx context.Context) result {
	if c.ledger.Draft.Status == models.DraftStatusInProgress {
		return c.invalid("reset")
	}

	next := c.ledger.Clone()
	next.Draft.Status = models.DraftStatusScheduled
	next.Draft.StartedAt = nil
	next.Draft.PausedAt = nil
	next.Draft.CompletedAt = nil
	next.Draft.PausedRemaining = 0
	next.ClearPicks()

	snap, err := c.commit(ctx, next, transition{
		name:       events.TransitionDraftReset,
		clearPicks: true,
		disarm:     true,
	})
	return result{snapshot: snap, err: err}
}

func (c *Coordinator) handlePresence(ctx context.Context, teamID uuid.UUID, online bool) result {
	current, ok := c.ledger.Participant(teamID)
	if !ok {
		return result{err: fmt.Errorf("team %s: %w", teamID, drafterr.ErrTeamNotInDraft)}
	}
	if current.Online == online {
		return result{snapshot: c.Snapshot()}
	}

	next := c.ledger.Clone()
	p, _ := next.Participant(teamID)
	p.Online = online

	snap, err := c.commit(ctx, next, transition{
		name:         events.TransitionPresenceChanged,
		participants: []models.DraftParticipant{*p},
		presence: &events.ParticipantPresenceChangedPayload{
			TeamID:    teamID.String(),
			Online:    online,
			ChangedAt: c.o.clock.Now(),
		},
	})
	return result{snapshot: snap, err: err}
}

func (c *Coordinator) handleSetAutopick(ctx context.Context, teamID uuid.UUID, enabled bool) result {
	current, ok := c.ledger.Participant(teamID)
	if !ok {
		return result{err: fmt.Errorf("team %s: %w", teamID, drafterr.ErrTeamNotInDraft)}
	}
	if current.AutopickEnabled == enabled {
		return result{snapshot: c.Snapshot()}
	}

	next := c.ledger.Clone()
	p, _ := next.Participant(teamID)
	p.AutopickEnabled = enabled

	snap, err := c.commit(ctx, next, transition{
		name:         events.TransitionAutopickToggled,
		participants: []models.DraftParticipant{*p},
	})
	return result{snapshot: snap, err: err}
}

func isStale(err error) bool {
	return errors.Is(err, drafterr.ErrStaleOperation)
}
