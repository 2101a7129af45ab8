package orchestrator

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

type opKind int

const (
	opStart opKind = iota
	opPause
	opResume
	opPick
	opTimeout
	opAutopick
	opUndo
	opComplete
	opReset
	opPresence
	opSetAutopick
	opAvailable
)

func (k opKind) String() string {
	switch k {
	case opStart:
		return "start"
	case opPause:
		return "pause"
	case opResume:
		return "resume"
	case opPick:
		return "pick"
	case opTimeout:
		return "timeout"
	case opAutopick:
		return "autopick"
	case opUndo:
		return "undo"
	case opComplete:
		return "complete"
	case opReset:
		return "reset"
	case opPresence:
		return "presence"
	case opSetAutopick:
		return "set_autopick"
	case opAvailable:
		return "available"
	default:
		return "unknown"
	}
}

// command is one entry in a coordinator's inbox. Timer fires and voluntary
// autopicks carry the pick number they were issued for.
type command struct {
	op         opKind
	teamID     uuid.UUID
	playerID   uuid.UUID
	pick       int
	generation uint64
	flag       bool
	reply      chan result
}

type result struct {
	snapshot *ledger.Snapshot
	pick     models.DraftPick
	players  []models.Player
	err      error
}

// Coordinator is the single writer for one draft. Every operation, including
// timer fires, passes through its inbox and runs on its loop goroutine.
type Coordinator struct {
	draftID uuid.UUID
	o       *Orchestrator
	inbox   chan command
	done    chan struct{}

	// owned by the loop goroutine
	ledger  *ledger.Ledger
	timer   *deadlineTimer
	pending []command
	halted  bool

	snapshot atomic.Pointer[ledger.Snapshot]
}

func newCoordinator(o *Orchestrator, l *ledger.Ledger) *Coordinator {
	c := &Coordinator{
		draftID: l.Draft.ID,
		o:       o,
		inbox:   make(chan command, o.inboxSize),
		done:    make(chan struct{}),
		ledger:  l,
	}
	c.timer = newDeadlineTimer(o.clock, c.enqueueTimeout)
	c.armFromLedger()
	c.snapshot.Store(l.Snapshot(o.clock.Now()))
	c.queueVoluntaryAutopick()
	return c
}

// Snapshot returns the last committed state with the pick clock read now.
// Safe for concurrent use.
func (c *Coordinator) Snapshot() *ledger.Snapshot {
	return c.snapshot.Load().At(c.o.clock.Now())
}

// submit enqueues cmd and waits for its result. Once enqueued the command
// runs even if ctx ends first.
func (c *Coordinator) submit(ctx context.Context, cmd command) (result, error) {
	cmd.reply = make(chan result, 1)

	select {
	case c.inbox <- cmd:
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-c.done:
		return result{}, fmt.Errorf("draft %s coordinator stopped", c.draftID)
	}

	select {
	case res := <-cmd.reply:
		return res, res.err
	case <-ctx.Done():
		return result{}, ctx.Err()
	case <-c.done:
		return result{}, fmt.Errorf("draft %s coordinator stopped", c.draftID)
	}
}

// enqueueTimeout is the deadline timer callback. It never touches the ledger.
func (c *Coordinator) enqueueTimeout(pick int, generation uint64) {
	select {
	case c.inbox <- command{op: opTimeout, pick: pick, generation: generation}:
		log.Debug().Str("draft_id", c.draftID.String()).Int("pick", pick).Msg("timer fired - enqueued for processing")
	case <-c.done:
	}
}

func (c *Coordinator) run(ctx context.Context) {
	defer close(c.done)
	defer c.timer.disarm()

	for {
		if len(c.pending) > 0 {
			cmd := c.pending[0]
			c.pending = c.pending[1:]
			c.dispatch(ctx, cmd)
			continue
		}

		select {
		case <-ctx.Done():
			log.Debug().Str("draft_id", c.draftID.String()).Msg("coordinator shutting down")
			return
		case cmd := <-c.inbox:
			c.dispatch(ctx, cmd)
		}
	}
}

func (c *Coordinator) dispatch(ctx context.Context, cmd command) {
	res := c.handle(ctx, cmd)

	if res.err != nil {
		event := log.Debug()
		if !drafterr.IsRejection(res.err) && !isStale(res.err) {
			event = log.Error()
		}
		event.Err(res.err).
			Str("draft_id", c.draftID.String()).
			Str("op", cmd.op.String()).
			Msg("draft operation failed")
	}

	if cmd.reply != nil {
		cmd.reply <- res
	}
}

// transition describes what a handler changed on its cloned ledger.
type transition struct {
	name         events.Transition
	appended     *models.DraftPick
	removed      *models.DraftPick
	clearPicks   bool
	participants []models.DraftParticipant
	presence     *events.ParticipantPresenceChangedPayload
	armTimer     bool
	armFor       time.Duration
	disarm       bool
}

// commit validates next, persists it with its events, then makes it the
// live ledger, adjusts the timer and publishes. StateChanged is always the
// last event and its snapshot carries its own sequence number.
func (c *Coordinator) commit(ctx context.Context, next *ledger.Ledger, t transition) (*ledger.Snapshot, error) {
	now := c.o.clock.Now()
	next.Draft.UpdatedAt = now

	switch {
	case t.armTimer:
		deadline := now.Add(t.armFor)
		next.Draft.PickDeadline = &deadline
	case t.disarm:
		next.Draft.PickDeadline = nil
	}

	if err := checkTransition(next); err != nil {
		return nil, c.resync(ctx, err)
	}

	seq := next.Draft.Sequence
	var envs []events.Envelope
	add := func(eventType events.EventType, payload any) error {
		seq++
		env, err := events.NewEnvelope(c.draftID, seq, eventType, payload, now)
		if err != nil {
			return err
		}
		envs = append(envs, env)
		return nil
	}

	if t.appended != nil {
		if err := add(events.EventTypePickMade, pickMadePayload(next, *t.appended)); err != nil {
			return nil, err
		}
	}
	if t.presence != nil {
		if err := add(events.EventTypeParticipantPresenceChanged, t.presence); err != nil {
			return nil, err
		}
	}
	if t.armTimer {
		if err := add(events.EventTypeTimerArmed, events.TimerArmedPayload{
			OverallPick: next.Draft.CurrentPick,
			TeamID:      next.Draft.TeamOnClock.String(),
			Deadline:    *next.Draft.PickDeadline,
			DurationMs:  t.armFor.Milliseconds(),
		}); err != nil {
			return nil, err
		}
	}

	next.Draft.Sequence = seq + 1
	snap := next.Snapshot(now)
	if err := add(events.EventTypeStateChanged, events.StateChangedPayload{
		Transition: t.name,
		Snapshot:   snap,
	}); err != nil {
		return nil, err
	}

	persistCtx, cancel := context.WithTimeout(ctx, defaultPersistTimeout)
	defer cancel()
	if err := c.o.store.Persist(persistCtx, store.Change{
		Draft:        next.Draft,
		AppendedPick: t.appended,
		RemovedPick:  t.removed,
		ClearPicks:   t.clearPicks,
		Participants: t.participants,
		Events:       envs,
	}); err != nil {
		if isStale(err) {
			// another writer moved the stored draft
			return nil, c.resync(ctx, err)
		}
		return nil, fmt.Errorf("failed to persist %s: %w", t.name, err)
	}

	c.ledger = next
	switch {
	case t.armTimer:
		c.timer.arm(next.Draft.CurrentPick, t.armFor)
	case t.disarm:
		c.timer.disarm()
	}

	c.snapshot.Store(snap)
	for _, env := range envs {
		c.o.publisher.Publish(env)
	}
	c.o.metrics.Transition(string(t.name))

	log.Info().
		Str("draft_id", c.draftID.String()).
		Str("transition", string(t.name)).
		Str("status", string(next.Draft.Status)).
		Int("current_pick", next.Draft.CurrentPick).
		Int64("sequence", next.Draft.Sequence).
		Msg("draft transition committed")

	c.queueVoluntaryAutopick()
	return snap, nil
}

// checkTransition verifies ledger invariants and that the clock is running
// exactly when the draft is in progress.
func checkTransition(l *ledger.Ledger) error {
	if err := l.CheckInvariants(); err != nil {
		return err
	}
	running := l.Draft.PickDeadline != nil
	if inProgress := l.Draft.Status == models.DraftStatusInProgress; inProgress != running {
		return fmt.Errorf("status %s with deadline set=%t", l.Draft.Status, running)
	}
	return nil
}

// resync reloads the draft from the store after an invariant violation or a
// stale write and broadcasts a full snapshot. If the reload fails the draft
// halts.
func (c *Coordinator) resync(ctx context.Context, cause error) error {
	log.Error().
		Err(cause).
		Str("draft_id", c.draftID.String()).
		Msg("draft diverged from store, resyncing")

	l, err := c.reload(ctx)
	if err != nil {
		c.halted = true
		c.timer.disarm()
		c.o.metrics.Resync(true)
		log.Error().Err(err).Str("draft_id", c.draftID.String()).Msg("resync failed, draft halted")
		return fmt.Errorf("%v: %w", cause, drafterr.ErrDraftHalted)
	}

	c.ledger = l
	c.armFromLedger()

	now := c.o.clock.Now()
	l.Draft.Sequence++
	snap := l.Snapshot(now)
	env, err := events.NewEnvelope(c.draftID, l.Draft.Sequence, events.EventTypeStateChanged, events.StateChangedPayload{
		Transition: events.TransitionResync,
		Resync:     true,
		Snapshot:   snap,
	}, now)
	if err != nil {
		return err
	}
	if err := c.o.store.Persist(ctx, store.Change{Draft: l.Draft, Events: []events.Envelope{env}}); err != nil {
		log.Warn().Err(err).Str("draft_id", c.draftID.String()).Msg("failed to persist resync event")
	}

	c.snapshot.Store(snap)
	c.o.publisher.Publish(env)
	c.o.metrics.Resync(false)
	return fmt.Errorf("draft resynced: %w", cause)
}

func (c *Coordinator) reload(ctx context.Context) (*ledger.Ledger, error) {
	rec, err := c.o.store.LoadDraft(ctx, c.draftID)
	if err != nil {
		return nil, err
	}
	l, err := ledger.New(rec.Draft, rec.Participants, rec.Picks, c.ledger.Pool)
	if err != nil {
		return nil, err
	}
	if err := l.CheckInvariants(); err != nil {
		return nil, err
	}
	return l, nil
}

// armFromLedger starts the timer to match persisted state. An elapsed
// deadline fires at once.
func (c *Coordinator) armFromLedger() {
	l := c.ledger
	if l.Draft.Status != models.DraftStatusInProgress {
		c.timer.disarm()
		return
	}

	now := c.o.clock.Now()
	if l.Draft.PickDeadline == nil {
		deadline := now.Add(l.Draft.Settings.PickInterval())
		l.Draft.PickDeadline = &deadline
	}
	remaining := l.Draft.PickDeadline.Sub(now)
	if remaining < 0 {
		remaining = 0
	}
	c.timer.arm(l.Draft.CurrentPick, remaining)
}

// queueVoluntaryAutopick schedules an autopick when the team now on the
// clock has opted in. Only in-progress drafts autopick voluntarily.
func (c *Coordinator) queueVoluntaryAutopick() {
	l := c.ledger
	if l.Draft.Status != models.DraftStatusInProgress {
		return
	}
	p, ok := l.Participant(l.Draft.TeamOnClock)
	if !ok || !p.AutopickEnabled {
		return
	}
	c.pending = append(c.pending, command{op: opAutopick, pick: l.Draft.CurrentPick})
}

func pickMadePayload(l *ledger.Ledger, p models.DraftPick) events.PickMadePayload {
	player, _ := l.Player(p.PlayerID)
	return events.PickMadePayload{
		PickID:      p.ID.String(),
		TeamID:      p.TeamID.String(),
		PlayerID:    p.PlayerID.String(),
		PlayerName:  player.FullName,
		Position:    player.Position,
		Round:       p.Round,
		Pick:        p.Pick,
		OverallPick: p.OverallPick,
		IsAutoPick:  p.IsAutoPick,
		MadeAt:      p.PickedAt,
	}
}
