package orchestrator

//go:generate mockgen -package=mocks -destination=mocks/mock_collaborators.go github.com/mcdev12/dynasty-draft/go/internal/draft/orchestrator Ranker,RosterNeeds,CommissionerChecker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

const (
	defaultInboxSize       = 64
	defaultAutopickTimeout = 2 * time.Second
	defaultPersistTimeout  = 5 * time.Second
	defaultRetryDelay      = time.Second
)

// Ranker recommends the best available player for a team.
type Ranker interface {
	BestAvailable(ctx context.Context, draftID, teamID uuid.UUID, available []models.Player, needs []string) (uuid.UUID, bool, error)
}

// RosterNeeds reports the roster positions a team can still fill.
type RosterNeeds interface {
	NeedsFor(ctx context.Context, draftID, teamID uuid.UUID) ([]string, error)
}

// CommissionerChecker answers whether a user runs a league.
type CommissionerChecker interface {
	IsCommissioner(ctx context.Context, leagueID, userID uuid.UUID) (bool, error)
}

// EventPublisher receives committed events in commit order.
type EventPublisher interface {
	Publish(env events.Envelope)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces the real clock, used by tests.
func WithClock(clock clockwork.Clock) Option {
	return func(o *Orchestrator) { o.clock = clock }
}

// WithRanker sets the external ranking source used for autopicks.
func WithRanker(r Ranker) Option {
	return func(o *Orchestrator) { o.resolver.ranker = r }
}

// WithRosterNeeds sets the roster need evaluator.
func WithRosterNeeds(n RosterNeeds) Option {
	return func(o *Orchestrator) { o.resolver.needs = n }
}

// WithAutopickTimeout bounds each external call made while autopicking.
func WithAutopickTimeout(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.resolver.timeout = d
		}
	}
}

// WithInboxSize sets the per-draft command queue capacity.
func WithInboxSize(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.inboxSize = n
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// Orchestrator owns one Coordinator per active draft and routes requests to it.
type Orchestrator struct {
	store      store.Store
	pool       store.PlayerPool
	auth       CommissionerChecker
	publisher  EventPublisher
	resolver   *autopickResolver
	clock      clockwork.Clock
	metrics    Metrics
	inboxSize  int
	instanceID string // unique ID for this orchestrator instance

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu           sync.Mutex
	coordinators map[uuid.UUID]*Coordinator
}

// New creates an orchestrator. Coordinators are started lazily on first use
// or eagerly by Recover.
func New(st store.Store, pool store.PlayerPool, auth CommissionerChecker, publisher EventPublisher, opts ...Option) *Orchestrator {
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator{
		store:        st,
		pool:         pool,
		auth:         auth,
		publisher:    publisher,
		resolver:     &autopickResolver{timeout: defaultAutopickTimeout},
		clock:        clockwork.NewRealClock(),
		metrics:      NoOpMetrics{},
		inboxSize:    defaultInboxSize,
		instanceID:   uuid.New().String()[:8], // short ID for logging
		ctx:          ctx,
		cancel:       cancel,
		coordinators: make(map[uuid.UUID]*Coordinator),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run recovers every unfinished draft, then blocks until ctx is done and
// stops all coordinators.
func (o *Orchestrator) Run(ctx context.Context) error {
	log.Info().Str("instance", o.instanceID).Msg("orchestrator started")

	if err := o.Recover(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	log.Info().Str("instance", o.instanceID).Msg("orchestrator shutdown requested")
	return o.Close()
}

// Recover activates every draft the store reports as not completed. In-progress
// drafts re-arm with whatever time was left before their persisted deadline.
func (o *Orchestrator) Recover(ctx context.Context) error {
	ids, err := o.store.ListActiveDraftIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active drafts: %w", err)
	}

	for _, id := range ids {
		if _, err := o.coordinator(ctx, id); err != nil {
			log.Error().Err(err).Str("draft_id", id.String()).Msg("failed to recover draft")
			continue
		}
	}

	log.Info().Str("instance", o.instanceID).Int("drafts", len(ids)).Msg("recovered active drafts")
	return nil
}

// Close stops every coordinator and waits for their loops to exit.
func (o *Orchestrator) Close() error {
	o.cancel()
	o.wg.Wait()

	o.mu.Lock()
	o.coordinators = make(map[uuid.UUID]*Coordinator)
	o.mu.Unlock()
	o.metrics.ActiveDrafts(0)

	log.Info().Str("instance", o.instanceID).Msg("all coordinators shut down")
	return nil
}

// ActivateDraft loads a draft into memory so it can accept operations.
func (o *Orchestrator) ActivateDraft(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error) {
	c, err := o.coordinator(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

// ListActiveDrafts returns the ids of drafts loaded in this process.
func (o *Orchestrator) ListActiveDrafts(ctx context.Context) ([]uuid.UUID, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(o.coordinators))
	for id := range o.coordinators {
		ids = append(ids, id)
	}
	return ids, nil
}

// StartDraft moves a scheduled draft to in progress and starts the clock for pick 1.
func (o *Orchestrator) StartDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return o.commissionerOp(ctx, draftID, commissionerID, opStart)
}

// PauseDraft freezes the clock.
func (o *Orchestrator) PauseDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return o.commissionerOp(ctx, draftID, commissionerID, opPause)
}

// ResumeDraft restarts the clock with the time left when paused.
func (o *Orchestrator) ResumeDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return o.commissionerOp(ctx, draftID, commissionerID, opResume)
}

// CompleteDraft forces the draft to its terminal state.
func (o *Orchestrator) CompleteDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return o.commissionerOp(ctx, draftID, commissionerID, opComplete)
}

// ResetDraft clears every pick and returns the draft to scheduled.
func (o *Orchestrator) ResetDraft(ctx context.Context, draftID, commissionerID uuid.UUID) (models.DraftStatus, error) {
	return o.commissionerOp(ctx, draftID, commissionerID, opReset)
}

// UndoLastPick removes the most recent pick and puts its team back on the clock.
func (o *Orchestrator) UndoLastPick(ctx context.Context, draftID, commissionerID uuid.UUID) (*ledger.Snapshot, error) {
	c, err := o.authorize(ctx, draftID, commissionerID)
	if err != nil {
		return nil, err
	}
	res, err := c.submit(ctx, command{op: opUndo})
	if err != nil {
		return nil, err
	}
	return res.snapshot, nil
}

// SubmitPick drafts playerID for teamID if the team is on the clock.
func (o *Orchestrator) SubmitPick(ctx context.Context, draftID, teamID, playerID uuid.UUID) (models.DraftPick, error) {
	c, err := o.coordinator(ctx, draftID)
	if err != nil {
		return models.DraftPick{}, err
	}
	res, err := c.submit(ctx, command{op: opPick, teamID: teamID, playerID: playerID})
	if err != nil {
		return models.DraftPick{}, err
	}
	return res.pick, nil
}

// SetAutopick toggles voluntary autopick for a team.
func (o *Orchestrator) SetAutopick(ctx context.Context, draftID, teamID uuid.UUID, enabled bool) (*ledger.Snapshot, error) {
	c, err := o.coordinator(ctx, draftID)
	if err != nil {
		return nil, err
	}
	res, err := c.submit(ctx, command{op: opSetAutopick, teamID: teamID, flag: enabled})
	if err != nil {
		return nil, err
	}
	return res.snapshot, nil
}

// SetPresence records a team connecting or disconnecting.
func (o *Orchestrator) SetPresence(ctx context.Context, draftID, teamID uuid.UUID, online bool) error {
	c, err := o.coordinator(ctx, draftID)
	if err != nil {
		return err
	}
	_, err = c.submit(ctx, command{op: opPresence, teamID: teamID, flag: online})
	return err
}

// GetSnapshot returns the latest committed state without entering the queue.
func (o *Orchestrator) GetSnapshot(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error) {
	c, err := o.coordinator(ctx, draftID)
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

// ListAvailablePlayers returns the undrafted players in rank order.
func (o *Orchestrator) ListAvailablePlayers(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	c, err := o.coordinator(ctx, draftID)
	if err != nil {
		return nil, err
	}
	res, err := c.submit(ctx, command{op: opAvailable})
	if err != nil {
		return nil, err
	}
	return res.players, nil
}

func (o *Orchestrator) commissionerOp(ctx context.Context, draftID, commissionerID uuid.UUID, op opKind) (models.DraftStatus, error) {
	c, err := o.authorize(ctx, draftID, commissionerID)
	if err != nil {
		return "", err
	}
	res, err := c.submit(ctx, command{op: op})
	if err != nil {
		return "", err
	}
	return res.snapshot.Draft.Status, nil
}

// authorize resolves the draft and checks the caller runs its league.
func (o *Orchestrator) authorize(ctx context.Context, draftID, userID uuid.UUID) (*Coordinator, error) {
	c, err := o.coordinator(ctx, draftID)
	if err != nil {
		return nil, err
	}

	leagueID := c.Snapshot().Draft.LeagueID
	ok, err := o.auth.IsCommissioner(ctx, leagueID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check commissioner: %w", err)
	}
	if !ok {
		log.Warn().
			Str("draft_id", draftID.String()).
			Str("user_id", userID.String()).
			Msg("rejected commissioner operation")
		return nil, fmt.Errorf("user %s: %w", userID, drafterr.ErrUnauthorized)
	}
	return c, nil
}

// coordinator returns the running coordinator for a draft, loading it from
// the store on first use. The store is read without holding o.mu; when two
// callers race to activate the same draft the first to register wins.
func (o *Orchestrator) coordinator(ctx context.Context, draftID uuid.UUID) (*Coordinator, error) {
	o.mu.Lock()
	c, ok := o.coordinators[draftID]
	o.mu.Unlock()
	if ok {
		return c, nil
	}
	if o.ctx.Err() != nil {
		return nil, fmt.Errorf("orchestrator closed")
	}

	l, err := o.load(ctx, draftID)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	if c, ok := o.coordinators[draftID]; ok {
		return c, nil
	}
	if o.ctx.Err() != nil {
		return nil, fmt.Errorf("orchestrator closed")
	}

	c = newCoordinator(o, l)
	o.coordinators[draftID] = c
	o.metrics.ActiveDrafts(len(o.coordinators))

	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		c.run(o.ctx)
	}()

	log.Info().
		Str("draft_id", draftID.String()).
		Str("status", string(l.Draft.Status)).
		Int("current_pick", l.Draft.CurrentPick).
		Msg("draft activated")

	return c, nil
}

// load rebuilds a ledger from the store and the player pool.
func (o *Orchestrator) load(ctx context.Context, draftID uuid.UUID) (*ledger.Ledger, error) {
	rec, err := o.store.LoadDraft(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	pool, err := o.pool.ListPool(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player pool: %w", err)
	}

	l, err := ledger.New(rec.Draft, rec.Participants, rec.Picks, pool)
	if err != nil {
		return nil, fmt.Errorf("failed to build ledger: %w", err)
	}
	if err := l.CheckInvariants(); err != nil {
		return nil, fmt.Errorf("draft %s failed invariant check: %w", draftID, err)
	}
	return l, nil
}
