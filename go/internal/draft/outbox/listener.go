package outbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
)

type ListenerConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel name to LISTEN on
	FallbackInterval time.Duration // How often to poll for missed events
	MaxRetries       int
	RetryDelay       time.Duration
	PingInterval     time.Duration
	BatchSize        int32 // Max events to fetch per batch
}

func DefaultListenerConfig() ListenerConfig {
	return ListenerConfig{
		NotifyChannel:    "draft_outbox_events",
		FallbackInterval: 30 * time.Second,
		MaxRetries:       5,
		RetryDelay:       200 * time.Millisecond,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// Notifier is the part of *pq.Listener the relay uses.
type Notifier interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// NewPQListener opens a LISTEN connection on cfg.NotifyChannel.
func NewPQListener(cfg ListenerConfig) (*pq.Listener, error) {
	l := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("listener event")
			}
		},
	)
	if err := l.Listen(cfg.NotifyChannel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen to channel: %w", err)
	}

	log.Info().
		Str("channel", cfg.NotifyChannel).
		Msg("listening for notifications")
	return l, nil
}

// Relay moves outbox rows to the bus. Notifications give low latency; the
// fallback poll picks up anything a notification missed. Events of one draft
// are published in sequence order: once a publish fails, later events of that
// draft wait for the next poll.
type Relay struct {
	source    Source
	publisher Publisher
	notifier  Notifier
	metrics   MetricsCollector
	clock     clockwork.Clock
	cfg       ListenerConfig

	// blocked is only touched from the Start goroutine.
	blocked map[uuid.UUID]struct{}

	mu        sync.Mutex
	running   bool
	processed uint64
	lastEvent time.Time
}

type RelayOption func(*Relay)

func WithRelayMetrics(m MetricsCollector) RelayOption {
	return func(r *Relay) { r.metrics = m }
}

func WithRelayClock(c clockwork.Clock) RelayOption {
	return func(r *Relay) { r.clock = c }
}

func NewRelay(source Source, publisher Publisher, notifier Notifier, cfg ListenerConfig, opts ...RelayOption) *Relay {
	r := &Relay{
		source:    source,
		publisher: publisher,
		notifier:  notifier,
		metrics:   NoOpMetricsCollector{},
		clock:     clockwork.NewRealClock(),
		cfg:       cfg,
		blocked:   make(map[uuid.UUID]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start drains the backlog and then relays until ctx is done.
func (r *Relay) Start(ctx context.Context) error {
	log.Info().
		Str("channel", r.cfg.NotifyChannel).
		Dur("ping_interval", r.cfg.PingInterval).
		Dur("fallback_interval", r.cfg.FallbackInterval).
		Msg("relay started")

	r.setRunning(true)
	defer r.setRunning(false)

	if err := r.processUnsent(ctx); err != nil {
		log.Error().Err(err).Msg("failed to drain outbox backlog")
	}

	pingTicker := r.clock.NewTicker(r.cfg.PingInterval)
	fallbackTicker := r.clock.NewTicker(r.cfg.FallbackInterval)
	defer pingTicker.Stop()
	defer fallbackTicker.Stop()

	notes := r.notifier.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("relay shutting down")
			return r.notifier.Close()
		case note := <-notes:
			if note == nil {
				// the connection was re-established; anything sent meanwhile is in the table
				if err := r.processUnsent(ctx); err != nil {
					log.Error().Err(err).Msg("failed to process unsent events after reconnect")
				}
				continue
			}
			if err := r.handleNotification(ctx, note.Extra); err != nil {
				log.Error().Err(err).Msg("failed to handle notification")
			}
		case <-fallbackTicker.Chan():
			if err := r.processUnsent(ctx); err != nil {
				log.Error().Err(err).Msg("failed to process unsent events")
			}
		case <-pingTicker.Chan():
			if err := r.notifier.Ping(); err != nil {
				log.Error().Err(err).Msg("failed to ping listener")
			}
		}
	}
}

// Stats returns how many events were relayed and when the last one went out.
func (r *Relay) Stats() (uint64, time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.processed, r.lastEvent
}

// Running reports whether Start is active.
func (r *Relay) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Relay) setRunning(v bool) {
	r.mu.Lock()
	r.running = v
	r.mu.Unlock()
}

// handleNotification relays the event named by a notification payload.
func (r *Relay) handleNotification(ctx context.Context, extra string) error {
	id, err := uuid.Parse(extra)
	if err != nil {
		return fmt.Errorf("invalid event ID in notification: %w", err)
	}

	env, err := r.source.FetchByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAlreadySent) {
			log.Debug().Str("event_id", id.String()).Msg("event already relayed")
			return nil
		}
		return err
	}

	if _, ok := r.blocked[env.DraftID]; ok {
		log.Debug().
			Str("event_id", id.String()).
			Str("draft_id", env.DraftID.String()).
			Msg("earlier event of draft pending, deferring to poll")
		return nil
	}

	if err := r.relay(ctx, env); err != nil {
		r.blocked[env.DraftID] = struct{}{}
		return err
	}
	return nil
}

// processUnsent relays one batch of unsent events in draft and sequence order.
func (r *Relay) processUnsent(ctx context.Context) error {
	start := r.clock.Now()

	unsent, err := r.source.FetchUnsent(ctx, r.cfg.BatchSize)
	if err != nil {
		return err
	}

	failed := make(map[uuid.UUID]struct{})
	sent := 0
	for _, env := range unsent {
		if _, ok := failed[env.DraftID]; ok {
			continue
		}
		if err := r.relay(ctx, env); err != nil {
			log.Error().Err(err).Str("event_id", env.EventID.String()).Msg("failed to relay event")
			failed[env.DraftID] = struct{}{}
			continue
		}
		sent++
	}

	r.blocked = failed
	r.metrics.RecordBatchProcessed(sent, r.clock.Since(start))

	if lag, err := r.source.CountUnsent(ctx); err == nil {
		r.metrics.RecordOutboxLag(int(lag))
	}
	return nil
}

// relay publishes env and marks it sent.
func (r *Relay) relay(ctx context.Context, env events.Envelope) error {
	start := r.clock.Now()
	err := r.publishWithRetry(ctx, env)
	r.metrics.RecordEventProcessed(string(env.EventType), err == nil, r.clock.Since(start))
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	if err := r.source.MarkSent(ctx, env.EventID); err != nil {
		return err
	}

	r.mu.Lock()
	r.processed++
	r.lastEvent = r.clock.Now()
	r.mu.Unlock()

	log.Debug().
		Str("event_id", env.EventID.String()).
		Str("draft_id", env.DraftID.String()).
		Int64("sequence", env.Sequence).
		Msg("published and marked event as sent")
	return nil
}

// publishWithRetry attempts to publish an outbox event with a growing delay
// between attempts.
func (r *Relay) publishWithRetry(ctx context.Context, env events.Envelope) error {
	var lastErr error

	for attempt := 0; attempt <= r.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := r.cfg.RetryDelay * time.Duration(attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-r.clock.After(delay):
			}
		}

		if err := r.publisher.Publish(ctx, env); err != nil {
			lastErr = err
			r.metrics.RecordPublishAttempt(string(env.EventType), attempt+1, false)
			log.Warn().
				Err(err).
				Int("attempt", attempt+1).
				Str("event_id", env.EventID.String()).
				Msg("failed to publish, retrying")
			continue
		}

		r.metrics.RecordPublishAttempt(string(env.EventType), attempt+1, true)
		if attempt > 0 {
			log.Info().
				Int("attempt", attempt+1).
				Str("event_id", env.EventID.String()).
				Msg("publish succeeded after retry")
		}
		return nil
	}

	return fmt.Errorf("publish failed after %d attempts: %w", r.cfg.MaxRetries+1, lastErr)
}
