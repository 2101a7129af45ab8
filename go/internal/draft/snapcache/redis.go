// Package snapcache keeps the latest snapshot of each draft in Redis so that
// gateways can sync new connections without calling the engine.
package snapcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
)

const (
	keyPrefix  = "draft:"
	DefaultTTL = 24 * time.Hour
)

// ErrNotCached is returned when no snapshot is stored for a draft.
var ErrNotCached = errors.New("snapshot not cached")

// putScript stores the snapshot only when it is newer than the stored one.
// KEYS[1] snapshot key, KEYS[2] sequence key
// ARGV[1] sequence, ARGV[2] snapshot JSON, ARGV[3] ttl in milliseconds
var putScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[2]) or '-1')
if tonumber(ARGV[1]) <= current then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
redis.call('SET', KEYS[2], ARGV[1], 'PX', ARGV[3])
return 1
`)

type Config struct {
	RedisClient *redis.Client
	// TTL bounds how long a finished draft lingers. Zero means DefaultTTL.
	TTL time.Duration
}

type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(ctx context.Context, cfg *Config) (*Cache, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}
	if err := cfg.RedisClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: cfg.RedisClient, ttl: ttl}, nil
}

func snapshotKey(draftID uuid.UUID) string {
	return fmt.Sprintf("%s%s:snapshot", keyPrefix, draftID)
}

func sequenceKey(draftID uuid.UUID) string {
	return fmt.Sprintf("%s%s:sequence", keyPrefix, draftID)
}

// Put stores snap unless a snapshot with the same or a later sequence is
// already cached. It reports whether the cache changed.
func (c *Cache) Put(ctx context.Context, snap *ledger.Snapshot) (bool, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return false, fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	id := snap.Draft.ID
	n, err := putScript.Run(ctx, c.client,
		[]string{snapshotKey(id), sequenceKey(id)},
		snap.Sequence, data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return n == 1, nil
}

// Get returns the cached snapshot of a draft.
func (c *Cache) Get(ctx context.Context, draftID uuid.UUID) (*ledger.Snapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(draftID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotCached
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap ledger.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

// Delete drops the cached snapshot of a draft.
func (c *Cache) Delete(ctx context.Context, draftID uuid.UUID) error {
	if err := c.client.Del(ctx, snapshotKey(draftID), sequenceKey(draftID)).Err(); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// Writer feeds StateChanged snapshots into the cache off the publishing
// goroutine. It implements the engine's EventPublisher.
type Writer struct {
	cache *Cache
	queue chan *ledger.Snapshot
}

func NewWriter(cache *Cache, buffer int) *Writer {
	if buffer <= 0 {
		buffer = 256
	}
	return &Writer{cache: cache, queue: make(chan *ledger.Snapshot, buffer)}
}

// Publish queues the snapshot carried by a StateChanged event. Other events
// are ignored. A full queue drops the snapshot; a later one supersedes it.
func (w *Writer) Publish(env events.Envelope) {
	if env.EventType != events.EventTypeStateChanged {
		return
	}
	decoded, err := env.Decode()
	if err != nil {
		log.Error().Err(err).Str("event_id", env.EventID.String()).Msg("failed to decode state change")
		return
	}
	payload := decoded.(*events.StateChangedPayload)
	if payload.Snapshot == nil {
		return
	}

	select {
	case w.queue <- payload.Snapshot:
	default:
		log.Warn().Str("draft_id", env.DraftID.String()).Msg("snapshot cache queue full, dropping snapshot")
	}
}

// Run writes queued snapshots until ctx is done.
func (w *Writer) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap := <-w.queue:
			if _, err := w.cache.Put(ctx, snap); err != nil {
				log.Error().Err(err).Str("draft_id", snap.Draft.ID.String()).Msg("failed to cache snapshot")
			}
		}
	}
}
