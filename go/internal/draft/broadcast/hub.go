// Package broadcast fans draft events out to in-process subscribers.
package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
)

const defaultBufferSize = 64

// Hub delivers envelopes to per-draft subscribers in publish order. A
// subscriber whose buffer is full is dropped and its channel closed; it is
// expected to resubscribe and resync from a snapshot.
type Hub struct {
	mu          sync.Mutex
	subscribers map[uuid.UUID]map[int64]*subscriber
	nextID      int64
	bufferSize  int
	onDrop      func(draftID uuid.UUID)

	// watchers tracks the goroutines tying subscriptions to their contexts.
	watchers sync.WaitGroup
}

type subscriber struct {
	id     int64
	stream chan events.Envelope
	done   chan struct{}
}

// Option configures a Hub.
type Option func(*Hub)

// WithBufferSize sets the per-subscriber channel capacity.
func WithBufferSize(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.bufferSize = n
		}
	}
}

// WithDropHook is called whenever a slow subscriber is dropped.
func WithDropHook(fn func(draftID uuid.UUID)) Option {
	return func(h *Hub) {
		h.onDrop = fn
	}
}

// NewHub creates an empty hub.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		subscribers: make(map[uuid.UUID]map[int64]*subscriber),
		bufferSize:  defaultBufferSize,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Subscribe registers for a draft's events. The returned channel closes when
// ctx ends, when cancel is called, or when the subscriber falls behind.
func (h *Hub) Subscribe(ctx context.Context, draftID uuid.UUID) (<-chan events.Envelope, func()) {
	h.mu.Lock()
	h.nextID++
	sub := &subscriber{
		id:     h.nextID,
		stream: make(chan events.Envelope, h.bufferSize),
		done:   make(chan struct{}),
	}
	if _, ok := h.subscribers[draftID]; !ok {
		h.subscribers[draftID] = make(map[int64]*subscriber)
	}
	h.subscribers[draftID][sub.id] = sub
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.remove(draftID, sub.id)
		})
	}
	h.watchers.Add(1)
	go func() {
		defer h.watchers.Done()
		select {
		case <-ctx.Done():
			cancel()
		case <-sub.done:
		}
	}()

	return sub.stream, cancel
}

// Publish delivers env to every subscriber of its draft without blocking.
func (h *Hub) Publish(env events.Envelope) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.subscribers[env.DraftID] {
		select {
		case sub.stream <- env:
		default:
			log.Warn().
				Str("draft_id", env.DraftID.String()).
				Int64("subscriber", id).
				Int64("sequence", env.Sequence).
				Msg("subscriber buffer full, dropping subscriber")
			h.removeLocked(env.DraftID, id)
			if h.onDrop != nil {
				h.onDrop(env.DraftID)
			}
		}
	}
}

// SubscriberCount returns how many subscribers a draft has.
func (h *Hub) SubscriberCount(draftID uuid.UUID) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers[draftID])
}

func (h *Hub) remove(draftID uuid.UUID, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(draftID, id)
}

func (h *Hub) removeLocked(draftID uuid.UUID, id int64) {
	subs := h.subscribers[draftID]
	sub, ok := subs[id]
	if !ok {
		return
	}
	delete(subs, id)
	close(sub.stream)
	close(sub.done)
	if len(subs) == 0 {
		delete(h.subscribers, draftID)
	}
}
