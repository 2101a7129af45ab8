// Package outbox relays committed draft events from the draft_outbox table
// to the event bus.
package outbox

//go:generate mockgen -package=mocks -destination=mocks/mock_outbox.go github.com/mcdev12/dynasty-draft/go/internal/draft/outbox Publisher,Source

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
)

// ErrAlreadySent is returned by Source.FetchByID when the event was relayed
// by an earlier notification or poll.
var ErrAlreadySent = errors.New("outbox event already sent")

// Publisher delivers one event to the bus. Implementations must be safe to
// call again with the same event; the bus deduplicates on EventID.
type Publisher interface {
	Publish(ctx context.Context, env events.Envelope) error
}

// Source reads and acknowledges outbox rows.
type Source interface {
	// FetchUnsent returns up to limit unsent events ordered by draft and
	// sequence.
	FetchUnsent(ctx context.Context, limit int32) ([]events.Envelope, error)
	FetchByID(ctx context.Context, id uuid.UUID) (events.Envelope, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
	CountUnsent(ctx context.Context) (int64, error)
}
