package outbox

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
)

// LogPublisher logs events instead of publishing them. It backs the relay's
// dry-run mode.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, env events.Envelope) error {
	log.Info().
		Str("event_id", env.EventID.String()).
		Str("event_type", string(env.EventType)).
		Str("draft_id", env.DraftID.String()).
		Int64("sequence", env.Sequence).
		Str("subject", env.Subject()).
		Msg("would publish event")
	return nil
}
