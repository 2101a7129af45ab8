package outbox

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/repository/db"
)

// Repository is the Postgres Source.
type Repository struct {
	queries *db.Queries
}

func NewRepository(conn db.DBTX) *Repository {
	return &Repository{queries: db.New(conn)}
}

func (r *Repository) FetchUnsent(ctx context.Context, limit int32) ([]events.Envelope, error) {
	rows, err := r.queries.FetchUnsentOutbox(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch unsent outbox events: %w", err)
	}
	envs := make([]events.Envelope, len(rows))
	for i, row := range rows {
		envs[i] = rowToEnvelope(row)
	}
	return envs, nil
}

func (r *Repository) FetchByID(ctx context.Context, id uuid.UUID) (events.Envelope, error) {
	row, err := r.queries.FetchOutboxByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return events.Envelope{}, fmt.Errorf("event %s: %w", id, ErrAlreadySent)
		}
		return events.Envelope{}, fmt.Errorf("failed to fetch outbox event: %w", err)
	}
	return rowToEnvelope(row), nil
}

func (r *Repository) MarkSent(ctx context.Context, id uuid.UUID) error {
	if err := r.queries.MarkOutboxSent(ctx, id); err != nil {
		return fmt.Errorf("failed to mark outbox event %s as sent: %w", id, err)
	}
	return nil
}

func (r *Repository) CountUnsent(ctx context.Context) (int64, error) {
	n, err := r.queries.CountUnsentOutbox(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count unsent outbox events: %w", err)
	}
	return n, nil
}

func rowToEnvelope(row db.DraftOutbox) events.Envelope {
	return events.Envelope{
		EventID:   row.ID,
		EventType: events.EventType(row.EventType),
		DraftID:   row.DraftID,
		Sequence:  row.Sequence,
		Timestamp: row.CreatedAt,
		Payload:   row.Payload,
	}
}
