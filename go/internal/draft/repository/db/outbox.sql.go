package db

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const insertOutboxEvent = `-- name: InsertOutboxEvent :exec
INSERT INTO draft_outbox (id, draft_id, event_type, sequence, payload, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`

type InsertOutboxEventParams struct {
	ID        uuid.UUID       `json:"id"`
	DraftID   uuid.UUID       `json:"draft_id"`
	EventType string          `json:"event_type"`
	Sequence  int64           `json:"sequence"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
}

func (q *Queries) InsertOutboxEvent(ctx context.Context, arg InsertOutboxEventParams) error {
	_, err := q.db.ExecContext(ctx, insertOutboxEvent,
		arg.ID,
		arg.DraftID,
		arg.EventType,
		arg.Sequence,
		arg.Payload,
		arg.CreatedAt,
	)
	return err
}

const notifyOutbox = `-- name: NotifyOutbox :exec
SELECT pg_notify($1, $2)
`

type NotifyOutboxParams struct {
	Channel string `json:"channel"`
	Payload string `json:"payload"`
}

func (q *Queries) NotifyOutbox(ctx context.Context, arg NotifyOutboxParams) error {
	_, err := q.db.ExecContext(ctx, notifyOutbox, arg.Channel, arg.Payload)
	return err
}

const fetchUnsentOutbox = `-- name: FetchUnsentOutbox :many
SELECT id, draft_id, event_type, sequence, payload, created_at, sent_at
FROM draft_outbox
WHERE sent_at IS NULL
ORDER BY draft_id, sequence
LIMIT $1
`

func (q *Queries) FetchUnsentOutbox(ctx context.Context, limit int32) ([]DraftOutbox, error) {
	rows, err := q.db.QueryContext(ctx, fetchUnsentOutbox, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DraftOutbox
	for rows.Next() {
		var i DraftOutbox
		if err := rows.Scan(
			&i.ID,
			&i.DraftID,
			&i.EventType,
			&i.Sequence,
			&i.Payload,
			&i.CreatedAt,
			&i.SentAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const fetchOutboxByID = `-- name: FetchOutboxByID :one
SELECT id, draft_id, event_type, sequence, payload, created_at, sent_at
FROM draft_outbox
WHERE id = $1 AND sent_at IS NULL
`

func (q *Queries) FetchOutboxByID(ctx context.Context, id uuid.UUID) (DraftOutbox, error) {
	row := q.db.QueryRowContext(ctx, fetchOutboxByID, id)
	var i DraftOutbox
	err := row.Scan(
		&i.ID,
		&i.DraftID,
		&i.EventType,
		&i.Sequence,
		&i.Payload,
		&i.CreatedAt,
		&i.SentAt,
	)
	return i, err
}

const markOutboxSent = `-- name: MarkOutboxSent :exec
UPDATE draft_outbox SET sent_at = NOW() WHERE id = $1
`

func (q *Queries) MarkOutboxSent(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, markOutboxSent, id)
	return err
}

const countUnsentOutbox = `-- name: CountUnsentOutbox :one
SELECT COUNT(*) FROM draft_outbox WHERE sent_at IS NULL
`

func (q *Queries) CountUnsentOutbox(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countUnsentOutbox)
	var count int64
	err := row.Scan(&count)
	return count, err
}
