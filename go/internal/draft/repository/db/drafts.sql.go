package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const getDraft = `-- name: GetDraft :one
SELECT id, league_id, draft_type, status, settings, current_pick, pick_deadline,
       paused_remaining_ms, event_sequence, scheduled_at, started_at, paused_at,
       completed_at, created_at, updated_at
FROM drafts
WHERE id = $1
`

func (q *Queries) GetDraft(ctx context.Context, id uuid.UUID) (Draft, error) {
	row := q.db.QueryRowContext(ctx, getDraft, id)
	var i Draft
	err := row.Scan(
		&i.ID,
		&i.LeagueID,
		&i.DraftType,
		&i.Status,
		&i.Settings,
		&i.CurrentPick,
		&i.PickDeadline,
		&i.PausedRemainingMs,
		&i.EventSequence,
		&i.ScheduledAt,
		&i.StartedAt,
		&i.PausedAt,
		&i.CompletedAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listActiveDraftIDs = `-- name: ListActiveDraftIDs :many
SELECT id FROM drafts
WHERE status <> 'COMPLETED'
ORDER BY created_at
`

func (q *Queries) ListActiveDraftIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := q.db.QueryContext(ctx, listActiveDraftIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateDraftState = `-- name: UpdateDraftState :execrows
UPDATE drafts
SET status = $2,
    settings = $3,
    current_pick = $4,
    pick_deadline = $5,
    paused_remaining_ms = $6,
    event_sequence = $7,
    started_at = $8,
    paused_at = $9,
    completed_at = $10,
    updated_at = $11
WHERE id = $1 AND event_sequence = $12
`

type UpdateDraftStateParams struct {
	ID                uuid.UUID       `json:"id"`
	Status            string          `json:"status"`
	Settings          json.RawMessage `json:"settings"`
	CurrentPick       int32           `json:"current_pick"`
	PickDeadline      sql.NullTime    `json:"pick_deadline"`
	PausedRemainingMs int64           `json:"paused_remaining_ms"`
	EventSequence     int64           `json:"event_sequence"`
	StartedAt         sql.NullTime    `json:"started_at"`
	PausedAt          sql.NullTime    `json:"paused_at"`
	CompletedAt       sql.NullTime    `json:"completed_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	ExpectedSequence  int64           `json:"expected_sequence"`
}

func (q *Queries) UpdateDraftState(ctx context.Context, arg UpdateDraftStateParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updateDraftState,
		arg.ID,
		arg.Status,
		arg.Settings,
		arg.CurrentPick,
		arg.PickDeadline,
		arg.PausedRemainingMs,
		arg.EventSequence,
		arg.StartedAt,
		arg.PausedAt,
		arg.CompletedAt,
		arg.UpdatedAt,
		arg.ExpectedSequence,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const getLeagueCommissioner = `-- name: GetLeagueCommissioner :one
SELECT commissioner_id FROM leagues
WHERE id = $1
`

func (q *Queries) GetLeagueCommissioner(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	row := q.db.QueryRowContext(ctx, getLeagueCommissioner, id)
	var commissionerID uuid.UUID
	err := row.Scan(&commissionerID)
	return commissionerID, err
}
