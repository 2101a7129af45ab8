package db

import (
	"context"

	"github.com/google/uuid"
)

const listParticipants = `-- name: ListParticipants :many
SELECT draft_id, team_id, draft_position, online, autopick_enabled
FROM draft_participants
WHERE draft_id = $1
ORDER BY draft_position
`

func (q *Queries) ListParticipants(ctx context.Context, draftID uuid.UUID) ([]DraftParticipant, error) {
	rows, err := q.db.QueryContext(ctx, listParticipants, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DraftParticipant
	for rows.Next() {
		var i DraftParticipant
		if err := rows.Scan(
			&i.DraftID,
			&i.TeamID,
			&i.DraftPosition,
			&i.Online,
			&i.AutopickEnabled,
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

const upsertParticipant = `-- name: UpsertParticipant :exec
INSERT INTO draft_participants (draft_id, team_id, draft_position, online, autopick_enabled)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (draft_id, team_id) DO UPDATE
SET online = EXCLUDED.online,
    autopick_enabled = EXCLUDED.autopick_enabled
`

type UpsertParticipantParams struct {
	DraftID         uuid.UUID `json:"draft_id"`
	TeamID          uuid.UUID `json:"team_id"`
	DraftPosition   int32     `json:"draft_position"`
	Online          bool      `json:"online"`
	AutopickEnabled bool      `json:"autopick_enabled"`
}

func (q *Queries) UpsertParticipant(ctx context.Context, arg UpsertParticipantParams) error {
	_, err := q.db.ExecContext(ctx, upsertParticipant,
		arg.DraftID,
		arg.TeamID,
		arg.DraftPosition,
		arg.Online,
		arg.AutopickEnabled,
	)
	return err
}
