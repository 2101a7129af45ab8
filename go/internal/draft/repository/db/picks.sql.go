package db

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const listPicks = `-- name: ListPicks :many
SELECT id, draft_id, round, pick, overall_pick, team_id, player_id, is_auto_pick, picked_at
FROM draft_picks
WHERE draft_id = $1
ORDER BY overall_pick
`

func (q *Queries) ListPicks(ctx context.Context, draftID uuid.UUID) ([]DraftPick, error) {
	rows, err := q.db.QueryContext(ctx, listPicks, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []DraftPick
	for rows.Next() {
		var i DraftPick
		if err := rows.Scan(
			&i.ID,
			&i.DraftID,
			&i.Round,
			&i.Pick,
			&i.OverallPick,
			&i.TeamID,
			&i.PlayerID,
			&i.IsAutoPick,
			&i.PickedAt,
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

const insertPick = `-- name: InsertPick :exec
INSERT INTO draft_picks (id, draft_id, round, pick, overall_pick, team_id, player_id, is_auto_pick, picked_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

type InsertPickParams struct {
	ID          uuid.UUID `json:"id"`
	DraftID     uuid.UUID `json:"draft_id"`
	Round       int32     `json:"round"`
	Pick        int32     `json:"pick"`
	OverallPick int32     `json:"overall_pick"`
	TeamID      uuid.UUID `json:"team_id"`
	PlayerID    uuid.UUID `json:"player_id"`
	IsAutoPick  bool      `json:"is_auto_pick"`
	PickedAt    time.Time `json:"picked_at"`
}

func (q *Queries) InsertPick(ctx context.Context, arg InsertPickParams) error {
	_, err := q.db.ExecContext(ctx, insertPick,
		arg.ID,
		arg.DraftID,
		arg.Round,
		arg.Pick,
		arg.OverallPick,
		arg.TeamID,
		arg.PlayerID,
		arg.IsAutoPick,
		arg.PickedAt,
	)
	return err
}

const deleteLastPick = `-- name: DeleteLastPick :execrows
DELETE FROM draft_picks
WHERE draft_id = $1 AND id = $2
  AND overall_pick = (SELECT MAX(overall_pick) FROM draft_picks WHERE draft_id = $1)
`

type DeleteLastPickParams struct {
	DraftID uuid.UUID `json:"draft_id"`
	ID      uuid.UUID `json:"id"`
}

func (q *Queries) DeleteLastPick(ctx context.Context, arg DeleteLastPickParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteLastPick, arg.DraftID, arg.ID)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const deletePicksForDraft = `-- name: DeletePicksForDraft :exec
DELETE FROM draft_picks WHERE draft_id = $1
`

func (q *Queries) DeletePicksForDraft(ctx context.Context, draftID uuid.UUID) error {
	_, err := q.db.ExecContext(ctx, deletePicksForDraft, draftID)
	return err
}
