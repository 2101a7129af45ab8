package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/sqlc-dev/pqtype"
)

const listDraftPool = `-- name: ListDraftPool :many
SELECT p.id, p.full_name, p.position, p.metadata, dp.rank
FROM draft_players dp
JOIN players p ON p.id = dp.player_id
WHERE dp.draft_id = $1
ORDER BY dp.rank
`

type ListDraftPoolRow struct {
	ID       uuid.UUID             `json:"id"`
	FullName string                `json:"full_name"`
	Position string                `json:"position"`
	Metadata pqtype.NullRawMessage `json:"metadata"`
	Rank     int32                 `json:"rank"`
}

func (q *Queries) ListDraftPool(ctx context.Context, draftID uuid.UUID) ([]ListDraftPoolRow, error) {
	rows, err := q.db.QueryContext(ctx, listDraftPool, draftID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ListDraftPoolRow
	for rows.Next() {
		var i ListDraftPoolRow
		if err := rows.Scan(
			&i.ID,
			&i.FullName,
			&i.Position,
			&i.Metadata,
			&i.Rank,
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
