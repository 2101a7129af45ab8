package repository

import (
	"context"
	"fmt"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/repository/db"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

// applyPicks writes the pick delta of a change. Only the most recent pick
// can be removed.
func applyPicks(ctx context.Context, q *db.Queries, change store.Change) error {
	draftID := change.Draft.ID

	if change.ClearPicks {
		if err := q.DeletePicksForDraft(ctx, draftID); err != nil {
			return fmt.Errorf("failed to clear draft picks: %w", err)
		}
	}

	if p := change.RemovedPick; p != nil {
		n, err := q.DeleteLastPick(ctx, db.DeleteLastPickParams{DraftID: draftID, ID: p.ID})
		if err != nil {
			return fmt.Errorf("failed to delete draft pick: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("pick %s is not the last pick of draft %s", p.ID, draftID)
		}
	}

	if p := change.AppendedPick; p != nil {
		if err := q.InsertPick(ctx, db.InsertPickParams{
			ID:          p.ID,
			DraftID:     draftID,
			Round:       int32(p.Round),
			Pick:        int32(p.Pick),
			OverallPick: int32(p.OverallPick),
			TeamID:      p.TeamID,
			PlayerID:    p.PlayerID,
			IsAutoPick:  p.IsAutoPick,
			PickedAt:    p.PickedAt,
		}); err != nil {
			return fmt.Errorf("failed to insert draft pick: %w", err)
		}
	}

	return nil
}

func dbPickToModel(row db.DraftPick) models.DraftPick {
	return models.DraftPick{
		ID:          row.ID,
		DraftID:     row.DraftID,
		Round:       int(row.Round),
		Pick:        int(row.Pick),
		OverallPick: int(row.OverallPick),
		TeamID:      row.TeamID,
		PlayerID:    row.PlayerID,
		PickedAt:    row.PickedAt,
		IsAutoPick:  row.IsAutoPick,
	}
}

func dbParticipantToModel(row db.DraftParticipant) models.DraftParticipant {
	return models.DraftParticipant{
		TeamID:          row.TeamID,
		DraftPosition:   int(row.DraftPosition),
		Online:          row.Online,
		AutopickEnabled: row.AutopickEnabled,
	}
}
