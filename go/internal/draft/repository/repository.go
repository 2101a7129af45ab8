package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/repository/db"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
	"github.com/mcdev12/dynasty-draft/go/internal/sqlutil"
)

// DefaultNotifyChannel is the LISTEN/NOTIFY channel outbox inserts signal on.
const DefaultNotifyChannel = "draft_outbox_events"

//go:embed schema.sql
var schema string

// Repository is the Postgres implementation of store.Store and store.PlayerPool.
type Repository struct {
	db            *sql.DB
	queries       *db.Queries
	notifyChannel string
}

func NewRepository(conn *sql.DB, notifyChannel string) *Repository {
	if notifyChannel == "" {
		notifyChannel = DefaultNotifyChannel
	}
	return &Repository{
		db:            conn,
		queries:       db.New(conn),
		notifyChannel: notifyChannel,
	}
}

// Migrate creates the draft tables if they do not exist.
func (r *Repository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

func (r *Repository) LoadDraft(ctx context.Context, draftID uuid.UUID) (*store.Record, error) {
	row, err := r.queries.GetDraft(ctx, draftID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("draft %s: %w", draftID, drafterr.ErrDraftNotFound)
		}
		return nil, fmt.Errorf("failed to get draft: %w", err)
	}

	draft, err := dbDraftToModel(row)
	if err != nil {
		return nil, err
	}

	participants, err := r.queries.ListParticipants(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	picks, err := r.queries.ListPicks(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list picks: %w", err)
	}

	rec := &store.Record{Draft: *draft}
	for _, p := range participants {
		rec.Participants = append(rec.Participants, dbParticipantToModel(p))
	}
	for _, p := range picks {
		rec.Picks = append(rec.Picks, dbPickToModel(p))
	}
	return rec, nil
}

func (r *Repository) ListActiveDraftIDs(ctx context.Context) ([]uuid.UUID, error) {
	ids, err := r.queries.ListActiveDraftIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list active drafts: %w", err)
	}
	return ids, nil
}

// Persist writes one transition in a single transaction: the draft row
// guarded by its event sequence, the pick delta, changed participants and
// the outbox rows. Outbox rows are announced with pg_notify, which Postgres
// delivers on commit.
func (r *Repository) Persist(ctx context.Context, change store.Change) error {
	settings, err := json.Marshal(change.Draft.Settings)
	if err != nil {
		return fmt.Errorf("failed to marshal draft settings: %w", err)
	}
	d := change.Draft
	expected := d.Sequence - int64(len(change.Events))

	return sqlutil.Run(ctx, r.db, r.queries.WithTx, func(q *db.Queries) error {
		n, err := q.UpdateDraftState(ctx, db.UpdateDraftStateParams{
			ID:                d.ID,
			Status:            string(d.Status),
			Settings:          settings,
			CurrentPick:       int32(d.CurrentPick),
			PickDeadline:      sqlutil.ToSqlTime(d.PickDeadline),
			PausedRemainingMs: d.PausedRemaining.Milliseconds(),
			EventSequence:     d.Sequence,
			StartedAt:         sqlutil.ToSqlTime(d.StartedAt),
			PausedAt:          sqlutil.ToSqlTime(d.PausedAt),
			CompletedAt:       sqlutil.ToSqlTime(d.CompletedAt),
			UpdatedAt:         d.UpdatedAt,
			ExpectedSequence:  expected,
		})
		if err != nil {
			return fmt.Errorf("failed to update draft: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("draft %s not at expected sequence %d: %w", d.ID, expected, drafterr.ErrStaleOperation)
		}

		if err := applyPicks(ctx, q, change); err != nil {
			return err
		}

		for _, p := range change.Participants {
			if err := q.UpsertParticipant(ctx, db.UpsertParticipantParams{
				DraftID:         d.ID,
				TeamID:          p.TeamID,
				DraftPosition:   int32(p.DraftPosition),
				Online:          p.Online,
				AutopickEnabled: p.AutopickEnabled,
			}); err != nil {
				return fmt.Errorf("failed to upsert participant: %w", err)
			}
		}

		for _, env := range change.Events {
			if err := q.InsertOutboxEvent(ctx, db.InsertOutboxEventParams{
				ID:        env.EventID,
				DraftID:   env.DraftID,
				EventType: string(env.EventType),
				Sequence:  env.Sequence,
				Payload:   env.Payload,
				CreatedAt: env.Timestamp,
			}); err != nil {
				return fmt.Errorf("failed to insert outbox event: %w", err)
			}
			if err := q.NotifyOutbox(ctx, db.NotifyOutboxParams{
				Channel: r.notifyChannel,
				Payload: env.EventID.String(),
			}); err != nil {
				return fmt.Errorf("failed to notify outbox: %w", err)
			}
		}
		return nil
	})
}

func (r *Repository) ListPool(ctx context.Context, draftID uuid.UUID) ([]models.Player, error) {
	rows, err := r.queries.ListDraftPool(ctx, draftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft pool: %w", err)
	}

	players := make([]models.Player, len(rows))
	for i, row := range rows {
		players[i] = models.Player{
			ID:       row.ID,
			FullName: row.FullName,
			Position: row.Position,
			Rank:     int(row.Rank),
		}
		if row.Metadata.Valid {
			players[i].Metadata = row.Metadata.RawMessage
		}
	}
	return players, nil
}

// IsCommissioner reports whether userID runs leagueID.
func (r *Repository) IsCommissioner(ctx context.Context, leagueID, userID uuid.UUID) (bool, error) {
	commissionerID, err := r.queries.GetLeagueCommissioner(ctx, leagueID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn().Str("league_id", leagueID.String()).Msg("league not found for commissioner check")
			return false, nil
		}
		return false, fmt.Errorf("failed to get league commissioner: %w", err)
	}
	return commissionerID == userID, nil
}

func dbDraftToModel(row db.Draft) (*models.Draft, error) {
	var settings models.DraftSettings
	if err := json.Unmarshal(row.Settings, &settings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft settings: %w", err)
	}

	return &models.Draft{
		ID:              row.ID,
		LeagueID:        row.LeagueID,
		DraftType:       models.DraftType(row.DraftType),
		Status:          models.DraftStatus(row.Status),
		Settings:        settings,
		CurrentPick:     int(row.CurrentPick),
		PickDeadline:    sqlutil.FromSqlTime(row.PickDeadline),
		PausedRemaining: time.Duration(row.PausedRemainingMs) * time.Millisecond,
		Sequence:        row.EventSequence,
		ScheduledAt:     sqlutil.FromSqlTime(row.ScheduledAt),
		StartedAt:       sqlutil.FromSqlTime(row.StartedAt),
		PausedAt:        sqlutil.FromSqlTime(row.PausedAt),
		CompletedAt:     sqlutil.FromSqlTime(row.CompletedAt),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}
