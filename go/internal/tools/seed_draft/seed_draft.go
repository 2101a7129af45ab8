package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mcdev12/dynasty-draft/go/internal/dbconfig"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

func main() {
	ctx := context.Background()

	path := "go/internal/assets/draft_seed.json"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the seed file
	seed, err := store.LoadSeedFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", path, err)
		os.Exit(1)
	}

	// 2) Connect to DB
	cfg := dbconfig.NewConfigFromEnv()
	pool, err := pgxpool.New(ctx, cfg.DSN())
	if err != nil {
		fmt.Fprintf(os.Stderr, "connect error: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	// 3) Everything or nothing
	err = pgx.BeginFunc(ctx, pool, func(tx pgx.Tx) error {
		return seedDraft(ctx, tx, seed)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "seed failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf(
		"Draft seed: draft=%s league=%s teams=%d rounds=%d players=%d\n",
		seed.Draft.ID, seed.League.ID, len(seed.Draft.Teams), seed.Draft.Rounds, len(seed.Players),
	)
}

func seedDraft(ctx context.Context, tx pgx.Tx, seed *store.SeedFile) error {
	if _, err := tx.Exec(ctx, `
        INSERT INTO leagues (id, name, commissioner_id)
        VALUES ($1,$2,$3)
        ON CONFLICT (id) DO NOTHING
    `, seed.League.ID, seed.League.Name, seed.League.CommissionerID); err != nil {
		return fmt.Errorf("insert league: %w", err)
	}

	settings, err := json.Marshal(seed.Settings())
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	tag, err := tx.Exec(ctx, `
        INSERT INTO drafts (id, league_id, draft_type, status, settings)
        VALUES ($1,$2,$3,$4,$5)
        ON CONFLICT (id) DO NOTHING
    `, seed.Draft.ID, seed.League.ID, models.DraftTypeSnake, models.DraftStatusScheduled, settings)
	if err != nil {
		return fmt.Errorf("insert draft: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("draft %s already exists", seed.Draft.ID)
	}

	batch := &pgx.Batch{}
	for i, teamID := range seed.Draft.Teams {
		batch.Queue(`
            INSERT INTO draft_participants (draft_id, team_id, draft_position)
            VALUES ($1,$2,$3)
        `, seed.Draft.ID, teamID, i+1)
	}
	for _, p := range seed.Players {
		var metadata any
		if len(p.Metadata) > 0 {
			metadata = p.Metadata
		}
		batch.Queue(`
            INSERT INTO players (id, full_name, position, metadata)
            VALUES ($1,$2,$3,$4)
            ON CONFLICT (id) DO NOTHING
        `, p.ID, p.FullName, p.Position, metadata)
		batch.Queue(`
            INSERT INTO draft_players (draft_id, player_id, rank)
            VALUES ($1,$2,$3)
        `, seed.Draft.ID, p.ID, p.Rank)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert participants and players: %w", err)
	}
	return nil
}
