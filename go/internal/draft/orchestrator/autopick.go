package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/pick"
)

type autopickSource string

const (
	sourceRanking  autopickSource = "ranking"
	sourceFallback autopickSource = "fallback"
)

// autopickResolver chooses a player for a team that ran out of time or opted
// in to autopick. External calls are bounded so a slow dependency cannot hold
// up the draft.
type autopickResolver struct {
	ranker  Ranker
	needs   RosterNeeds
	timeout time.Duration
}

// choosePlayer asks the ranker first and falls back to the best ranked
// available player. It only fails when nothing is left in the pool.
func (r *autopickResolver) choosePlayer(ctx context.Context, l *ledger.Ledger, teamID uuid.UUID) (uuid.UUID, autopickSource, error) {
	available := l.Available()
	if len(available) == 0 {
		return uuid.Nil, "", drafterr.ErrNoPlayersAvailable
	}

	draftID := l.Draft.ID
	if r.ranker != nil {
		needs := r.needsFor(ctx, draftID, teamID)

		type ranked struct {
			id uuid.UUID
			ok bool
		}
		res, err := withTimeout(ctx, r.timeout, func(ctx context.Context) (ranked, error) {
			id, ok, err := r.ranker.BestAvailable(ctx, draftID, teamID, available, needs)
			return ranked{id: id, ok: ok}, err
		})

		switch {
		case err != nil:
			log.Warn().Err(err).Str("draft_id", draftID.String()).Msg("ranker unavailable, using fallback")
		case !res.ok:
			log.Debug().Str("draft_id", draftID.String()).Msg("ranker had no candidate, using fallback")
		case pick.Validate(l, teamID, res.id, nil) != nil:
			log.Warn().
				Str("draft_id", draftID.String()).
				Str("player_id", res.id.String()).
				Msg("ranker suggested unavailable player, using fallback")
		default:
			return res.id, sourceRanking, nil
		}
	}

	return available[0].ID, sourceFallback, nil
}

// needsFor returns the team's open positions, or nil when they are unknown.
func (r *autopickResolver) needsFor(ctx context.Context, draftID, teamID uuid.UUID) []string {
	if r.needs == nil {
		return nil
	}
	needs, err := withTimeout(ctx, r.timeout, func(ctx context.Context) ([]string, error) {
		return r.needs.NeedsFor(ctx, draftID, teamID)
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("draft_id", draftID.String()).
			Str("team_id", teamID.String()).
			Msg("roster needs unavailable, skipping need check")
		return nil
	}
	return needs
}

// withTimeout runs fn with a deadline and stops waiting when it passes even
// if fn ignores its context.
func withTimeout[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	type outcome struct {
		v   T
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		v, err := fn(ctx)
		done <- outcome{v: v, err: err}
	}()

	select {
	case out := <-done:
		return out.v, out.err
	case <-ctx.Done():
		var zero T
		return zero, fmt.Errorf("%w: %v", drafterr.ErrDependencyUnavailable, ctx.Err())
	}
}
