package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/clients/ranking_client"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/broadcast"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/orchestrator"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/repository"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/snapcache"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
)

// Services is the wired engine of one serve process.
type Services struct {
	Orchestrator *orchestrator.Orchestrator
	Hub          *broadcast.Hub
	// Cache and CacheWriter are nil when Redis is not configured.
	Cache       *snapcache.Cache
	CacheWriter *snapcache.Writer
	// DB is nil in memory mode.
	DB *sql.DB

	closers []func() error
}

func (s *Services) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			log.Error().Err(err).Msg("failed to close service")
		}
	}
}

type storeOptions struct {
	memory   bool
	seedPath string
	migrate  bool
}

// fanout hands every committed event to each publisher in order.
type fanout []orchestrator.EventPublisher

func (f fanout) Publish(env events.Envelope) {
	for _, p := range f {
		p.Publish(env)
	}
}

func setupServices(ctx context.Context, cfg *Config, reg prometheus.Registerer, so storeOptions) (*Services, error) {
	s := &Services{}
	ok := false
	defer func() {
		if !ok {
			s.Close()
		}
	}()

	// Store layer
	var (
		st   store.Store
		pool store.PlayerPool
		auth orchestrator.CommissionerChecker
	)
	if so.memory {
		mem := store.NewMemoryStore()
		if so.seedPath != "" {
			seed, err := store.LoadSeedFile(so.seedPath)
			if err != nil {
				return nil, err
			}
			mem.Seed(seed.Record(time.Now()), seed.Players, seed.League.CommissionerID)
			log.Info().Str("draft_id", seed.Draft.ID.String()).Msg("seeded in-memory draft")
		}
		st, pool, auth = mem, mem, mem
	} else {
		db, err := setupDatabase(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		s.DB = db
		s.closers = append(s.closers, db.Close)

		repo := repository.NewRepository(db, cfg.Outbox.Channel)
		if so.migrate {
			if err := repo.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		st, pool, auth = repo, repo, repo
	}

	// Publishers: local fan-out first, then the snapshot cache.
	s.Hub = broadcast.NewHub(broadcast.WithDropHook(func(draftID uuid.UUID) {
		log.Warn().Str("draft_id", draftID.String()).Msg("dropped slow subscriber")
	}))
	publishers := fanout{s.Hub}

	cache, rdb, err := setupCache(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if cache != nil {
		s.closers = append(s.closers, rdb.Close)
		s.Cache = cache
		s.CacheWriter = snapcache.NewWriter(cache, 0)
		publishers = append(publishers, s.CacheWriter)
	}

	opts := []orchestrator.Option{
		orchestrator.WithMetrics(orchestrator.NewPrometheusMetrics(reg)),
		orchestrator.WithAutopickTimeout(cfg.Engine.AutopickTimeout),
		orchestrator.WithInboxSize(cfg.Engine.InboxSize),
	}
	if cfg.Ranking.URL != "" {
		rc := ranking_client.NewRankingClient(cfg.Ranking.URL, cfg.Ranking.APIKey, cfg.Ranking.Timeout)
		opts = append(opts, orchestrator.WithRanker(rc), orchestrator.WithRosterNeeds(rc))
		log.Info().Str("url", cfg.Ranking.URL).Msg("autopick uses ranking service")
	}

	s.Orchestrator = orchestrator.New(st, pool, auth, publishers, opts...)
	ok = true
	return s, nil
}

// setupCache connects the Redis snapshot cache. It returns nils when no
// address is configured.
func setupCache(ctx context.Context, cfg *Config) (*snapcache.Cache, *redis.Client, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	cache, err := snapcache.NewRedis(ctx, &snapcache.Config{RedisClient: rdb, TTL: cfg.Redis.TTL})
	if err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("snapshot cache: %w", err)
	}

	log.Info().Str("addr", cfg.Redis.Addr).Msg("snapshot cache enabled")
	return cache, rdb, nil
}
