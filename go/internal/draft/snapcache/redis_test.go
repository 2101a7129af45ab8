package snapcache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

type CacheTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	client  *redis.Client
	cache   *Cache
	draftID uuid.UUID
	testNow time.Time
}

func (s *CacheTestSuite) SetupTest() {
	mr, err := miniredis.Run()
	s.Require().NoError(err)
	s.mr = mr

	s.client = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})

	cache, err := NewRedis(context.Background(), &Config{RedisClient: s.client, TTL: time.Hour})
	s.Require().NoError(err)
	s.cache = cache

	s.draftID = uuid.New()
	s.testNow = time.Date(2025, 8, 30, 19, 0, 0, 0, time.UTC)
}

func (s *CacheTestSuite) TearDownTest() {
	s.client.Close()
	s.mr.Close()
}

func TestCacheTestSuite(t *testing.T) {
	suite.Run(t, new(CacheTestSuite))
}

func (s *CacheTestSuite) snapshot(seq int64, pick int) *ledger.Snapshot {
	return &ledger.Snapshot{
		Draft: models.Draft{
			ID:          s.draftID,
			Status:      models.DraftStatusInProgress,
			CurrentPick: pick,
			Sequence:    seq,
		},
		Sequence: seq,
		TakenAt:  s.testNow,
	}
}

func (s *CacheTestSuite) TestPutAndGet() {
	ctx := context.Background()

	changed, err := s.cache.Put(ctx, s.snapshot(7, 3))
	s.Require().NoError(err)
	s.True(changed)

	got, err := s.cache.Get(ctx, s.draftID)
	s.Require().NoError(err)
	s.Equal(int64(7), got.Sequence)
	s.Equal(3, got.Draft.CurrentPick)
	s.True(s.testNow.Equal(got.TakenAt))
}

func (s *CacheTestSuite) TestPutIgnoresOlderSnapshot() {
	ctx := context.Background()

	_, err := s.cache.Put(ctx, s.snapshot(9, 4))
	s.Require().NoError(err)

	changed, err := s.cache.Put(ctx, s.snapshot(8, 3))
	s.Require().NoError(err)
	s.False(changed)

	changed, err = s.cache.Put(ctx, s.snapshot(9, 4))
	s.Require().NoError(err)
	s.False(changed)

	got, err := s.cache.Get(ctx, s.draftID)
	s.Require().NoError(err)
	s.Equal(int64(9), got.Sequence)
}

func (s *CacheTestSuite) TestGetMissing() {
	_, err := s.cache.Get(context.Background(), uuid.New())
	s.ErrorIs(err, ErrNotCached)
}

func (s *CacheTestSuite) TestEntriesExpire() {
	ctx := context.Background()
	_, err := s.cache.Put(ctx, s.snapshot(1, 1))
	s.Require().NoError(err)

	s.mr.FastForward(2 * time.Hour)

	_, err = s.cache.Get(ctx, s.draftID)
	s.ErrorIs(err, ErrNotCached)
}

func (s *CacheTestSuite) TestDelete() {
	ctx := context.Background()
	_, err := s.cache.Put(ctx, s.snapshot(5, 2))
	s.Require().NoError(err)

	s.Require().NoError(s.cache.Delete(ctx, s.draftID))

	_, err = s.cache.Get(ctx, s.draftID)
	s.ErrorIs(err, ErrNotCached)

	// a deleted entry no longer blocks lower sequences
	changed, err := s.cache.Put(ctx, s.snapshot(1, 1))
	s.Require().NoError(err)
	s.True(changed)
}

func (s *CacheTestSuite) TestWriterCachesStateChanges() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWriter(s.cache, 8)
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	pickEnv, err := events.NewEnvelope(s.draftID, 10, events.EventTypePickMade, events.PickMadePayload{}, s.testNow)
	s.Require().NoError(err)
	w.Publish(pickEnv)

	stateEnv, err := events.NewEnvelope(s.draftID, 11, events.EventTypeStateChanged, events.StateChangedPayload{
		Transition: events.TransitionPickMade,
		Snapshot:   s.snapshot(11, 6),
	}, s.testNow)
	s.Require().NoError(err)
	w.Publish(stateEnv)

	s.Eventually(func() bool {
		got, err := s.cache.Get(context.Background(), s.draftID)
		return err == nil && got.Sequence == 11
	}, time.Second, 5*time.Millisecond)

	cancel()
	s.NoError(<-done)
}

func TestNewRedis_Validation(t *testing.T) {
	_, err := NewRedis(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error for nil config")
	}
	_, err = NewRedis(context.Background(), &Config{})
	if err == nil {
		t.Fatal("expected error for nil client")
	}
}
