package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/broadcast"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/events"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/orchestrator"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/snapcache"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/store"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

const readTimeout = 2 * time.Second

type fixture struct {
	orch         *orchestrator.Orchestrator
	server       *httptest.Server
	draftID      uuid.UUID
	teams        []uuid.UUID
	pool         []models.Player
	commissioner uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.NewMemoryStore()
	f := &fixture{
		teams:        []uuid.UUID{uuid.New(), uuid.New()},
		commissioner: uuid.New(),
	}
	for i := 0; i < 6; i++ {
		f.pool = append(f.pool, models.Player{
			ID:       uuid.New(),
			FullName: fmt.Sprintf("Player %d", i+1),
			Position: "RB",
			Rank:     i + 1,
		})
	}
	rec := store.Record{Draft: models.Draft{
		ID:        uuid.New(),
		LeagueID:  uuid.New(),
		DraftType: models.DraftTypeSnake,
		Status:    models.DraftStatusScheduled,
		Settings: models.DraftSettings{
			Rounds:         2,
			TimePerPickSec: 90,
			DraftOrder:     f.teams,
		},
		CreatedAt: time.Now(),
	}}
	f.draftID = rec.Draft.ID
	st.Seed(rec, f.pool, f.commissioner)

	hub := broadcast.NewHub()
	f.orch = orchestrator.New(st, st, st, hub)
	t.Cleanup(func() { _ = f.orch.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	svc := NewService(DefaultConfig(), f.orch, hub)
	go svc.Start(ctx)

	mux := http.NewServeMux()
	svc.RegisterRoutes(mux)
	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	return f
}

func (f *fixture) dial(t *testing.T, teamID uuid.UUID) *websocket.Conn {
	t.Helper()
	conn, _, err := f.tryDial(f.draftID, teamID)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func (f *fixture) tryDial(draftID, teamID uuid.UUID) (*websocket.Conn, *http.Response, error) {
	q := url.Values{}
	q.Set("draft_id", draftID.String())
	if teamID != uuid.Nil {
		q.Set("team_id", teamID.String())
	}
	u := "ws" + strings.TrimPrefix(f.server.URL, "http") + "/ws/draft?" + q.Encode()
	return websocket.DefaultDialer.Dial(u, nil)
}

func readMessage(t *testing.T, conn *websocket.Conn) ServerMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))
	var msg ServerMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

// readUntil reads messages until match returns true and returns everything read.
func readUntil(t *testing.T, conn *websocket.Conn, match func(ServerMessage) bool) []ServerMessage {
	t.Helper()
	var seen []ServerMessage
	for {
		msg := readMessage(t, conn)
		seen = append(seen, msg)
		if match(msg) {
			return seen
		}
	}
}

func isResult(requestID string) func(ServerMessage) bool {
	return func(m ServerMessage) bool {
		return m.Type == MessageTypeCommandResult && m.Result != nil && m.Result.RequestID == requestID
	}
}

func TestGateway_SnapshotThenContiguousEvents(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, uuid.Nil)

	first := readMessage(t, conn)
	require.Equal(t, MessageTypeSnapshot, first.Type)
	require.NotNil(t, first.Snapshot)
	assert.Equal(t, models.DraftStatusScheduled, first.Snapshot.Draft.Status)

	_, err := f.orch.StartDraft(context.Background(), f.draftID, f.commissioner)
	require.NoError(t, err)
	_, err = f.orch.SubmitPick(context.Background(), f.draftID, f.teams[0], f.pool[0].ID)
	require.NoError(t, err)

	seen := readUntil(t, conn, func(m ServerMessage) bool {
		return m.Type == MessageTypeEvent && m.Event.Type == events.EventTypePickMade
	})

	last := first.Sequence
	for _, m := range seen {
		require.Equal(t, MessageTypeEvent, m.Type)
		assert.Equal(t, last+1, m.Sequence)
		last = m.Sequence
	}
}

func TestGateway_MakePick(t *testing.T) {
	f := newFixture(t)
	onClock := f.dial(t, f.teams[0])
	waiting := f.dial(t, f.teams[1])
	readMessage(t, onClock)
	readMessage(t, waiting)

	_, err := f.orch.StartDraft(context.Background(), f.draftID, f.commissioner)
	require.NoError(t, err)

	require.NoError(t, waiting.WriteJSON(ClientCommand{Type: CommandMakePick, RequestID: "early", PlayerID: f.pool[0].ID}))
	seen := readUntil(t, waiting, isResult("early"))
	result := seen[len(seen)-1].Result
	assert.False(t, result.OK)
	assert.Equal(t, "not_your_turn", result.Code)

	require.NoError(t, onClock.WriteJSON(ClientCommand{Type: CommandMakePick, RequestID: "p1", PlayerID: f.pool[0].ID}))
	seen = readUntil(t, onClock, isResult("p1"))
	assert.True(t, seen[len(seen)-1].Result.OK)

	snap, err := f.orch.GetSnapshot(context.Background(), f.draftID)
	require.NoError(t, err)
	require.Len(t, snap.Picks, 1)
	assert.Equal(t, f.pool[0].ID, snap.Picks[0].PlayerID)
	assert.Equal(t, f.teams[1], snap.Draft.TeamOnClock)
}

func TestGateway_SpectatorCannotPick(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, uuid.Nil)
	readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientCommand{Type: CommandSetAutopick, RequestID: "a", Enabled: true}))
	seen := readUntil(t, conn, isResult("a"))
	result := seen[len(seen)-1].Result
	assert.False(t, result.OK)
	assert.Equal(t, "team_not_in_draft", result.Code)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeCommandResult, msg.Type)
	assert.False(t, msg.Result.OK)
}

func TestGateway_PresenceFollowsConnections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	online := func() bool {
		snap, err := f.orch.GetSnapshot(ctx, f.draftID)
		require.NoError(t, err)
		for _, p := range snap.Participants {
			if p.TeamID == f.teams[0] {
				return p.Online
			}
		}
		return false
	}

	a, _, err := f.tryDial(f.draftID, f.teams[0])
	require.NoError(t, err)
	b, _, err := f.tryDial(f.draftID, f.teams[0])
	require.NoError(t, err)

	assert.Eventually(t, online, readTimeout, 10*time.Millisecond)

	a.Close()
	// the second connection keeps the team online
	time.Sleep(50 * time.Millisecond)
	assert.True(t, online())

	b.Close()
	assert.Eventually(t, func() bool { return !online() }, readTimeout, 10*time.Millisecond)
}

func TestGateway_SyncCommandResendsSnapshot(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, uuid.Nil)
	first := readMessage(t, conn)

	require.NoError(t, conn.WriteJSON(ClientCommand{Type: CommandSync, RequestID: "s"}))
	seen := readUntil(t, conn, func(m ServerMessage) bool { return m.Type == MessageTypeSnapshot })
	assert.Equal(t, first.Sequence, seen[len(seen)-1].Sequence)
}

func TestGateway_RejectsUnknownDraftAndTeam(t *testing.T) {
	f := newFixture(t)

	_, resp, err := f.tryDial(uuid.New(), uuid.Nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, resp, err = f.tryDial(f.draftID, uuid.New())
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestGateway_StateRoutes(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.StartDraft(context.Background(), f.draftID, f.commissioner)
	require.NoError(t, err)

	resp, err := http.Get(f.server.URL + "/api/drafts/" + f.draftID.String() + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var state DraftStateResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	assert.Equal(t, models.DraftStatusInProgress, state.Status)
	require.NotNil(t, state.CurrentPick)
	assert.Equal(t, f.teams[0].String(), state.CurrentPick.TeamID)
	assert.Equal(t, 4, state.TotalPicks)
	assert.Len(t, state.Participants, 2)

	resp2, err := http.Get(f.server.URL + "/api/drafts/active")
	require.NoError(t, err)
	defer resp2.Body.Close()
	var drafts []DraftSummary
	require.NoError(t, json.NewDecoder(resp2.Body).Decode(&drafts))
	require.Len(t, drafts, 1)
	assert.Equal(t, f.draftID.String(), drafts[0].DraftID)

	resp3, err := http.Get(f.server.URL + "/api/drafts/" + uuid.NewString() + "/state")
	require.NoError(t, err)
	resp3.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp3.StatusCode)
}

// scriptedSource hands out channels the test writes to directly.
type scriptedSource struct {
	streams chan chan events.Envelope
}

func (s *scriptedSource) Subscribe(ctx context.Context, draftID uuid.UUID) (<-chan events.Envelope, func()) {
	ch := make(chan events.Envelope, 16)
	s.streams <- ch
	return ch, func() {}
}

// scriptedEngine serves whatever snapshot the test last set.
type scriptedEngine struct {
	Engine
	mu   sync.Mutex
	snap *ledger.Snapshot
}

func (e *scriptedEngine) GetSnapshot(context.Context, uuid.UUID) (*ledger.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snap, nil
}

func (e *scriptedEngine) set(seq int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snap = &ledger.Snapshot{Draft: models.Draft{Sequence: seq}, Sequence: seq, TakenAt: time.Now()}
}

func envAt(t *testing.T, draftID uuid.UUID, seq int64) events.Envelope {
	t.Helper()
	env, err := events.NewEnvelope(draftID, seq, events.EventTypeTimerArmed, events.TimerArmedPayload{}, time.Now())
	require.NoError(t, err)
	return env
}

func newScriptedServer(t *testing.T, engine *scriptedEngine, source *scriptedSource) *httptest.Server {
	t.Helper()
	cm := NewConnectionManager(engine, source, NewSnapshots(engine, nil), DefaultConnectionConfig())
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		draftID := uuid.MustParse(r.URL.Query().Get("draft_id"))
		assert.NoError(t, cm.UpgradeConnection(w, r, "u", draftID, uuid.Nil))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestConnection_ResyncsOnGap(t *testing.T) {
	draftID := uuid.New()
	engine := &scriptedEngine{}
	engine.set(5)
	source := &scriptedSource{streams: make(chan chan events.Envelope, 4)}
	srv := newScriptedServer(t, engine, source)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/?draft_id="+draftID.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	stream := <-source.streams
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Equal(t, int64(5), msg.Sequence)

	stream <- envAt(t, draftID, 4) // already in the snapshot
	stream <- envAt(t, draftID, 6)
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeEvent, msg.Type)
	assert.Equal(t, int64(6), msg.Sequence)

	engine.set(10)
	stream <- envAt(t, draftID, 9)
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Equal(t, int64(10), msg.Sequence)

	stream <- envAt(t, draftID, 11)
	msg = readMessage(t, conn)
	require.Equal(t, MessageTypeEvent, msg.Type)
	assert.Equal(t, int64(11), msg.Sequence)
}

func TestConnection_ResubscribesWhenDropped(t *testing.T) {
	draftID := uuid.New()
	engine := &scriptedEngine{}
	engine.set(1)
	source := &scriptedSource{streams: make(chan chan events.Envelope, 4)}
	srv := newScriptedServer(t, engine, source)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/?draft_id="+draftID.String(), nil)
	require.NoError(t, err)
	defer conn.Close()

	stream := <-source.streams
	readMessage(t, conn)

	engine.set(3)
	close(stream)

	stream = <-source.streams
	msg := readMessage(t, conn)
	require.Equal(t, MessageTypeSnapshot, msg.Type)
	assert.Equal(t, int64(3), msg.Sequence)

	stream <- envAt(t, draftID, 4)
	msg = readMessage(t, conn)
	assert.Equal(t, int64(4), msg.Sequence)
}

type stubCache struct {
	snap *ledger.Snapshot
	err  error
}

func (c stubCache) Get(context.Context, uuid.UUID) (*ledger.Snapshot, error) {
	return c.snap, c.err
}

func TestSnapshots_PrefersCache(t *testing.T) {
	ctx := context.Background()
	engine := &scriptedEngine{}
	engine.set(9)
	cached := &ledger.Snapshot{Sequence: 7}

	s := NewSnapshots(engine, stubCache{snap: cached})
	got, err := s.Snapshot(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Sequence)

	got, err = s.FreshSnapshot(ctx, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(9), got.Sequence)

	for _, cacheErr := range []error{snapcache.ErrNotCached, errors.New("redis down")} {
		s = NewSnapshots(engine, stubCache{err: cacheErr})
		got, err = s.Snapshot(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, int64(9), got.Sequence)
	}
}

func TestSnapshots_CachedClockIsReadAtRequestTime(t *testing.T) {
	committed := time.Date(2025, 9, 1, 18, 0, 0, 0, time.UTC)
	team := uuid.New()
	deadline := committed.Add(60 * time.Second)
	cached := &ledger.Snapshot{
		Draft: models.Draft{
			Status:       models.DraftStatusInProgress,
			TeamOnClock:  team,
			PickDeadline: &deadline,
		},
		Participants:    []models.DraftParticipant{{TeamID: team, TimeRemaining: 60 * time.Second}},
		TimeRemainingMs: 60000,
		Sequence:        7,
		TakenAt:         committed,
	}

	clock := clockwork.NewFakeClockAt(committed.Add(45 * time.Second))
	s := NewSnapshots(&scriptedEngine{}, stubCache{snap: cached})
	s.clock = clock

	got, err := s.Snapshot(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, int64(15000), got.TimeRemainingMs)
	assert.Equal(t, 15*time.Second, got.Participants[0].TimeRemaining)
	assert.Equal(t, clock.Now(), got.TakenAt)
	assert.Equal(t, int64(7), got.Sequence)

	// the cached value itself is untouched
	assert.Equal(t, int64(60000), cached.TimeRemainingMs)
	assert.Equal(t, 60*time.Second, cached.Participants[0].TimeRemaining)
}

func TestEventConsumer_ProcessMessageFansOut(t *testing.T) {
	hub := broadcast.NewHub()
	draftID := uuid.New()
	stream, cancel := hub.Subscribe(context.Background(), draftID)
	defer cancel()

	ec := &EventConsumer{sinks: []Sink{hub}}
	env := envAt(t, draftID, 3)
	data, err := json.Marshal(env)
	require.NoError(t, err)

	require.NoError(t, ec.processMessage(data))
	got := <-stream
	assert.Equal(t, env.EventID, got.EventID)
	assert.Equal(t, int64(3), got.Sequence)

	assert.Error(t, ec.processMessage([]byte("{")))
}
