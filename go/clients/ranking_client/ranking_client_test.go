package ranking_client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/dynasty-draft/go/clients"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

func TestRankingClient_BestAvailable(t *testing.T) {
	draftID, teamID := uuid.New(), uuid.New()
	pick := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, fmt.Sprintf(BestAvailableEndpoint, draftID, teamID), r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get(APIKeyHeader))

		var req BestAvailableRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Available, 2)
		assert.Equal(t, []string{"QB"}, req.Needs)

		json.NewEncoder(w).Encode(BestAvailableResponse{PlayerID: &pick})
	}))
	defer srv.Close()

	c := NewRankingClient(srv.URL, "secret", time.Second)
	got, ok, err := c.BestAvailable(context.Background(), draftID, teamID, []models.Player{
		{ID: pick, Position: "QB", Rank: 3},
		{ID: uuid.New(), Position: "WR", Rank: 1},
	}, []string{"QB"})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, pick, got)
}

func TestRankingClient_NoSuggestion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewRankingClient(srv.URL, "", time.Second)
	_, ok, err := c.BestAvailable(context.Background(), uuid.New(), uuid.New(), nil, nil)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRankingClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ranking model warming up", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewRankingClient(srv.URL, "", time.Second)
	_, _, err := c.BestAvailable(context.Background(), uuid.New(), uuid.New(), nil, nil)
	require.Error(t, err)

	var statusErr *clients.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.StatusCode)

	_, err = c.NeedsFor(context.Background(), uuid.New(), uuid.New())
	assert.ErrorAs(t, err, &statusErr)
}

func TestRankingClient_NeedsFor(t *testing.T) {
	draftID, teamID := uuid.New(), uuid.New()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, fmt.Sprintf(NeedsEndpoint, draftID, teamID), r.URL.Path)
		w.Write([]byte(`{"positions":["RB","TE"]}`))
	}))
	defer srv.Close()

	c := NewRankingClient(srv.URL, "", time.Second)
	needs, err := c.NeedsFor(context.Background(), draftID, teamID)
	require.NoError(t, err)
	assert.Equal(t, []string{"RB", "TE"}, needs)
}

func TestRankingClient_RespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	c := NewRankingClient(srv.URL, "", 5*time.Second)
	_, err := c.NeedsFor(ctx, uuid.New(), uuid.New())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
