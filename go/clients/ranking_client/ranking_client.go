// Package ranking_client talks to the ranking service that backs autopick:
// best-available suggestions and open roster positions per team.
package ranking_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/dynasty-draft/go/clients"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

type RankingClient struct {
	*clients.BaseClient
}

func NewRankingClient(baseURL, apiKey string, timeout time.Duration) *RankingClient {
	client := &RankingClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		client.SetHeader(APIKeyHeader, apiKey)
	}
	if timeout > 0 {
		client.SetTimeout(timeout)
	}

	return client
}

type BestAvailableRequest struct {
	Available []AvailablePlayer `json:"available"`
	Needs     []string          `json:"needs,omitempty"`
}

type AvailablePlayer struct {
	ID       uuid.UUID `json:"id"`
	Position string    `json:"position"`
	Rank     int       `json:"rank"`
}

type BestAvailableResponse struct {
	PlayerID *uuid.UUID `json:"player_id"`
}

type NeedsResponse struct {
	Positions []string `json:"positions"`
}

// BestAvailable asks the ranking service to choose from available. It
// reports false when the service has no suggestion.
func (c *RankingClient) BestAvailable(ctx context.Context, draftID, teamID uuid.UUID, available []models.Player, needs []string) (uuid.UUID, bool, error) {
	req := BestAvailableRequest{
		Available: make([]AvailablePlayer, 0, len(available)),
		Needs:     needs,
	}
	for _, p := range available {
		req.Available = append(req.Available, AvailablePlayer{ID: p.ID, Position: p.Position, Rank: p.Rank})
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to marshal request: %w", err)
	}

	body, err := c.Post(ctx, fmt.Sprintf(BestAvailableEndpoint, draftID, teamID), bytes.NewReader(payload))
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to get best available: %w", err)
	}
	// 204 means no suggestion
	if len(body) == 0 {
		return uuid.Nil, false, nil
	}

	var resp BestAvailableResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	if resp.PlayerID == nil || *resp.PlayerID == uuid.Nil {
		return uuid.Nil, false, nil
	}
	return *resp.PlayerID, true, nil
}

// NeedsFor returns the positions a team can still fill.
func (c *RankingClient) NeedsFor(ctx context.Context, draftID, teamID uuid.UUID) ([]string, error) {
	body, err := c.Get(ctx, fmt.Sprintf(NeedsEndpoint, draftID, teamID))
	if err != nil {
		return nil, fmt.Errorf("failed to get roster needs: %w", err)
	}

	var resp NeedsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return resp.Positions, nil
}
