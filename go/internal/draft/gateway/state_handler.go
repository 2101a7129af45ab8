package gateway

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
	"github.com/mcdev12/dynasty-draft/go/internal/draft/ledger"
	"github.com/mcdev12/dynasty-draft/go/internal/models"
)

const recentPickLimit = 10

// DraftStateResponse represents the complete state of a draft
type DraftStateResponse struct {
	DraftID        string             `json:"draft_id"`
	Status         models.DraftStatus `json:"status"`
	Sequence       int64              `json:"sequence"`
	CurrentPick    *CurrentPickInfo   `json:"current_pick,omitempty"`
	RecentPicks    []RecentPickInfo   `json:"recent_picks"`
	TimeRemaining  *int               `json:"time_remaining_sec,omitempty"`
	TotalPicks     int                `json:"total_picks"`
	CompletedPicks int                `json:"completed_picks"`
	AvailableCount int                `json:"available_count"`
	Participants   []ParticipantInfo  `json:"participants"`
}

// CurrentPickInfo represents the current pick on the clock
type CurrentPickInfo struct {
	TeamID      string     `json:"team_id"`
	Round       int        `json:"round"`
	OverallPick int        `json:"overall_pick"`
	TimeoutAt   *time.Time `json:"timeout_at,omitempty"`
	TimePerPick int        `json:"time_per_pick_sec"`
}

// RecentPickInfo represents a recently made pick
type RecentPickInfo struct {
	PickID      string    `json:"pick_id"`
	TeamID      string    `json:"team_id"`
	PlayerID    string    `json:"player_id"`
	Round       int       `json:"round"`
	Pick        int       `json:"pick"`
	OverallPick int       `json:"overall_pick"`
	AutoPicked  bool      `json:"auto_picked"`
	MadeAt      time.Time `json:"made_at"`
}

type ParticipantInfo struct {
	TeamID          string `json:"team_id"`
	DraftPosition   int    `json:"draft_position"`
	Online          bool   `json:"online"`
	AutopickEnabled bool   `json:"autopick_enabled"`
}

// DraftSummary represents a summary of an active draft
type DraftSummary struct {
	DraftID      string             `json:"draft_id"`
	LeagueID     string             `json:"league_id"`
	Status       models.DraftStatus `json:"status"`
	StartedAt    *time.Time         `json:"started_at,omitempty"`
	CurrentRound int                `json:"current_round"`
	CurrentPick  int                `json:"current_pick"`
	TotalTeams   int                `json:"total_teams"`
	TotalRounds  int                `json:"total_rounds"`
}

// newDraftStateResponse flattens a snapshot for REST clients.
func newDraftStateResponse(snap *ledger.Snapshot) *DraftStateResponse {
	d := snap.Draft
	resp := &DraftStateResponse{
		DraftID:        d.ID.String(),
		Status:         d.Status,
		Sequence:       snap.Sequence,
		RecentPicks:    []RecentPickInfo{},
		TotalPicks:     d.Settings.TotalPicks(),
		CompletedPicks: len(snap.Picks),
		AvailableCount: snap.AvailableCount,
	}

	if d.TeamOnClock != uuid.Nil && d.Status != models.DraftStatusCompleted {
		resp.CurrentPick = &CurrentPickInfo{
			TeamID:      d.TeamOnClock.String(),
			Round:       d.CurrentRound,
			OverallPick: d.CurrentPick,
			TimeoutAt:   d.PickDeadline,
			TimePerPick: d.Settings.TimePerPickSec,
		}
		remaining := int(time.Duration(snap.TimeRemainingMs) * time.Millisecond / time.Second)
		resp.TimeRemaining = &remaining
	}

	for i := len(snap.Picks) - 1; i >= 0 && len(resp.RecentPicks) < recentPickLimit; i-- {
		p := snap.Picks[i]
		resp.RecentPicks = append(resp.RecentPicks, RecentPickInfo{
			PickID:      p.ID.String(),
			TeamID:      p.TeamID.String(),
			PlayerID:    p.PlayerID.String(),
			Round:       p.Round,
			Pick:        p.Pick,
			OverallPick: p.OverallPick,
			AutoPicked:  p.IsAutoPick,
			MadeAt:      p.PickedAt,
		})
	}

	for _, part := range snap.Participants {
		resp.Participants = append(resp.Participants, ParticipantInfo{
			TeamID:          part.TeamID.String(),
			DraftPosition:   part.DraftPosition,
			Online:          part.Online,
			AutopickEnabled: part.AutopickEnabled,
		})
	}
	return resp
}

func newDraftSummary(snap *ledger.Snapshot) DraftSummary {
	d := snap.Draft
	return DraftSummary{
		DraftID:      d.ID.String(),
		LeagueID:     d.LeagueID.String(),
		Status:       d.Status,
		StartedAt:    d.StartedAt,
		CurrentRound: d.CurrentRound,
		CurrentPick:  d.CurrentPick,
		TotalTeams:   len(d.Settings.DraftOrder),
		TotalRounds:  d.Settings.Rounds,
	}
}

func hasSeat(participants []models.DraftParticipant, teamID uuid.UUID) bool {
	for _, p := range participants {
		if p.TeamID == teamID {
			return true
		}
	}
	return false
}

// StateHandler handles HTTP requests for draft state
type StateHandler struct {
	snapshots *Snapshots
}

func NewStateHandler(snapshots *Snapshots) *StateHandler {
	return &StateHandler{snapshots: snapshots}
}

// HandleGetDraftState handles GET /api/drafts/{id}/state
func (h *StateHandler) HandleGetDraftState(w http.ResponseWriter, r *http.Request) {
	draftID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "Invalid draft ID format", http.StatusBadRequest)
		return
	}

	snap, err := h.snapshots.Snapshot(r.Context(), draftID)
	if err != nil {
		if errors.Is(err, drafterr.ErrDraftNotFound) {
			http.Error(w, "Draft not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to get draft state")
		http.Error(w, "Failed to get draft state", http.StatusInternalServerError)
		return
	}

	writeJSON(w, newDraftStateResponse(snap))
}

// HandleGetActiveDrafts handles GET /api/drafts/active
func (h *StateHandler) HandleGetActiveDrafts(w http.ResponseWriter, r *http.Request) {
	ids, err := h.snapshots.ActiveDrafts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to get active drafts")
		http.Error(w, "Failed to get active drafts", http.StatusInternalServerError)
		return
	}

	drafts := make([]DraftSummary, 0, len(ids))
	for _, id := range ids {
		snap, err := h.snapshots.Snapshot(r.Context(), id)
		if err != nil {
			// Drafts can finish unloading between the two calls.
			log.Debug().Err(err).Str("draft_id", id.String()).Msg("skipping draft in active list")
			continue
		}
		drafts = append(drafts, newDraftSummary(snap))
	}

	writeJSON(w, drafts)
}

// RegisterStateRoutes registers state-related HTTP routes
func (h *StateHandler) RegisterStateRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/drafts/active", h.HandleGetActiveDrafts)
	mux.HandleFunc("GET /api/drafts/{id}/state", h.HandleGetDraftState)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
