package gateway

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/dynasty-draft/go/internal/draft/drafterr"
)

// WebSocketHandler handles WebSocket upgrade requests for draft connections
type WebSocketHandler struct {
	connectionManager *ConnectionManager
}

func NewWebSocketHandler(cm *ConnectionManager) *WebSocketHandler {
	return &WebSocketHandler{
		connectionManager: cm,
	}
}

// HandleDraftConnection serves /ws/draft?draft_id=...&team_id=...&user_id=...
// team_id is optional; without it the connection is read only.
func (h *WebSocketHandler) HandleDraftConnection(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	draftIDStr := query.Get("draft_id")
	if draftIDStr == "" {
		http.Error(w, "draft_id is required", http.StatusBadRequest)
		return
	}
	draftID, err := uuid.Parse(draftIDStr)
	if err != nil {
		http.Error(w, "invalid draft_id format", http.StatusBadRequest)
		return
	}

	teamID := uuid.Nil
	if s := query.Get("team_id"); s != "" {
		if teamID, err = uuid.Parse(s); err != nil {
			http.Error(w, "invalid team_id format", http.StatusBadRequest)
			return
		}
	}

	// In production, this would come from JWT token or session
	userID := query.Get("user_id")
	if userID == "" {
		userID = "anonymous"
	}

	snap, err := h.connectionManager.snapshots.Snapshot(r.Context(), draftID)
	if err != nil {
		if errors.Is(err, drafterr.ErrDraftNotFound) {
			http.Error(w, "draft not found", http.StatusNotFound)
			return
		}
		log.Error().Err(err).Str("draft_id", draftID.String()).Msg("failed to load draft for connection")
		http.Error(w, "failed to load draft", http.StatusServiceUnavailable)
		return
	}
	if teamID != uuid.Nil && !hasSeat(snap.Participants, teamID) {
		http.Error(w, "team is not part of this draft", http.StatusForbidden)
		return
	}

	// Upgrade writes its own error response.
	if err := h.connectionManager.UpgradeConnection(w, r, userID, draftID, teamID); err != nil {
		log.Error().
			Err(err).
			Str("draft_id", draftID.String()).
			Str("user_id", userID).
			Msg("failed to upgrade WebSocket connection")
	}
}

// HandleConnectionStats returns statistics about active connections
func (h *WebSocketHandler) HandleConnectionStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(h.connectionManager.GetConnectionStats()); err != nil {
		log.Error().Err(err).Msg("failed to encode connection stats")
	}
}

// RegisterRoutes registers WebSocket routes with an HTTP mux
func (h *WebSocketHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/draft", h.HandleDraftConnection)
	mux.HandleFunc("GET /ws/stats", h.HandleConnectionStats)
}
