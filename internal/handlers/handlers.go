package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/draftlab/fastbreak/internal/auth"
	"github.com/draftlab/fastbreak/internal/draft"
	"github.com/draftlab/fastbreak/internal/logger"
	"github.com/draftlab/fastbreak/internal/models"
	"github.com/draftlab/fastbreak/internal/pubsub"
)

// APIHandlers contains all API handler methods
type APIHandlers struct {
	session *draft.Session
	pubsub  *pubsub.PubSub
}

// NewAPIHandlers creates a new API handlers instance
func NewAPIHandlers(session *draft.Session, ps *pubsub.PubSub) *APIHandlers {
	return &APIHandlers{
		session: session,
		pubsub:  ps,
	}
}

// GetDraftState returns the current draft state plus the valued pool
func (h *APIHandlers) GetDraftState(w http.ResponseWriter, r *http.Request) {
	logger.Debug("Getting draft state")

	resp := struct {
		models.DraftState
		Pool []models.Player `json:"pool"`
	}{h.session.State(), h.session.Players("")}

	writeJSON(w, http.StatusOK, resp)
}

// StartDraft moves the session from not started to in progress
func (h *APIHandlers) StartDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		ManagerTeam int `json:"managerTeam"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode draft start request", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.session.Start(req.ManagerTeam); err != nil {
		// A started or finished draft refuses a second start; anything
		// else is a bad managerTeam.
		status := http.StatusBadRequest
		if h.session.Status() != models.StatusNotStarted {
			status = http.StatusConflict
		}
		logger.Warn("Failed to start draft", "error", err, "manager_team", req.ManagerTeam)
		writeError(w, status, err)
		return
	}

	state := h.session.State()
	h.pubsub.Publish(pubsub.Event{
		Type: pubsub.EventDraftStart,
		Payload: map[string]interface{}{
			"managerTeam": req.ManagerTeam,
			"numTeams":    state.NumTeams,
			"numRounds":   state.NumRounds,
		},
	})

	writeJSON(w, http.StatusOK, state)
}

// DraftPick handles a manual pick for the team on the clock
func (h *APIHandlers) DraftPick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		PlayerID string `json:"playerId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("Failed to decode draft pick request", "error", err)
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.PlayerID == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("playerId is required"))
		return
	}

	logger.Info("Drafting player", "player_id", req.PlayerID)
	pick, err := h.session.Pick(req.PlayerID)
	if err != nil {
		var full *draft.RosterFullError
		if errors.As(err, &full) {
			logger.Warn("Pick rejected, roster full", "team", full.Team, "player", full.Player)
		} else {
			logger.Error("Failed to draft player", "error", err, "player_id", req.PlayerID)
		}
		writeError(w, statusFor(err), err)
		return
	}

	h.announcePick(pubsub.EventDraftPick, pick)

	writeJSON(w, http.StatusOK, pick)
}

// AutoPick drafts the best fitting player for the team on the clock
func (h *APIHandlers) AutoPick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pick, err := h.session.AutoPick()
	if err != nil {
		var full *draft.RosterFullError
		if errors.As(err, &full) {
			logger.Warn("Auto-pick rejected, roster full", "team", full.Team, "player", full.Player)
		} else {
			logger.Error("Failed to auto-pick", "error", err)
		}
		writeError(w, statusFor(err), err)
		return
	}

	logger.Info("Auto-picked player", "player_id", pick.PlayerID, "team", pick.Team, "slot", pick.Slot)
	h.announcePick(pubsub.EventDraftAutoPick, pick)

	writeJSON(w, http.StatusOK, pick)
}

// ResetDraft discards the session and its snapshot
func (h *APIHandlers) ResetDraft(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Commissioner-only when the route is authenticated.
	if user := auth.GetUser(r); user != nil && !auth.IsAdmin(user) {
		writeError(w, http.StatusForbidden, fmt.Errorf("commissioner access required"))
		return
	}

	logger.Info("Resetting draft")
	if err := h.session.Reset(); err != nil {
		logger.Error("Failed to reset draft", "error", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.pubsub.Publish(pubsub.Event{Type: pubsub.EventDraftReset})

	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

// GetRecommendations returns the manager's top slot recommendations
func (h *APIHandlers) GetRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.session.Recommendations()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	writeJSON(w, http.StatusOK, recs)
}

// BestAvailable returns the top of the board fitting the manager's needs
func (h *APIHandlers) BestAvailable(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if q := r.URL.Query().Get("limit"); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", q))
			return
		}
		limit = n
	}

	writeJSON(w, http.StatusOK, h.session.BestAvailable(limit))
}

// ListPlayers returns the valued undrafted pool, optionally filtered by
// position
func (h *APIHandlers) ListPlayers(w http.ResponseWriter, r *http.Request) {
	players := h.session.Players(r.URL.Query().Get("position"))

	writeJSON(w, http.StatusOK, players)
}

// EventsSSE provides Server-Sent Events for realtime updates
func (h *APIHandlers) EventsSSE(w http.ResponseWriter, r *http.Request) {
	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	// Subscribe to events
	eventChan := h.pubsub.Subscribe()
	defer h.pubsub.Unsubscribe(eventChan)

	// Send initial connection message
	fmt.Fprintf(w, "data: {\"type\":\"connected\"}\n\n")
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}

	// Listen for events
	for {
		select {
		case event := <-eventChan:
			data, _ := json.Marshal(event)
			fmt.Fprintf(w, "data: %s\n\n", data)
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		case <-r.Context().Done():
			logger.Debug("SSE client disconnected")
			return
		case <-time.After(30 * time.Second):
			// Send keepalive ping
			fmt.Fprintf(w, ": keepalive\n\n")
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}
}

// announcePick publishes the pick event, plus the completion event when
// this pick ended the draft
func (h *APIHandlers) announcePick(eventType string, pick models.DraftPick) {
	h.pubsub.Publish(pubsub.Event{
		Type: eventType,
		Payload: map[string]interface{}{
			"overall":  pick.Overall,
			"round":    pick.Round,
			"team":     pick.Team,
			"playerId": pick.PlayerID,
			"player":   pick.Player,
			"slot":     pick.Slot,
			"auto":     pick.Auto,
		},
	})

	if h.session.Status() == models.StatusCompleted {
		h.pubsub.Publish(pubsub.Event{
			Type: pubsub.EventDraftComplete,
			Payload: map[string]interface{}{
				"totalPicks": pick.Overall,
			},
		})
	}
}

// statusFor maps engine errors onto HTTP status codes
func statusFor(err error) int {
	var (
		notFound   *draft.PlayerNotFoundError
		notStarted *draft.DraftNotStartedError
		completed  *draft.DraftCompletedError
		rosterFull *draft.RosterFullError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &notStarted), errors.As(err, &completed), errors.As(err, &rosterFull):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
