package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/presence"
)

// handleCreateSession handles POST /v1/sessions.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.createSession(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, snap)
}

// handleGetSession handles GET /v1/sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	snap, err := s.getSession(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleUpdateSessionProfile handles PUT /v1/sessions/{id}/profile.
func (s *Server) handleUpdateSessionProfile(w http.ResponseWriter, r *http.Request) {
	var in updateProfileInput
	if !decodeBody(w, r, &in) {
		return
	}
	snap, err := s.updateSessionProfile(r.Context(), r.PathValue("id"), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleActiveSessions handles GET /v1/sessions/active.
// Returns the live session roster from the presence tracker.
func (s *Server) handleActiveSessions(w http.ResponseWriter, r *http.Request) {
	// Parse optional stale_threshold_secs query param (default: 30 min).
	staleThreshold := 30 * time.Minute
	if v := r.URL.Query().Get("stale_threshold_secs"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			staleThreshold = time.Duration(secs) * time.Second
		}
	}

	entries := s.Presence.Roster(staleThreshold)
	if entries == nil {
		entries = []presence.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"sessions": entries})
}
