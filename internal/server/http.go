package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/orgwidget/internal/client"
	"github.com/alfredjeanlab/orgwidget/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health, /metrics and
// /widget) must include a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	handle := func(pattern string, h http.HandlerFunc) {
		if s.metrics != nil {
			mux.Handle(pattern, s.metrics.Instrument(pattern, h))
			return
		}
		mux.HandleFunc(pattern, h)
	}

	handle("POST /v1/sessions", s.handleCreateSession)
	handle("GET /v1/sessions/active", s.handleActiveSessions)
	handle("GET /v1/sessions/{id}", s.handleGetSession)
	handle("PUT /v1/sessions/{id}/profile", s.handleUpdateSessionProfile)
	handle("GET /v1/storefront/permission", s.handleCheckUserPermission)
	handle("GET /v1/storefront/organization", s.handleStorefrontOrganization)
	handle("GET /v1/storefront/cost-center", s.handleStorefrontCostCenter)
	handle("POST /v1/organizations", s.handleCreateOrganization)
	handle("GET /v1/organizations", s.handleListOrganizations)
	handle("PATCH /v1/organizations/{id}/status", s.handleUpdateOrganizationStatus)
	handle("POST /v1/organizations/{id}/cost-centers", s.handleCreateCostCenter)
	handle("GET /v1/organizations/{id}/cost-centers", s.handleListCostCenters)
	handle("PUT /v1/users", s.handleSetUser)
	handle("GET /v1/roles", s.handleListRoles)
	handle("GET /v1/export", s.handleExport)
	handle("GET /v1/events/stream", s.handleEventStream)
	handle("GET /v1/health", s.handleHealth)
	handle("GET /widget", s.handleWidget)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// sessionID returns the session the request is made on behalf of.
func sessionID(r *http.Request) string {
	return r.Header.Get(client.SessionHeader)
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps an error from a core method to its HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, httpStatus(err), err.Error())
}

func httpStatus(err error) int {
	var (
		ie inputError
		ve *model.ValidationError
	)
	switch {
	case errors.As(err, &ie), errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, errUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, sql.ErrNoRows):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
