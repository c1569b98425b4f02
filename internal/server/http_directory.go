package server

import (
	"bytes"
	"net/http"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	dirsync "github.com/alfredjeanlab/orgwidget/internal/sync"
)

// handleCreateOrganization handles POST /v1/organizations.
func (s *Server) handleCreateOrganization(w http.ResponseWriter, r *http.Request) {
	var in createOrganizationInput
	if !decodeBody(w, r, &in) {
		return
	}
	org, err := s.createOrganization(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, org)
}

// handleListOrganizations handles GET /v1/organizations.
func (s *Server) handleListOrganizations(w http.ResponseWriter, r *http.Request) {
	orgs, err := s.store.ListOrganizations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if orgs == nil {
		orgs = []*model.Organization{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"organizations": orgs})
}

// handleUpdateOrganizationStatus handles PATCH /v1/organizations/{id}/status.
func (s *Server) handleUpdateOrganizationStatus(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Status model.OrganizationStatus `json:"status"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	org, err := s.updateOrganizationStatus(r.Context(), r.PathValue("id"), in.Status)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// handleCreateCostCenter handles POST /v1/organizations/{id}/cost-centers.
func (s *Server) handleCreateCostCenter(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Name string `json:"name"`
	}
	if !decodeBody(w, r, &in) {
		return
	}
	cc, err := s.createCostCenter(r.Context(), r.PathValue("id"), in.Name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cc)
}

// handleListCostCenters handles GET /v1/organizations/{id}/cost-centers.
func (s *Server) handleListCostCenters(w http.ResponseWriter, r *http.Request) {
	ccs, err := s.listCostCenters(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if ccs == nil {
		ccs = []*model.CostCenter{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"cost_centers": ccs})
}

// handleSetUser handles PUT /v1/users.
func (s *Server) handleSetUser(w http.ResponseWriter, r *http.Request) {
	var in setUserInput
	if !decodeBody(w, r, &in) {
		return
	}
	u, err := s.setUser(r.Context(), in)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// handleListRoles handles GET /v1/roles.
func (s *Server) handleListRoles(w http.ResponseWriter, r *http.Request) {
	roles, err := s.store.ListRoles(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if roles == nil {
		roles = []*model.Role{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"roles": roles})
}

// handleExport handles GET /v1/export, returning the directory as JSONL in
// the same format the sync scheduler writes.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := dirsync.ExportJSONL(r.Context(), s.store, &buf); err != nil {
		writeServiceError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/x-ndjson")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
