package server

import "net/http"

// handleCheckUserPermission handles GET /v1/storefront/permission.
func (s *Server) handleCheckUserPermission(w http.ResponseWriter, r *http.Request) {
	perm, err := s.checkUserPermission(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, perm)
}

// handleStorefrontOrganization handles GET /v1/storefront/organization.
func (s *Server) handleStorefrontOrganization(w http.ResponseWriter, r *http.Request) {
	org, err := s.storefrontOrganization(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, org)
}

// handleStorefrontCostCenter handles GET /v1/storefront/cost-center.
func (s *Server) handleStorefrontCostCenter(w http.ResponseWriter, r *http.Request) {
	cc, err := s.storefrontCostCenter(r.Context(), sessionID(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cc)
}
