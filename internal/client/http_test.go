package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alfredjeanlab/orgwidget/internal/model"
)

// testHandler captures the incoming request details and returns a canned response.
type testHandler struct {
	// captured from the request
	method      string
	path        string
	body        string
	contentType string
	auth        string
	sessionID   string

	// canned response
	statusCode   int
	responseBody string
}

func (h *testHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.method = r.Method
	h.path = r.URL.Path
	h.contentType = r.Header.Get("Content-Type")
	h.auth = r.Header.Get("Authorization")
	h.sessionID = r.Header.Get(SessionHeader)
	if r.Body != nil {
		data, _ := io.ReadAll(r.Body)
		h.body = string(data)
	}

	w.Header().Set("Content-Type", "application/json")
	if h.statusCode != 0 {
		w.WriteHeader(h.statusCode)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	if h.responseBody != "" {
		_, _ = w.Write([]byte(h.responseBody))
	}
}

// newTestClient creates an HTTPClient pointed at a test server with the given handler.
func newTestClient(t *testing.T, h http.Handler, token string) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL+"/", token)
}

func TestHTTPClient_ImplementsInterfaces(t *testing.T) {
	var _ StorefrontClient = (*HTTPClient)(nil)
	var _ AdminClient = (*HTTPClient)(nil)
}

// --- Sessions ---

func TestHTTPClient_GetSession(t *testing.T) {
	h := &testHandler{responseBody: `{
		"id": "sess-1",
		"namespaces": {"profile": {"isAuthenticated": {"value": "true"}, "email": {"value": "a@b.test"}}}
	}`}
	c := newTestClient(t, h, "")

	snap, err := c.GetSession(context.Background(), "sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if h.method != http.MethodGet || h.path != "/v1/sessions/sess-1" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if snap.AuthClaim() != "true" || snap.Email() != "a@b.test" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestHTTPClient_CreateSession(t *testing.T) {
	h := &testHandler{
		statusCode:   http.StatusCreated,
		responseBody: `{"id":"sess-new","namespaces":{"profile":{"isAuthenticated":{"value":"false"}}}}`,
	}
	c := newTestClient(t, h, "")

	snap, err := c.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if h.method != http.MethodPost || h.path != "/v1/sessions" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if snap.ID != "sess-new" || snap.AuthClaim() != "false" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestHTTPClient_UpdateSessionProfile(t *testing.T) {
	h := &testHandler{responseBody: `{"id":"sess-1","namespaces":{"profile":{"isAuthenticated":{"value":"true"}}}}`}
	c := newTestClient(t, h, "")

	_, err := c.UpdateSessionProfile(context.Background(), "sess-1", &UpdateProfileRequest{Email: "a@b.test", Authenticated: true})
	if err != nil {
		t.Fatalf("UpdateSessionProfile: %v", err)
	}
	if h.method != http.MethodPut || h.path != "/v1/sessions/sess-1/profile" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if h.contentType != "application/json" {
		t.Errorf("Content-Type = %q", h.contentType)
	}
	var body UpdateProfileRequest
	if err := json.Unmarshal([]byte(h.body), &body); err != nil {
		t.Fatalf("body: %v", err)
	}
	if body.Email != "a@b.test" || !body.Authenticated {
		t.Errorf("body = %+v", body)
	}
}

// --- Lookups ---

func TestHTTPClient_Lookups(t *testing.T) {
	for _, tc := range []struct {
		name     string
		path     string
		response string
		call     func(c *HTTPClient) (string, error)
	}{
		{
			name:     "Permission",
			path:     "/v1/storefront/permission",
			response: `{"role":{"id":"customer-buyer","name":"Buyer"},"permissions":["buyer-quotes"]}`,
			call: func(c *HTTPClient) (string, error) {
				p, err := c.CheckUserPermission(context.Background(), "sess-1")
				if err != nil {
					return "", err
				}
				return p.Role.Name, nil
			},
		},
		{
			name:     "Organization",
			path:     "/v1/storefront/organization",
			response: `{"id":"org-1","name":"Acme","status":"active"}`,
			call: func(c *HTTPClient) (string, error) {
				o, err := c.GetOrganization(context.Background(), "sess-1")
				if err != nil {
					return "", err
				}
				return o.Name + "/" + o.Status.String(), nil
			},
		},
		{
			name:     "CostCenter",
			path:     "/v1/storefront/cost-center",
			response: `{"id":"cc-1","organization_id":"org-1","name":"HQ"}`,
			call: func(c *HTTPClient) (string, error) {
				cc, err := c.GetCostCenter(context.Background(), "sess-1")
				if err != nil {
					return "", err
				}
				return cc.Name, nil
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			h := &testHandler{responseBody: tc.response}
			c := newTestClient(t, h, "secret")

			got, err := tc.call(c)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if got == "" {
				t.Error("empty result")
			}
			if h.path != tc.path {
				t.Errorf("path = %q, want %q", h.path, tc.path)
			}
			if h.sessionID != "sess-1" {
				t.Errorf("%s = %q, want sess-1", SessionHeader, h.sessionID)
			}
			if h.auth != "Bearer secret" {
				t.Errorf("Authorization = %q", h.auth)
			}
		})
	}
}

func TestHTTPClient_LookupErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		status   int
		body     string
		notFound bool
		unauth   bool
		wantMsg  string
	}{
		{"NotFound", http.StatusNotFound, `{"error":"organization not found"}`, true, false, "organization not found"},
		{"Unauthenticated", http.StatusUnauthorized, `{"error":"session is not authenticated"}`, false, true, "session is not authenticated"},
		{"PlainBody", http.StatusBadGateway, `upstream down`, false, false, "upstream down"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, &testHandler{statusCode: tc.status, responseBody: tc.body}, "")
			_, err := c.GetOrganization(context.Background(), "sess-1")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.StatusCode != tc.status || apiErr.Message != tc.wantMsg {
				t.Errorf("APIError = %+v", apiErr)
			}
			if IsNotFound(err) != tc.notFound {
				t.Errorf("IsNotFound = %v, want %v", IsNotFound(err), tc.notFound)
			}
			if IsUnauthenticated(err) != tc.unauth {
				t.Errorf("IsUnauthenticated = %v, want %v", IsUnauthenticated(err), tc.unauth)
			}
		})
	}
}

// --- Organization directory ---

func TestHTTPClient_UpdateOrganizationStatus(t *testing.T) {
	h := &testHandler{responseBody: `{"id":"org 1","name":"Acme","status":"on-hold"}`}
	c := newTestClient(t, h, "")

	org, err := c.UpdateOrganizationStatus(context.Background(), "org 1", model.OrganizationOnHold)
	if err != nil {
		t.Fatalf("UpdateOrganizationStatus: %v", err)
	}
	if h.method != http.MethodPatch || h.path != "/v1/organizations/org 1/status" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if h.body != `{"status":"on-hold"}` {
		t.Errorf("body = %s", h.body)
	}
	if org.Status != model.OrganizationOnHold {
		t.Errorf("status = %q", org.Status)
	}
}

func TestHTTPClient_ListEndpoints(t *testing.T) {
	h := &testHandler{responseBody: `{"organizations":[{"id":"org-1"}],"cost_centers":[{"id":"cc-1"},{"id":"cc-2"}],"roles":[{"id":"customer-buyer"}],"sessions":[{"session_id":"sess-1"}]}`}
	c := newTestClient(t, h, "")
	ctx := context.Background()

	orgs, err := c.ListOrganizations(ctx)
	if err != nil || len(orgs) != 1 {
		t.Fatalf("ListOrganizations = %v, %v", orgs, err)
	}
	ccs, err := c.ListCostCenters(ctx, "org-1")
	if err != nil || len(ccs) != 2 {
		t.Fatalf("ListCostCenters = %v, %v", ccs, err)
	}
	if h.path != "/v1/organizations/org-1/cost-centers" {
		t.Errorf("path = %q", h.path)
	}
	roles, err := c.ListRoles(ctx)
	if err != nil || len(roles) != 1 || roles[0].ID != model.RoleCustomerBuyer {
		t.Fatalf("ListRoles = %v, %v", roles, err)
	}
	active, err := c.ActiveSessions(ctx)
	if err != nil || len(active) != 1 || active[0].SessionID != "sess-1" {
		t.Fatalf("ActiveSessions = %v, %v", active, err)
	}
}

func TestHTTPClient_SetUser(t *testing.T) {
	h := &testHandler{responseBody: `{"id":"usr-1","email":"a@b.test","organization_id":"org-1","cost_center_id":"cc-1","role_id":"customer-buyer"}`}
	c := newTestClient(t, h, "")

	u, err := c.SetUser(context.Background(), &SetUserRequest{Email: "a@b.test", OrganizationID: "org-1", CostCenterID: "cc-1", RoleID: "customer-buyer"})
	if err != nil {
		t.Fatalf("SetUser: %v", err)
	}
	if h.method != http.MethodPut || h.path != "/v1/users" {
		t.Errorf("request = %s %s", h.method, h.path)
	}
	if u.ID != "usr-1" {
		t.Errorf("ID = %q", u.ID)
	}
}

func TestHTTPClient_Health(t *testing.T) {
	c := newTestClient(t, &testHandler{responseBody: `{"status":"ok"}`}, "")
	got, err := c.Health(context.Background())
	if err != nil || got != "ok" {
		t.Fatalf("Health = %q, %v", got, err)
	}
}

func TestHTTPClient_DecodeError(t *testing.T) {
	c := newTestClient(t, &testHandler{responseBody: `not json`}, "")
	if _, err := c.Health(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestHTTPClient_Export(t *testing.T) {
	jsonl := `{"version":"1","type":"header"}` + "\n" + `{"type":"organization","data":{"id":"org-1"}}` + "\n"
	h := &testHandler{responseBody: jsonl}
	c := newTestClient(t, h, "tok")

	var buf strings.Builder
	if err := c.Export(context.Background(), &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if h.method != http.MethodGet || h.path != "/v1/export" || h.auth != "Bearer tok" {
		t.Fatalf("unexpected request: %s %s auth=%q", h.method, h.path, h.auth)
	}
	if buf.String() != jsonl {
		t.Fatalf("body = %q", buf.String())
	}

	h.statusCode = http.StatusInternalServerError
	h.responseBody = `{"error":"boom"}`
	var apiErr *APIError
	if err := c.Export(context.Background(), &buf); !errors.As(err, &apiErr) || apiErr.Message != "boom" {
		t.Fatalf("expected APIError boom, got %v", err)
	}
}
