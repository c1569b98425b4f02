package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/presence"
)

// SessionHeader carries the current storefront session on lookup requests.
const SessionHeader = "X-Session-ID"

// HTTPClient implements StorefrontClient and AdminClient using the
// orgwidget HTTP/JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Sessions ---

func (c *HTTPClient) CreateSession(ctx context.Context) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	if err := c.doJSON(ctx, http.MethodPost, "/v1/sessions", "", struct{}{}, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, id string) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/"+url.PathEscape(id), "", nil, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) UpdateSessionProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*model.SessionSnapshot, error) {
	var snap model.SessionSnapshot
	if err := c.doJSON(ctx, http.MethodPut, "/v1/sessions/"+url.PathEscape(id)+"/profile", "", req, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

func (c *HTTPClient) ActiveSessions(ctx context.Context) ([]presence.Entry, error) {
	var resp struct {
		Sessions []presence.Entry `json:"sessions"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/sessions/active", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Sessions, nil
}

// --- Storefront lookups ---

func (c *HTTPClient) CheckUserPermission(ctx context.Context, sessionID string) (*model.Permission, error) {
	var perm model.Permission
	if err := c.doJSON(ctx, http.MethodGet, "/v1/storefront/permission", sessionID, nil, &perm); err != nil {
		return nil, err
	}
	return &perm, nil
}

func (c *HTTPClient) GetOrganization(ctx context.Context, sessionID string) (*model.Organization, error) {
	var org model.Organization
	if err := c.doJSON(ctx, http.MethodGet, "/v1/storefront/organization", sessionID, nil, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *HTTPClient) GetCostCenter(ctx context.Context, sessionID string) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := c.doJSON(ctx, http.MethodGet, "/v1/storefront/cost-center", sessionID, nil, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

// --- Organization directory ---

func (c *HTTPClient) CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*model.Organization, error) {
	var org model.Organization
	if err := c.doJSON(ctx, http.MethodPost, "/v1/organizations", "", req, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *HTTPClient) ListOrganizations(ctx context.Context) ([]*model.Organization, error) {
	var resp struct {
		Organizations []*model.Organization `json:"organizations"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/organizations", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Organizations, nil
}

func (c *HTTPClient) UpdateOrganizationStatus(ctx context.Context, id string, status model.OrganizationStatus) (*model.Organization, error) {
	body := map[string]string{"status": string(status)}
	var org model.Organization
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/organizations/"+url.PathEscape(id)+"/status", "", body, &org); err != nil {
		return nil, err
	}
	return &org, nil
}

func (c *HTTPClient) CreateCostCenter(ctx context.Context, organizationID, name string) (*model.CostCenter, error) {
	body := map[string]string{"name": name}
	var cc model.CostCenter
	if err := c.doJSON(ctx, http.MethodPost, "/v1/organizations/"+url.PathEscape(organizationID)+"/cost-centers", "", body, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (c *HTTPClient) ListCostCenters(ctx context.Context, organizationID string) ([]*model.CostCenter, error) {
	var resp struct {
		CostCenters []*model.CostCenter `json:"cost_centers"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/organizations/"+url.PathEscape(organizationID)+"/cost-centers", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.CostCenters, nil
}

func (c *HTTPClient) SetUser(ctx context.Context, req *SetUserRequest) (*model.User, error) {
	var user model.User
	if err := c.doJSON(ctx, http.MethodPut, "/v1/users", "", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *HTTPClient) ListRoles(ctx context.Context) ([]*model.Role, error) {
	var resp struct {
		Roles []*model.Role `json:"roles"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/roles", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Roles, nil
}

// Export writes the organization directory as JSONL to w.
func (c *HTTPClient) Export(ctx context.Context, w io.Writer) error {
	data, err := c.do(ctx, http.MethodGet, "/v1/export", "", nil)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", "", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// A non-empty sessionID is sent in the SessionHeader. If result is nil, the
// response body is discarded.
func (c *HTTPClient) doJSON(ctx context.Context, method, path, sessionID string, body any, result any) error {
	respBody, err := c.do(ctx, method, path, sessionID, body)
	if err != nil {
		return err
	}
	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}
	return nil
}

// do performs the request and returns the raw response body. Error
// statuses become *APIError.
func (c *HTTPClient) do(ctx context.Context, method, path, sessionID string, body any) ([]byte, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	if sessionID != "" {
		req.Header.Set(SessionHeader, sessionID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return nil, &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}
	return respBody, nil
}
