// Package client provides transport-agnostic interfaces for the orgwidget
// storefront service and HTTP/JSON and gRPC implementations of them.
package client

import (
	"context"
	"errors"
	"net/http"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/presence"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StorefrontClient is what the widget needs from the storefront: the
// session source and the three lookups scoped to the current session.
// It is implemented by HTTPClient and GRPCClient.
type StorefrontClient interface {
	// Sessions
	CreateSession(ctx context.Context) (*model.SessionSnapshot, error)
	GetSession(ctx context.Context, id string) (*model.SessionSnapshot, error)
	UpdateSessionProfile(ctx context.Context, id string, req *UpdateProfileRequest) (*model.SessionSnapshot, error)

	// Lookups for the shopper bound to sessionID
	CheckUserPermission(ctx context.Context, sessionID string) (*model.Permission, error)
	GetOrganization(ctx context.Context, sessionID string) (*model.Organization, error)
	GetCostCenter(ctx context.Context, sessionID string) (*model.CostCenter, error)

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// AdminClient manages the organization directory. Only the HTTP transport
// implements it.
type AdminClient interface {
	CreateOrganization(ctx context.Context, req *CreateOrganizationRequest) (*model.Organization, error)
	ListOrganizations(ctx context.Context) ([]*model.Organization, error)
	UpdateOrganizationStatus(ctx context.Context, id string, status model.OrganizationStatus) (*model.Organization, error)
	CreateCostCenter(ctx context.Context, organizationID, name string) (*model.CostCenter, error)
	ListCostCenters(ctx context.Context, organizationID string) ([]*model.CostCenter, error)
	SetUser(ctx context.Context, req *SetUserRequest) (*model.User, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)
	ActiveSessions(ctx context.Context) ([]presence.Entry, error)
}

// UpdateProfileRequest sets the profile claims of a session.
type UpdateProfileRequest struct {
	Email         string `json:"email,omitempty"`
	Authenticated bool   `json:"authenticated"`
}

// CreateOrganizationRequest holds parameters for creating an organization.
type CreateOrganizationRequest struct {
	Name   string                   `json:"name"`
	Status model.OrganizationStatus `json:"status,omitempty"`
}

// SetUserRequest binds a shopper email to an organization, cost center and role.
type SetUserRequest struct {
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	OrganizationID string `json:"organization_id"`
	CostCenterID   string `json:"cost_center_id"`
	RoleID         string `json:"role_id"`
}

// IsNotFound reports whether err means the requested record does not exist,
// for either transport.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return status.Code(err) == codes.NotFound
}

// IsUnauthenticated reports whether err means the session is not logged in
// (or the client token was rejected).
func IsUnauthenticated(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return status.Code(err) == codes.Unauthenticated
}
