// Package store defines the persistence interface for the organization
// directory and storefront sessions.
//
// Lookups of a missing record return sql.ErrNoRows (possibly wrapped);
// callers test for it with errors.Is.
package store

import (
	"context"

	"github.com/alfredjeanlab/orgwidget/internal/model"
)

// Store defines the persistence interface.
type Store interface {
	// Organizations
	CreateOrganization(ctx context.Context, org *model.Organization) error
	GetOrganization(ctx context.Context, id string) (*model.Organization, error)
	ListOrganizations(ctx context.Context) ([]*model.Organization, error)
	UpdateOrganizationStatus(ctx context.Context, id string, status model.OrganizationStatus) (*model.Organization, error)

	// Cost centers
	CreateCostCenter(ctx context.Context, cc *model.CostCenter) error
	GetCostCenter(ctx context.Context, id string) (*model.CostCenter, error)
	ListCostCenters(ctx context.Context, organizationID string) ([]*model.CostCenter, error)

	// Roles
	GetRole(ctx context.Context, id string) (*model.Role, error)
	ListRoles(ctx context.Context) ([]*model.Role, error)

	// Users
	UpsertUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	ListUsers(ctx context.Context) ([]*model.User, error)

	// Sessions
	CreateSession(ctx context.Context, sess *model.Session) error
	GetSession(ctx context.Context, id string) (*model.Session, error)
	UpdateSession(ctx context.Context, sess *model.Session) error

	// Transaction support
	RunInTransaction(ctx context.Context, fn func(tx Store) error) error

	// Lifecycle
	Close() error
}
