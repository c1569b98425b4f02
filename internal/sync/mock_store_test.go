package sync

import (
	"context"
	"database/sql"
	"errors"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/store"
)

// mockStore is a minimal in-memory store for sync tests. Lists come back
// in map order so the exporter's sorting is exercised.
type mockStore struct {
	orgs    map[string]*model.Organization
	centers map[string]*model.CostCenter
	roles   map[string]*model.Role
	users   map[string]*model.User
	listErr error
}

var _ store.Store = (*mockStore)(nil)

func newMockStore() *mockStore {
	return &mockStore{
		orgs:    make(map[string]*model.Organization),
		centers: make(map[string]*model.CostCenter),
		roles:   make(map[string]*model.Role),
		users:   make(map[string]*model.User),
	}
}

func (m *mockStore) CreateOrganization(_ context.Context, org *model.Organization) error {
	m.orgs[org.ID] = org
	return nil
}

func (m *mockStore) GetOrganization(_ context.Context, id string) (*model.Organization, error) {
	o, ok := m.orgs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return o, nil
}

func (m *mockStore) ListOrganizations(context.Context) ([]*model.Organization, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []*model.Organization
	for _, o := range m.orgs {
		out = append(out, o)
	}
	return out, nil
}

func (m *mockStore) UpdateOrganizationStatus(_ context.Context, id string, status model.OrganizationStatus) (*model.Organization, error) {
	o, ok := m.orgs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	o.Status = status
	return o, nil
}

func (m *mockStore) CreateCostCenter(_ context.Context, cc *model.CostCenter) error {
	m.centers[cc.ID] = cc
	return nil
}

func (m *mockStore) GetCostCenter(_ context.Context, id string) (*model.CostCenter, error) {
	cc, ok := m.centers[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return cc, nil
}

func (m *mockStore) ListCostCenters(_ context.Context, organizationID string) ([]*model.CostCenter, error) {
	var out []*model.CostCenter
	for _, cc := range m.centers {
		if cc.OrganizationID == organizationID {
			out = append(out, cc)
		}
	}
	return out, nil
}

func (m *mockStore) GetRole(_ context.Context, id string) (*model.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return r, nil
}

func (m *mockStore) ListRoles(context.Context) ([]*model.Role, error) {
	var out []*model.Role
	for _, r := range m.roles {
		out = append(out, r)
	}
	return out, nil
}

func (m *mockStore) UpsertUser(_ context.Context, u *model.User) error {
	m.users[u.Email] = u
	return nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	u, ok := m.users[email]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return u, nil
}

func (m *mockStore) ListUsers(context.Context) ([]*model.User, error) {
	var out []*model.User
	for _, u := range m.users {
		out = append(out, u)
	}
	return out, nil
}

func (m *mockStore) CreateSession(context.Context, *model.Session) error {
	return errors.New("sessions not supported")
}

func (m *mockStore) GetSession(context.Context, string) (*model.Session, error) {
	return nil, sql.ErrNoRows
}

func (m *mockStore) UpdateSession(context.Context, *model.Session) error {
	return sql.ErrNoRows
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error { return nil }

// seedDirectory fills the store with two organizations, three cost
// centers, two roles and two users.
func seedDirectory(m *mockStore) {
	m.orgs["org-b"] = &model.Organization{ID: "org-b", Name: "Beta", Status: model.OrganizationActive}
	m.orgs["org-a"] = &model.Organization{ID: "org-a", Name: "Acme", Status: model.OrganizationActive}
	m.centers["cc-2"] = &model.CostCenter{ID: "cc-2", OrganizationID: "org-a", Name: "Ops"}
	m.centers["cc-1"] = &model.CostCenter{ID: "cc-1", OrganizationID: "org-a", Name: "HQ"}
	m.centers["cc-3"] = &model.CostCenter{ID: "cc-3", OrganizationID: "org-b", Name: "Main"}
	m.roles["customer-buyer"] = &model.Role{ID: "customer-buyer", Name: "Buyer", Permissions: []string{"order"}}
	m.roles["customer-admin"] = &model.Role{ID: "customer-admin", Name: "Admin"}
	m.users["zed@beta.test"] = &model.User{ID: "u-2", Email: "zed@beta.test", OrganizationID: "org-b", CostCenterID: "cc-3", RoleID: "customer-buyer"}
	m.users["amy@acme.test"] = &model.User{ID: "u-1", Email: "amy@acme.test", OrganizationID: "org-a", CostCenterID: "cc-1", RoleID: "customer-admin"}
}
