package server

import (
	"context"
	"database/sql"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/store"
)

// mockStore is an in-memory store.Store. Lookups of missing records return
// sql.ErrNoRows like the postgres store.
type mockStore struct {
	mu          sync.Mutex
	orgs        map[string]*model.Organization
	costCenters map[string]*model.CostCenter
	roles       map[string]*model.Role
	users       map[string]*model.User // by email
	sessions    map[string]*model.Session

	// getSessionErr, when non-nil, is returned by GetSession.
	getSessionErr error
}

func newMockStore() *mockStore {
	return &mockStore{
		orgs:        make(map[string]*model.Organization),
		costCenters: make(map[string]*model.CostCenter),
		roles: map[string]*model.Role{
			model.RoleCustomerAdmin: {ID: model.RoleCustomerAdmin, Name: "Organization Admin", Permissions: []string{"manage-users", "buyer-quotes"}},
			model.RoleCustomerBuyer: {ID: model.RoleCustomerBuyer, Name: "Organization Buyer", Permissions: []string{"buyer-quotes"}},
		},
		users:    make(map[string]*model.User),
		sessions: make(map[string]*model.Session),
	}
}

func (m *mockStore) CreateOrganization(_ context.Context, o *model.Organization) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *o
	m.orgs[o.ID] = &clone
	return nil
}

func (m *mockStore) GetOrganization(_ context.Context, id string) (*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *o
	return &clone, nil
}

func (m *mockStore) ListOrganizations(_ context.Context) ([]*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Organization
	for _, o := range m.orgs {
		clone := *o
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockStore) UpdateOrganizationStatus(_ context.Context, id string, status model.OrganizationStatus) (*model.Organization, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orgs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	o.Status = status
	o.UpdatedAt = time.Now().UTC()
	clone := *o
	return &clone, nil
}

func (m *mockStore) CreateCostCenter(_ context.Context, c *model.CostCenter) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *c
	m.costCenters[c.ID] = &clone
	return nil
}

func (m *mockStore) GetCostCenter(_ context.Context, id string) (*model.CostCenter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.costCenters[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (m *mockStore) ListCostCenters(_ context.Context, organizationID string) ([]*model.CostCenter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.CostCenter
	for _, c := range m.costCenters {
		if c.OrganizationID == organizationID {
			clone := *c
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *mockStore) GetRole(_ context.Context, id string) (*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.roles[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (m *mockStore) ListRoles(_ context.Context) ([]*model.Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Role
	for _, r := range m.roles {
		clone := *r
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStore) UpsertUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Email)
	if existing, ok := m.users[key]; ok {
		u.ID = existing.ID
	}
	clone := *u
	m.users[key] = &clone
	return nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[strings.ToLower(email)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *u
	return &clone, nil
}

func (m *mockStore) ListUsers(_ context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.User
	for _, u := range m.users {
		clone := *u
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *mockStore) CreateSession(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

func (m *mockStore) GetSession(_ context.Context, id string) (*model.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getSessionErr != nil {
		return nil, m.getSessionErr
	}
	s, ok := m.sessions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *s
	return &clone, nil
}

func (m *mockStore) UpdateSession(_ context.Context, s *model.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.ID]; !ok {
		return sql.ErrNoRows
	}
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

func (m *mockStore) RunInTransaction(_ context.Context, fn func(tx store.Store) error) error {
	return fn(m)
}

func (m *mockStore) Close() error {
	return nil
}

// seedBuyer stores an active organization, a cost center, a buyer bound to
// both and an authenticated session for the buyer. It returns the session ID.
func (m *mockStore) seedBuyer(status model.OrganizationStatus) string {
	now := time.Now().UTC()
	m.orgs["org-acme"] = &model.Organization{ID: "org-acme", Name: "Acme", Status: status, CreatedAt: now, UpdatedAt: now}
	m.costCenters["cc-hq"] = &model.CostCenter{ID: "cc-hq", OrganizationID: "org-acme", Name: "HQ", CreatedAt: now}
	m.users["buyer@acme.test"] = &model.User{
		ID: "usr-1", Email: "buyer@acme.test", OrganizationID: "org-acme", CostCenterID: "cc-hq", RoleID: model.RoleCustomerBuyer,
	}
	m.sessions["sess-buyer"] = &model.Session{ID: "sess-buyer", Email: "buyer@acme.test", Authenticated: true, CreatedAt: now, UpdatedAt: now}
	return "sess-buyer"
}
