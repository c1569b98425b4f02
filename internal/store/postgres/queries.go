package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alfredjeanlab/orgwidget/internal/model"
)

const (
	organizationColumns = `id, name, status, created_at, updated_at`
	costCenterColumns   = `id, organization_id, name, created_at`
	roleColumns         = `id, name, permissions`
	userColumns         = `id, email, name, organization_id, cost_center_id, role_id`
	sessionColumns      = `id, email, authenticated, created_at, updated_at`
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries implements every store.Store data method against an executor.
type queries struct {
	db executor
}

// --- Organizations ---

func (q queries) CreateOrganization(ctx context.Context, o *model.Organization) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO organizations (id, name, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.Name, string(o.Status), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert organization %s: %w", o.ID, err)
	}
	return nil
}

func (q queries) GetOrganization(ctx context.Context, id string) (*model.Organization, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id)
	return scanOrganization(row)
}

func (q queries) ListOrganizations(ctx context.Context) ([]*model.Organization, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+organizationColumns+` FROM organizations ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	return collect(rows, scanOrganization)
}

func (q queries) UpdateOrganizationStatus(ctx context.Context, id string, status model.OrganizationStatus) (*model.Organization, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE organizations SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+organizationColumns,
		id, string(status),
	)
	return scanOrganization(row)
}

// --- Cost centers ---

func (q queries) CreateCostCenter(ctx context.Context, c *model.CostCenter) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO cost_centers (id, organization_id, name, created_at)
		VALUES ($1, $2, $3, $4)`,
		c.ID, c.OrganizationID, c.Name, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert cost center %s: %w", c.ID, err)
	}
	return nil
}

func (q queries) GetCostCenter(ctx context.Context, id string) (*model.CostCenter, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+costCenterColumns+` FROM cost_centers WHERE id = $1`, id)
	return scanCostCenter(row)
}

func (q queries) ListCostCenters(ctx context.Context, organizationID string) ([]*model.CostCenter, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+costCenterColumns+` FROM cost_centers WHERE organization_id = $1 ORDER BY name, id`,
		organizationID)
	if err != nil {
		return nil, fmt.Errorf("list cost centers: %w", err)
	}
	return collect(rows, scanCostCenter)
}

// --- Roles ---

func (q queries) GetRole(ctx context.Context, id string) (*model.Role, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

func (q queries) ListRoles(ctx context.Context) ([]*model.Role, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	return collect(rows, scanRole)
}

// --- Users ---

// UpsertUser inserts a user or rebinds the existing user with the same email.
// On conflict the stored ID is kept and written back to u.
func (q queries) UpsertUser(ctx context.Context, u *model.User) error {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO users (id, email, name, organization_id, cost_center_id, role_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (email) DO UPDATE SET
			name = EXCLUDED.name,
			organization_id = EXCLUDED.organization_id,
			cost_center_id = EXCLUDED.cost_center_id,
			role_id = EXCLUDED.role_id
		RETURNING id`,
		u.ID, u.Email, u.Name, u.OrganizationID, u.CostCenterID, u.RoleID,
	)
	if err := row.Scan(&u.ID); err != nil {
		return fmt.Errorf("upsert user %s: %w", u.Email, err)
	}
	return nil
}

func (q queries) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (q queries) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := q.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY email`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return collect(rows, scanUser)
}

// --- Sessions ---

func (q queries) CreateSession(ctx context.Context, s *model.Session) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO sessions (id, email, authenticated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, nullString(s.Email), s.Authenticated, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (q queries) GetSession(ctx context.Context, id string) (*model.Session, error) {
	row := q.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = $1`, id)
	return scanSession(row)
}

func (q queries) UpdateSession(ctx context.Context, s *model.Session) error {
	res, err := q.db.ExecContext(ctx, `
		UPDATE sessions SET email = $2, authenticated = $3, updated_at = $4
		WHERE id = $1`,
		s.ID, nullString(s.Email), s.Authenticated, s.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
