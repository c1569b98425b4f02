package postgres

import (
	"database/sql"

	"github.com/lib/pq"

	"github.com/alfredjeanlab/orgwidget/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

func scanOrganization(row scannable) (*model.Organization, error) {
	var o model.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Status, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func scanCostCenter(row scannable) (*model.CostCenter, error) {
	var c model.CostCenter
	if err := row.Scan(&c.ID, &c.OrganizationID, &c.Name, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanRole(row scannable) (*model.Role, error) {
	var r model.Role
	if err := row.Scan(&r.ID, &r.Name, pq.Array(&r.Permissions)); err != nil {
		return nil, err
	}
	return &r, nil
}

func scanUser(row scannable) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &u.OrganizationID, &u.CostCenterID, &u.RoleID); err != nil {
		return nil, err
	}
	return &u, nil
}

func scanSession(row scannable) (*model.Session, error) {
	var (
		s     model.Session
		email sql.NullString
	)
	if err := row.Scan(&s.ID, &email, &s.Authenticated, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	s.Email = email.String
	return &s, nil
}

// collect scans every row with scan and closes rows.
func collect[T any](rows *sql.Rows, scan func(scannable) (*T, error)) ([]*T, error) {
	defer rows.Close()
	var out []*T
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// nullString returns a sql.NullString that is NULL when s is empty.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
