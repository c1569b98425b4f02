package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/alfredjeanlab/orgwidget/internal/model"
	"github.com/alfredjeanlab/orgwidget/internal/store"
)

// header is the first JSONL record written by ExportJSONL.
type header struct {
	Version           string    `json:"version"`
	Type              string    `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	OrganizationCount int       `json:"organization_count"`
	CostCenterCount   int       `json:"cost_center_count"`
	UserCount         int       `json:"user_count"`
	RoleCount         int       `json:"role_count"`
}

// record wraps a single JSONL line with a type discriminator.
type record struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// Record types written after the header, in this order.
const (
	TypeOrganization = "organization"
	TypeCostCenter   = "cost_center"
	TypeRole         = "role"
	TypeUser         = "user"
)

// ExportJSONL writes the organization directory as JSONL to w: a header,
// then organizations, cost centers, roles and users. Sessions are not
// exported. Records of each type are sorted by ID (users by email) so
// unchanged directories produce identical output apart from the timestamp.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	orgs, err := s.ListOrganizations(ctx)
	if err != nil {
		return fmt.Errorf("list organizations: %w", err)
	}
	slices.SortFunc(orgs, func(a, b *model.Organization) int { return strings.Compare(a.ID, b.ID) })

	var centers []*model.CostCenter
	for _, org := range orgs {
		ccs, err := s.ListCostCenters(ctx, org.ID)
		if err != nil {
			return fmt.Errorf("list cost centers for %s: %w", org.ID, err)
		}
		slices.SortFunc(ccs, func(a, b *model.CostCenter) int { return strings.Compare(a.ID, b.ID) })
		centers = append(centers, ccs...)
	}

	roles, err := s.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("list roles: %w", err)
	}
	slices.SortFunc(roles, func(a, b *model.Role) int { return strings.Compare(a.ID, b.ID) })

	users, err := s.ListUsers(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	slices.SortFunc(users, func(a, b *model.User) int { return strings.Compare(a.Email, b.Email) })

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:           "1",
		Type:              "header",
		Timestamp:         time.Now().UTC(),
		OrganizationCount: len(orgs),
		CostCenterCount:   len(centers),
		UserCount:         len(users),
		RoleCount:         len(roles),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}

	for _, o := range orgs {
		if err := enc.Encode(record{Type: TypeOrganization, Data: o}); err != nil {
			return fmt.Errorf("encode organization %s: %w", o.ID, err)
		}
	}
	for _, cc := range centers {
		if err := enc.Encode(record{Type: TypeCostCenter, Data: cc}); err != nil {
			return fmt.Errorf("encode cost center %s: %w", cc.ID, err)
		}
	}
	for _, r := range roles {
		if err := enc.Encode(record{Type: TypeRole, Data: r}); err != nil {
			return fmt.Errorf("encode role %s: %w", r.ID, err)
		}
	}
	for _, u := range users {
		if err := enc.Encode(record{Type: TypeUser, Data: u}); err != nil {
			return fmt.Errorf("encode user %s: %w", u.Email, err)
		}
	}
	return nil
}
