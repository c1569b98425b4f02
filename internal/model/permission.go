package model

// Well-known role IDs seeded by the schema migrations.
const (
	RoleStoreAdmin       = "store-admin"
	RoleCustomerAdmin    = "customer-admin"
	RoleCustomerApprover = "customer-approver"
	RoleCustomerBuyer    = "customer-buyer"
)

// Role is a named set of storefront permissions.
type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions,omitempty"`
}

// RoleRef is the part of a role exposed to the storefront.
type RoleRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Permission is the result of a user permission check: the role the
// current shopper holds and the permissions it grants.
type Permission struct {
	Role        RoleRef  `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
}

// PermissionFor builds the storefront permission record for a role.
func PermissionFor(r *Role) *Permission {
	if r == nil {
		return nil
	}
	perms := make([]string, len(r.Permissions))
	copy(perms, r.Permissions)
	return &Permission{
		Role:        RoleRef{ID: r.ID, Name: r.Name},
		Permissions: perms,
	}
}

// User binds a shopper email to an organization, cost center and role.
type User struct {
	ID             string `json:"id"`
	Email          string `json:"email"`
	Name           string `json:"name,omitempty"`
	OrganizationID string `json:"organization_id"`
	CostCenterID   string `json:"cost_center_id"`
	RoleID         string `json:"role_id"`
}
