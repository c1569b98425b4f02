package model

import "time"

// OrganizationStatus is the lifecycle state of a B2B organization.
type OrganizationStatus string

const (
	OrganizationActive   OrganizationStatus = "active"
	OrganizationOnHold   OrganizationStatus = "on-hold"
	OrganizationInactive OrganizationStatus = "inactive"
)

// String returns the string representation of the status.
func (s OrganizationStatus) String() string {
	return string(s)
}

// IsValid checks whether the status is one of the known values.
// Records read back from storage are not required to be valid; the widget
// degrades unknown values to "no status shown".
func (s OrganizationStatus) IsValid() bool {
	switch s {
	case OrganizationActive, OrganizationOnHold, OrganizationInactive:
		return true
	}
	return false
}

// Organization is the buyer organization a shopper belongs to.
type Organization struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Status    OrganizationStatus `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// CostCenter is a billing unit inside an organization.
type CostCenter struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organization_id"`
	Name           string    `json:"name"`
	CreatedAt      time.Time `json:"created_at"`
}
