package model

import (
	"fmt"
	"net/mail"
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

func (e *ValidationError) add(field, msg string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: msg})
}

func (e *ValidationError) orNil() error {
	if e.HasErrors() {
		return e
	}
	return nil
}

func validateName(ve *ValidationError, field, name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		ve.add(field, "is required")
	} else if len([]rune(name)) > 200 {
		ve.add(field, "must be 200 characters or fewer")
	}
}

// ValidateOrganization checks an Organization for constraint violations.
func ValidateOrganization(o *Organization) error {
	var ve ValidationError
	validateName(&ve, "name", o.Name)
	if !o.Status.IsValid() {
		ve.add("status", fmt.Sprintf("invalid value %q", o.Status))
	}
	return ve.orNil()
}

// ValidateCostCenter checks a CostCenter for constraint violations.
func ValidateCostCenter(c *CostCenter) error {
	var ve ValidationError
	validateName(&ve, "name", c.Name)
	if strings.TrimSpace(c.OrganizationID) == "" {
		ve.add("organization_id", "is required")
	}
	return ve.orNil()
}

// ValidateUser checks a User binding for constraint violations.
func ValidateUser(u *User) error {
	var ve ValidationError
	if strings.TrimSpace(u.Email) == "" {
		ve.add("email", "is required")
	} else if _, err := mail.ParseAddress(u.Email); err != nil {
		ve.add("email", fmt.Sprintf("invalid address %q", u.Email))
	}
	for _, f := range []struct{ name, value string }{
		{"organization_id", u.OrganizationID},
		{"cost_center_id", u.CostCenterID},
		{"role_id", u.RoleID},
	} {
		if strings.TrimSpace(f.value) == "" {
			ve.add(f.name, "is required")
		}
	}
	return ve.orNil()
}
