// Package rbac manages roles and permissions: CRUD with referential
// deletion guards, bulk role assignment on permissions, and permission
// resolution for the authorization guard.
package rbac

import (
	"github.com/google/uuid"

	"github.com/hireloop/identity/pkg/validator"
)

// Role groups permissions under a unique name.
type Role struct {
	ID          uuid.UUID `json:"role_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
}

// Permission is a named capability, optionally scoped.
type Permission struct {
	ID          uuid.UUID `json:"permission_id"`
	Name        string    `json:"name"`
	Scope       string    `json:"scope,omitempty"`
	Description string    `json:"description,omitempty"`
}

// RoleRequest is the payload for role create and update.
type RoleRequest struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

func (r RoleRequest) Validate() error {
	return validator.Apply(
		validator.Required("name", r.Name),
		validator.MaxLength("name", r.Name, 100),
		validator.MaxLength("description", r.Description, 255),
	)
}

// PermissionRequest is the payload for permission create and update.
type PermissionRequest struct {
	Name        string `json:"name"`
	Scope       string `json:"scope,omitempty"`
	Description string `json:"description,omitempty"`
}

func (r PermissionRequest) Validate() error {
	return validator.Apply(
		validator.Required("name", r.Name),
		validator.MaxLength("name", r.Name, 100),
		validator.MaxLength("scope", r.Scope, 100),
		validator.MaxLength("description", r.Description, 255),
	)
}

// AssignRolesRequest names the roles linked to or unlinked from a permission.
type AssignRolesRequest struct {
	RoleIDs []uuid.UUID `json:"role_ids"`
}

func (r AssignRolesRequest) Validate() error {
	return validator.Apply(validator.Rule{
		Check: func() bool { return len(r.RoleIDs) > 0 },
		Error: validator.ValidationError{
			Field:   "role_ids",
			Message: "at least one role id is required",
			Type:    "value_error.missing",
		},
	})
}
