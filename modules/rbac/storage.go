package rbac

import (
	"context"

	"github.com/google/uuid"
)

// RoleStore persists roles and answers the referential questions the
// deletion guards ask.
type RoleStore interface {
	Create(ctx context.Context, role *Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*Role, error)
	GetByName(ctx context.Context, name string) (*Role, error)
	List(ctx context.Context) ([]Role, error)
	Update(ctx context.Context, role *Role) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountUsers(ctx context.Context, roleID uuid.UUID) (int, error)
	CountPermissionLinks(ctx context.Context, roleID uuid.UUID) (int, error)
	RoleNameForUser(ctx context.Context, userID uuid.UUID) (string, error)
}

// PermissionStore persists permissions and their role links.
type PermissionStore interface {
	Create(ctx context.Context, permission *Permission) error
	GetByID(ctx context.Context, id uuid.UUID) (*Permission, error)
	GetByName(ctx context.Context, name string) (*Permission, error)
	List(ctx context.Context) ([]Permission, error)
	Update(ctx context.Context, permission *Permission) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountRoleLinks(ctx context.Context, permissionID uuid.UUID) (int, error)
	AssignRoles(ctx context.Context, permissionID uuid.UUID, roleIDs []uuid.UUID) error
	UnassignRoles(ctx context.Context, permissionID uuid.UUID, roleIDs []uuid.UUID) error
	NamesForRole(ctx context.Context, roleName string) ([]string, error)
}
