package rbac

import "errors"

var (
	ErrRoleAlreadyExists       = errors.New("role with this name already exists")
	ErrPermissionAlreadyExists = errors.New("permission with this name already exists")
	ErrRoleNotFound            = errors.New("role not found")
	ErrPermissionNotFound      = errors.New("permission not found")

	ErrRoleAssignedToUser       = errors.New("role is assigned to one or more users")
	ErrRoleAssignedToPermission = errors.New("role is assigned to one or more permissions")
	ErrPermissionAssignedToRole = errors.New("permission is assigned to one or more roles")
)
