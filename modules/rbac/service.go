package rbac

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"
)

// CacheInvalidator drops cached role→permission entries after assignment
// changes. The auth guard implements it.
type CacheInvalidator interface {
	Invalidate(roleName string)
}

// Service implements role and permission management. Deletion is guarded:
// a role stays while any user or role-permission link references it, and a
// permission stays while any role links to it.
type Service struct {
	roles       RoleStore
	permissions PermissionStore
	cache       CacheInvalidator // nil when no guard cache is wired
	log         *slog.Logger
}

func NewService(roles RoleStore, permissions PermissionStore, cache CacheInvalidator, log *slog.Logger) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{roles: roles, permissions: permissions, cache: cache, log: log}
}

// SetCacheInvalidator wires the guard cache in after construction. The
// guard needs this service as its permission source, so the two cannot be
// built in one pass.
func (s *Service) SetCacheInvalidator(cache CacheInvalidator) {
	s.cache = cache
}

func (s *Service) invalidateRole(name string) {
	if s.cache != nil && name != "" {
		s.cache.Invalidate(name)
	}
}

// CreateRole adds a role with a unique name.
func (s *Service) CreateRole(ctx context.Context, req RoleRequest) (*Role, error) {
	if _, err := s.roles.GetByName(ctx, req.Name); err == nil {
		return nil, ErrRoleAlreadyExists
	} else if !errors.Is(err, ErrRoleNotFound) {
		return nil, err
	}

	role := &Role{ID: uuid.New(), Name: req.Name, Description: req.Description}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "role created", slog.String("role", role.Name))
	return role, nil
}

func (s *Service) GetRole(ctx context.Context, id uuid.UUID) (*Role, error) {
	return s.roles.GetByID(ctx, id)
}

func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	return s.roles.List(ctx)
}

// UpdateRole renames or re-describes a role. Cached permissions under both
// the old and new names are dropped.
func (s *Service) UpdateRole(ctx context.Context, id uuid.UUID, req RoleRequest) (*Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != role.Name {
		if _, err := s.roles.GetByName(ctx, req.Name); err == nil {
			return nil, ErrRoleAlreadyExists
		} else if !errors.Is(err, ErrRoleNotFound) {
			return nil, err
		}
	}

	oldName := role.Name
	role.Name = req.Name
	role.Description = req.Description
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}

	s.invalidateRole(oldName)
	s.invalidateRole(role.Name)
	return role, nil
}

// DeleteRole removes a role unless anything still references it.
func (s *Service) DeleteRole(ctx context.Context, id uuid.UUID) error {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if n, err := s.roles.CountUsers(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return ErrRoleAssignedToUser
	}
	if n, err := s.roles.CountPermissionLinks(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return ErrRoleAssignedToPermission
	}

	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateRole(role.Name)
	return nil
}

// CreatePermission adds a permission with a unique name.
func (s *Service) CreatePermission(ctx context.Context, req PermissionRequest) (*Permission, error) {
	if _, err := s.permissions.GetByName(ctx, req.Name); err == nil {
		return nil, ErrPermissionAlreadyExists
	} else if !errors.Is(err, ErrPermissionNotFound) {
		return nil, err
	}

	permission := &Permission{
		ID:          uuid.New(),
		Name:        req.Name,
		Scope:       req.Scope,
		Description: req.Description,
	}
	if err := s.permissions.Create(ctx, permission); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "permission created", slog.String("permission", permission.Name))
	return permission, nil
}

func (s *Service) GetPermission(ctx context.Context, id uuid.UUID) (*Permission, error) {
	return s.permissions.GetByID(ctx, id)
}

func (s *Service) ListPermissions(ctx context.Context) ([]Permission, error) {
	return s.permissions.List(ctx)
}

// UpdatePermission changes a permission in place. Every role is invalidated
// conservatively since the permission may appear in many cached sets.
func (s *Service) UpdatePermission(ctx context.Context, id uuid.UUID, req PermissionRequest) (*Permission, error) {
	permission, err := s.permissions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != permission.Name {
		if _, err := s.permissions.GetByName(ctx, req.Name); err == nil {
			return nil, ErrPermissionAlreadyExists
		} else if !errors.Is(err, ErrPermissionNotFound) {
			return nil, err
		}
	}

	permission.Name = req.Name
	permission.Scope = req.Scope
	permission.Description = req.Description
	if err := s.permissions.Update(ctx, permission); err != nil {
		return nil, err
	}

	s.invalidateAllRoles(ctx)
	return permission, nil
}

// DeletePermission removes a permission unless a role still links to it.
func (s *Service) DeletePermission(ctx context.Context, id uuid.UUID) error {
	if _, err := s.permissions.GetByID(ctx, id); err != nil {
		return err
	}

	if n, err := s.permissions.CountRoleLinks(ctx, id); err != nil {
		return err
	} else if n > 0 {
		return ErrPermissionAssignedToRole
	}

	return s.permissions.Delete(ctx, id)
}

// AssignRoles links roles to a permission and drops their cached sets.
func (s *Service) AssignRoles(ctx context.Context, permissionID uuid.UUID, roleIDs []uuid.UUID) error {
	if _, err := s.permissions.GetByID(ctx, permissionID); err != nil {
		return err
	}
	if err := s.permissions.AssignRoles(ctx, permissionID, roleIDs); err != nil {
		return err
	}
	s.invalidateRoleIDs(ctx, roleIDs)
	return nil
}

// UnassignRoles removes role links from a permission and drops their
// cached sets.
func (s *Service) UnassignRoles(ctx context.Context, permissionID uuid.UUID, roleIDs []uuid.UUID) error {
	if _, err := s.permissions.GetByID(ctx, permissionID); err != nil {
		return err
	}
	if err := s.permissions.UnassignRoles(ctx, permissionID, roleIDs); err != nil {
		return err
	}
	s.invalidateRoleIDs(ctx, roleIDs)
	return nil
}

// RoleForUser implements the auth guard's permission source.
func (s *Service) RoleForUser(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.roles.RoleNameForUser(ctx, userID)
}

// PermissionsForRole implements the auth guard's permission source.
func (s *Service) PermissionsForRole(ctx context.Context, roleName string) ([]string, error) {
	return s.permissions.NamesForRole(ctx, roleName)
}

func (s *Service) invalidateRoleIDs(ctx context.Context, roleIDs []uuid.UUID) {
	if s.cache == nil {
		return
	}
	for _, id := range roleIDs {
		role, err := s.roles.GetByID(ctx, id)
		if err != nil {
			continue
		}
		s.invalidateRole(role.Name)
	}
}

// invalidateAllRoles drops every cached role set. A renamed permission may
// appear in any number of them.
func (s *Service) invalidateAllRoles(ctx context.Context) {
	if s.cache == nil {
		return
	}
	roles, err := s.roles.List(ctx)
	if err != nil {
		s.log.WarnContext(ctx, "cache invalidation skipped", slog.Any("error", err))
		return
	}
	for _, role := range roles {
		s.invalidateRole(role.Name)
	}
}
