package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/identity/modules/rbac"
	"github.com/hireloop/identity/pkg/pg"
)

// Permissions is the pgx-backed permission store, including the
// role_permissions join table.
type Permissions struct {
	pool *pgxpool.Pool
}

func NewPermissions(pool *pgxpool.Pool) *Permissions {
	return &Permissions{pool: pool}
}

const permissionColumns = `id, name, coalesce(scope,''), coalesce(description,'')`

func (s *Permissions) Create(ctx context.Context, permission *rbac.Permission) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO permissions (id, name, scope, description) VALUES ($1, $2, $3, $4)`,
		permission.ID, permission.Name, nullify(permission.Scope), nullify(permission.Description))
	if pg.IsDuplicateKeyError(err) {
		return rbac.ErrPermissionAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting permission: %w", err)
	}
	return nil
}

func (s *Permissions) GetByID(ctx context.Context, id uuid.UUID) (*rbac.Permission, error) {
	return s.get(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE id = $1`, id)
}

func (s *Permissions) GetByName(ctx context.Context, name string) (*rbac.Permission, error) {
	return s.get(ctx, `SELECT `+permissionColumns+` FROM permissions WHERE name = $1`, name)
}

func (s *Permissions) get(ctx context.Context, query string, arg any) (*rbac.Permission, error) {
	var permission rbac.Permission
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&permission.ID, &permission.Name, &permission.Scope, &permission.Description)
	if pg.IsNotFoundError(err) {
		return nil, rbac.ErrPermissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting permission: %w", err)
	}
	return &permission, nil
}

func (s *Permissions) List(ctx context.Context) ([]rbac.Permission, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+permissionColumns+` FROM permissions ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing permissions: %w", err)
	}
	defer rows.Close()

	var permissions []rbac.Permission
	for rows.Next() {
		var permission rbac.Permission
		if err := rows.Scan(&permission.ID, &permission.Name,
			&permission.Scope, &permission.Description); err != nil {
			return nil, fmt.Errorf("scanning permission: %w", err)
		}
		permissions = append(permissions, permission)
	}
	return permissions, rows.Err()
}

func (s *Permissions) Update(ctx context.Context, permission *rbac.Permission) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE permissions
		SET name = $2, scope = $3, description = $4, updated_at = now()
		WHERE id = $1`,
		permission.ID, permission.Name, nullify(permission.Scope), nullify(permission.Description))
	if pg.IsDuplicateKeyError(err) {
		return rbac.ErrPermissionAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("updating permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rbac.ErrPermissionNotFound
	}
	return nil
}

func (s *Permissions) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM permissions WHERE id = $1`, id)
	if pg.IsForeignKeyViolationError(err) {
		return rbac.ErrPermissionAssignedToRole
	}
	if err != nil {
		return fmt.Errorf("deleting permission: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rbac.ErrPermissionNotFound
	}
	return nil
}

func (s *Permissions) CountRoleLinks(ctx context.Context, permissionID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM role_permissions WHERE permission_id = $1`, permissionID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting permission role links: %w", err)
	}
	return n, nil
}

// AssignRoles links each role to the permission, skipping links that
// already exist.
func (s *Permissions) AssignRoles(ctx context.Context, permissionID uuid.UUID, roleIDs []uuid.UUID) error {
	batch := &pgx.Batch{}
	for _, roleID := range roleIDs {
		batch.Queue(`
			INSERT INTO role_permissions (id, role_id, permission_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (role_id, permission_id) DO NOTHING`,
			uuid.New(), roleID, permissionID)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range roleIDs {
		if _, err := results.Exec(); err != nil {
			if pg.IsForeignKeyViolationError(err) {
				return rbac.ErrRoleNotFound
			}
			return fmt.Errorf("linking role to permission: %w", err)
		}
	}
	return nil
}

func (s *Permissions) UnassignRoles(ctx context.Context, permissionID uuid.UUID, roleIDs []uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM role_permissions WHERE permission_id = $1 AND role_id = ANY($2)`,
		permissionID, roleIDs)
	if err != nil {
		return fmt.Errorf("unlinking roles from permission: %w", err)
	}
	return nil
}

// NamesForRole resolves a role's permission names for the guard cache.
func (s *Permissions) NamesForRole(ctx context.Context, roleName string) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT p.name
		FROM permissions p
		JOIN role_permissions rp ON rp.permission_id = p.id
		JOIN roles r ON r.id = rp.role_id
		WHERE r.name = $1
		ORDER BY p.name`, roleName)
	if err != nil {
		return nil, fmt.Errorf("resolving role permissions: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning permission name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
