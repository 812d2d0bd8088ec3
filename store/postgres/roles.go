package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/identity/modules/rbac"
	"github.com/hireloop/identity/pkg/pg"
)

// Roles is the pgx-backed role store, serving both the rbac module and the
// lazy default-role creation in registration.
type Roles struct {
	pool *pgxpool.Pool
}

func NewRoles(pool *pgxpool.Pool) *Roles {
	return &Roles{pool: pool}
}

// EnsureRole creates the named role if absent and returns its id. The
// unique name constraint makes concurrent first calls converge on one row.
func (s *Roles) EnsureRole(ctx context.Context, name, description string) (uuid.UUID, error) {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO roles (id, name, description)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO NOTHING`,
		uuid.New(), name, nullify(description))
	if err != nil {
		return uuid.Nil, fmt.Errorf("ensuring role %q: %w", name, err)
	}

	var id uuid.UUID
	if err := s.pool.QueryRow(ctx, `SELECT id FROM roles WHERE name = $1`, name).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("looking up role %q: %w", name, err)
	}
	return id, nil
}

func (s *Roles) Create(ctx context.Context, role *rbac.Role) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO roles (id, name, description) VALUES ($1, $2, $3)`,
		role.ID, role.Name, nullify(role.Description))
	if pg.IsDuplicateKeyError(err) {
		return rbac.ErrRoleAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting role: %w", err)
	}
	return nil
}

func (s *Roles) GetByID(ctx context.Context, id uuid.UUID) (*rbac.Role, error) {
	return s.get(ctx, `SELECT id, name, coalesce(description,'') FROM roles WHERE id = $1`, id)
}

func (s *Roles) GetByName(ctx context.Context, name string) (*rbac.Role, error) {
	return s.get(ctx, `SELECT id, name, coalesce(description,'') FROM roles WHERE name = $1`, name)
}

func (s *Roles) get(ctx context.Context, query string, arg any) (*rbac.Role, error) {
	var role rbac.Role
	err := s.pool.QueryRow(ctx, query, arg).Scan(&role.ID, &role.Name, &role.Description)
	if pg.IsNotFoundError(err) {
		return nil, rbac.ErrRoleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting role: %w", err)
	}
	return &role, nil
}

func (s *Roles) List(ctx context.Context) ([]rbac.Role, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, coalesce(description,'') FROM roles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing roles: %w", err)
	}
	defer rows.Close()

	var roles []rbac.Role
	for rows.Next() {
		var role rbac.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.Description); err != nil {
			return nil, fmt.Errorf("scanning role: %w", err)
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

func (s *Roles) Update(ctx context.Context, role *rbac.Role) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE roles SET name = $2, description = $3, updated_at = now() WHERE id = $1`,
		role.ID, role.Name, nullify(role.Description))
	if pg.IsDuplicateKeyError(err) {
		return rbac.ErrRoleAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}
	return nil
}

func (s *Roles) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
	if pg.IsForeignKeyViolationError(err) {
		return rbac.ErrRoleAssignedToUser
	}
	if err != nil {
		return fmt.Errorf("deleting role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return rbac.ErrRoleNotFound
	}
	return nil
}

func (s *Roles) CountUsers(ctx context.Context, roleID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE role_id = $1`, roleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting role users: %w", err)
	}
	return n, nil
}

func (s *Roles) CountPermissionLinks(ctx context.Context, roleID uuid.UUID) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FROM role_permissions WHERE role_id = $1`, roleID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting role permission links: %w", err)
	}
	return n, nil
}

func (s *Roles) RoleNameForUser(ctx context.Context, userID uuid.UUID) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx, `
		SELECT r.name
		FROM users u
		JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1`, userID).Scan(&name)
	if pg.IsNotFoundError(err) {
		return "", rbac.ErrRoleNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving user role: %w", err)
	}
	return name, nil
}
