// Package postgres implements the credential and RBAC stores over pgx.
// Uniqueness (emails, role and permission names, oauth identities) is
// enforced by database constraints; repositories translate constraint
// violations and missing rows into domain errors.
package postgres

import (
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/identity/modules/auth"
	"github.com/hireloop/identity/modules/rbac"
)

var (
	_ auth.UserStore         = (*Users)(nil)
	_ auth.OrganisationStore = (*Organisations)(nil)
	_ auth.RoleStore         = (*Roles)(nil)
	_ rbac.RoleStore         = (*Roles)(nil)
	_ rbac.PermissionStore   = (*Permissions)(nil)
)

// nullify maps empty strings to NULL so partial unique indexes ignore them.
func nullify(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

// Stores bundles every repository over one pool.
type Stores struct {
	Users         *Users
	Organisations *Organisations
	Roles         *Roles
	Permissions   *Permissions
}

func NewStores(pool *pgxpool.Pool) *Stores {
	return &Stores{
		Users:         NewUsers(pool),
		Organisations: NewOrganisations(pool),
		Roles:         NewRoles(pool),
		Permissions:   NewPermissions(pool),
	}
}
