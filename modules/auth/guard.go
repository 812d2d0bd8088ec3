package auth

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/hireloop/identity/pkg/apiresponse"
	"github.com/hireloop/identity/pkg/cache"
)

// PermissionSource resolves what a principal is allowed to do. The rbac
// module provides the production implementation.
type PermissionSource interface {
	RoleForUser(ctx context.Context, userID uuid.UUID) (string, error)
	PermissionsForRole(ctx context.Context, roleName string) ([]string, error)
}

// Guard enforces permission checks on routes. Role permission sets are
// cached for an hour; the rbac module invalidates entries when assignments
// change.
type Guard struct {
	source           PermissionSource
	organisationRole string
	permissions      *cache.TTLCache[string, []string]
	log              *slog.Logger
}

func NewGuard(source PermissionSource, organisationRole string, log *slog.Logger) *Guard {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Guard{
		source:           source,
		organisationRole: organisationRole,
		permissions:      cache.NewTTLCache[string, []string](1000, time.Hour),
		log:              log,
	}
}

// Invalidate drops a role's cached permission set.
func (g *Guard) Invalidate(roleName string) {
	g.permissions.Remove(roleName)
}

// RequirePermission gates a route on the named permission. Organisations
// carry a fixed configured role; individuals resolve their role through the
// permission source.
func (g *Guard) RequirePermission(permission string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok {
				apiresponse.Error(w, http.StatusUnauthorized, "Invalid or expired token.", nil)
				return
			}

			allowed, err := g.hasPermission(r.Context(), principal, permission)
			if err != nil {
				g.log.WarnContext(r.Context(), "permission lookup failed",
					slog.String("permission", permission), slog.Any("error", err))
			}
			if !allowed {
				apiresponse.Error(w, http.StatusForbidden, "Insufficient permissions.", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) hasPermission(ctx context.Context, principal Principal, permission string) (bool, error) {
	roleName := g.organisationRole
	if principal.EntityType != UserTypeOrganisation {
		var err error
		roleName, err = g.source.RoleForUser(ctx, principal.EntityID)
		if err != nil {
			return false, err
		}
	}
	if roleName == "" {
		return false, nil
	}

	perms, ok := g.permissions.Get(roleName)
	if !ok {
		var err error
		perms, err = g.source.PermissionsForRole(ctx, roleName)
		if err != nil {
			return false, err
		}
		g.permissions.Put(roleName, perms)
	}

	return slices.Contains(perms, permission), nil
}
