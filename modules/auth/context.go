package auth

import (
	"context"

	"github.com/google/uuid"
)

type contextKey struct{}

// Principal is the authenticated caller extracted from an access token.
type Principal struct {
	EntityID   uuid.UUID
	EntityType UserType
	Email      string
	Claims     map[string]any // the full decoded token payload
}

// WithPrincipal stores the principal on the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// PrincipalFromContext returns the authenticated principal, if any.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}
