package auth

import (
	"context"

	"github.com/google/uuid"
)

// UserStore persists individual accounts.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByOAuth(ctx context.Context, oauthID, provider string) (*User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateOAuthDetails(ctx context.Context, id uuid.UUID, details []byte) error
}

// OrganisationStore persists organisation accounts.
type OrganisationStore interface {
	Create(ctx context.Context, org *Organisation) error
	GetByID(ctx context.Context, id uuid.UUID) (*Organisation, error)
	GetByEmail(ctx context.Context, email string) (*Organisation, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
}

// RoleStore is the narrow slice of role storage registration needs: the
// default individual role is created on first use.
type RoleStore interface {
	EnsureRole(ctx context.Context, name, description string) (uuid.UUID, error)
}
