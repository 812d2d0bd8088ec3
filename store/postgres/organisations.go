package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/identity/modules/auth"
	"github.com/hireloop/identity/pkg/pg"
)

// Organisations is the pgx-backed auth.OrganisationStore. The employee
// headcount band is persisted as an int4range.
type Organisations struct {
	pool *pgxpool.Pool
}

func NewOrganisations(pool *pgxpool.Pool) *Organisations {
	return &Organisations{pool: pool}
}

const organisationColumns = `id, organisation_name, ceo_first_name, ceo_last_name,
	email, established_year, country, lower(no_of_employee),
	CASE WHEN upper_inf(no_of_employee) THEN NULL ELSE upper(no_of_employee) - 1 END,
	coalesce(website_link,''), coalesce(linkedin,''), password_hash,
	coalesce(profile_picture,'')`

func (s *Organisations) Create(ctx context.Context, org *auth.Organisation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO organisations (
			id, organisation_name, ceo_first_name, ceo_last_name, email,
			established_year, country, no_of_employee, website_link,
			linkedin, password_hash, profile_picture
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8::int4range, $9, $10, $11, $12
		)`,
		org.ID, org.OrganisationName, org.CEOFirstName, org.CEOLastName,
		org.Email, org.EstablishedYear, org.Country, org.NoOfEmployee.String(),
		nullify(org.WebsiteLink), nullify(org.LinkedIn), org.PasswordHash,
		nullify(org.ProfilePicture),
	)
	if pg.IsDuplicateKeyError(err) {
		return auth.ErrOrganisationAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting organisation: %w", err)
	}
	return nil
}

func (s *Organisations) GetByID(ctx context.Context, id uuid.UUID) (*auth.Organisation, error) {
	return s.get(ctx, `SELECT `+organisationColumns+` FROM organisations WHERE id = $1`, id)
}

func (s *Organisations) GetByEmail(ctx context.Context, email string) (*auth.Organisation, error) {
	return s.get(ctx, `SELECT `+organisationColumns+` FROM organisations WHERE email = $1`, email)
}

func (s *Organisations) get(ctx context.Context, query string, args ...any) (*auth.Organisation, error) {
	var org auth.Organisation
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&org.ID, &org.OrganisationName, &org.CEOFirstName, &org.CEOLastName,
		&org.Email, &org.EstablishedYear, &org.Country,
		&org.NoOfEmployee.Min, &org.NoOfEmployee.Max,
		&org.WebsiteLink, &org.LinkedIn, &org.PasswordHash, &org.ProfilePicture,
	)
	if pg.IsNotFoundError(err) {
		return nil, auth.ErrOrganisationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting organisation: %w", err)
	}
	return &org, nil
}

func (s *Organisations) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var found bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM organisations WHERE email = $1)`, email).Scan(&found)
	if err != nil {
		return false, fmt.Errorf("checking organisation existence: %w", err)
	}
	return found, nil
}

func (s *Organisations) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE organisations SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("updating organisation password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrOrganisationNotFound
	}
	return nil
}
