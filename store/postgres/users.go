package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hireloop/identity/modules/auth"
	"github.com/hireloop/identity/pkg/pg"
)

// Users is the pgx-backed auth.UserStore.
type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

const userColumns = `id, first_name, middle_name, last_name, coalesce(title,''),
	coalesce(organisation_name,''), coalesce(email,''), user_type, gender,
	date_of_birth, coalesce(country_code,''), coalesce(country_code_str,''),
	coalesce(cell_phone_number_1,''), coalesce(cell_phone_number_2,''),
	coalesce(landline,''), coalesce(password_hash,''), role_id,
	coalesce(profile_picture,''), coalesce(oauth_provider,''),
	coalesce(oauth_id,''), coalesce(oauth_email,''), oauth_details`

func (s *Users) Create(ctx context.Context, user *auth.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (
			id, first_name, middle_name, last_name, title, organisation_name,
			email, user_type, gender, date_of_birth, country_code,
			country_code_str, cell_phone_number_1, cell_phone_number_2,
			landline, password_hash, role_id, profile_picture,
			oauth_provider, oauth_id, oauth_email, oauth_details
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11,
			$12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22
		)`,
		user.ID, user.FirstName, user.MiddleName, user.LastName,
		nullify(user.Title), nullify(user.OrganisationName),
		nullify(user.Email), int(user.UserType), int(user.Gender),
		dateOrNil(user.DateOfBirth), nullify(user.CountryCode),
		nullify(user.CountryCodeStr), nullify(user.CellPhoneNumber1),
		nullify(user.CellPhoneNumber2), nullify(user.Landline),
		nullify(user.PasswordHash), user.RoleID, nullify(user.ProfilePicture),
		nullify(user.OAuthProvider), nullify(user.OAuthID),
		nullify(user.OAuthEmail), user.OAuthDetails,
	)
	if pg.IsDuplicateKeyError(err) {
		return auth.ErrUserAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}
	return nil
}

func (s *Users) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *Users) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.get(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (s *Users) GetByOAuth(ctx context.Context, oauthID, provider string) (*auth.User, error) {
	return s.get(ctx,
		`SELECT `+userColumns+` FROM users WHERE oauth_id = $1 AND oauth_provider = $2`,
		oauthID, provider)
}

func (s *Users) get(ctx context.Context, query string, args ...any) (*auth.User, error) {
	var (
		user        auth.User
		userType    int
		gender      int
		dateOfBirth *time.Time
	)
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&user.ID, &user.FirstName, &user.MiddleName, &user.LastName,
		&user.Title, &user.OrganisationName, &user.Email, &userType, &gender,
		&dateOfBirth, &user.CountryCode, &user.CountryCodeStr,
		&user.CellPhoneNumber1, &user.CellPhoneNumber2, &user.Landline,
		&user.PasswordHash, &user.RoleID, &user.ProfilePicture,
		&user.OAuthProvider, &user.OAuthID, &user.OAuthEmail, &user.OAuthDetails,
	)
	if pg.IsNotFoundError(err) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("selecting user: %w", err)
	}

	user.UserType = auth.UserType(userType)
	user.Gender = auth.Gender(gender)
	if dateOfBirth != nil {
		user.DateOfBirth = dateOfBirth.Format(time.DateOnly)
	}
	return &user, nil
}

func (s *Users) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`, email)
}

func (s *Users) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return s.exists(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE cell_phone_number_1 = $1)`, phone)
}

func (s *Users) exists(ctx context.Context, query string, arg any) (bool, error) {
	var found bool
	if err := s.pool.QueryRow(ctx, query, arg).Scan(&found); err != nil {
		return false, fmt.Errorf("checking user existence: %w", err)
	}
	return found, nil
}

func (s *Users) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = now() WHERE id = $1`,
		id, passwordHash)
	if err != nil {
		return fmt.Errorf("updating user password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func (s *Users) UpdateOAuthDetails(ctx context.Context, id uuid.UUID, details []byte) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET oauth_details = $2, updated_at = now() WHERE id = $1`,
		id, details)
	if err != nil {
		return fmt.Errorf("updating oauth details: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

func dateOrNil(iso string) *time.Time {
	if iso == "" {
		return nil
	}
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return nil
	}
	return &t
}
