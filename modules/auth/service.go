package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hireloop/identity/pkg/email"
	"github.com/hireloop/identity/pkg/jwt"
	"github.com/hireloop/identity/pkg/ratelimiter"
	"github.com/hireloop/identity/pkg/sanitizer"
	"github.com/hireloop/identity/pkg/totp"
)

// Config holds auth module settings beyond the token and OTP secrets.
type Config struct {
	FrontendURL      string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	OrganisationRole string `env:"ORGANISATION_ROLE" envDefault:"Organisation"`
	BcryptCost       int    `env:"BCRYPT_COST" envDefault:"10"`
}

// Service implements every authentication operation. All lookups are
// case-insensitive on email: addresses are lowercased before they reach
// storage.
type Service struct {
	cfg    Config
	users  UserStore
	orgs   OrganisationStore
	roles  RoleStore
	hasher *PasswordHasher
	jwt    *jwt.Service
	otp    *totp.Generator
	mailer email.Sender
	oauth  *OAuthEngine
	// limiter throttles login and OTP requests per email; nil disables
	// throttling.
	limiter *ratelimiter.Bucket
	log     *slog.Logger
}

func NewService(
	cfg Config,
	users UserStore,
	orgs OrganisationStore,
	roles RoleStore,
	tokens *jwt.Service,
	otp *totp.Generator,
	mailer email.Sender,
	oauth *OAuthEngine,
	limiter *ratelimiter.Bucket,
	log *slog.Logger,
) *Service {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{
		cfg:     cfg,
		users:   users,
		orgs:    orgs,
		roles:   roles,
		hasher:  NewPasswordHasher(cfg.BcryptCost),
		jwt:     tokens,
		otp:     otp,
		mailer:  mailer,
		oauth:   oauth,
		limiter: limiter,
		log:     log,
	}
}

// RegisterIndividual creates an individual account. Email and phone number
// must be unused by any user, and the email unused by any organisation. The
// shared "Individual-User" role is created on first registration.
func (s *Service) RegisterIndividual(ctx context.Context, req IndividualRegistrationRequest) (*User, error) {
	emailAddr := sanitizer.NormalizeEmail(req.Email)

	if taken, err := s.users.ExistsByEmail(ctx, emailAddr); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailOrPhoneTaken
	}
	if taken, err := s.users.ExistsByPhone(ctx, req.CellPhoneNumber1); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailOrPhoneTaken
	}
	if taken, err := s.orgs.ExistsByEmail(ctx, emailAddr); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrOrganisationEmailTaken
	}

	roleID, err := s.roles.EnsureRole(ctx, IndividualRoleName, "Individual")
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &User{
		ID:               uuid.New(),
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		OrganisationName: req.OrganisationName,
		Email:            emailAddr,
		UserType:         UserTypeIndividual,
		Gender:           Gender(req.Gender),
		DateOfBirth:      req.DateOfBirth,
		CountryCode:      req.CountryCode,
		CountryCodeStr:   req.CountryCodeStr,
		CellPhoneNumber1: req.CellPhoneNumber1,
		PasswordHash:     hash,
		RoleID:           &roleID,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "individual registered", slog.String("user_id", user.ID.String()))
	return user, nil
}

// RegisterOrganisation creates a company account. The email must be unused
// by organisations and users alike.
func (s *Service) RegisterOrganisation(ctx context.Context, req OrganisationRegistrationRequest) (*Organisation, error) {
	emailAddr := sanitizer.NormalizeEmail(req.Email)

	if taken, err := s.orgs.ExistsByEmail(ctx, emailAddr); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrOrganisationAlreadyExists
	}
	if taken, err := s.users.ExistsByEmail(ctx, emailAddr); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUserEmailTaken
	}

	headcount, err := ParseEmployeeRange(req.NoOfEmployee)
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	org := &Organisation{
		ID:               uuid.New(),
		OrganisationName: req.OrganisationName,
		CEOFirstName:     req.CEOFirstName,
		CEOLastName:      req.CEOLastName,
		Email:            emailAddr,
		EstablishedYear:  req.EstablishedYear,
		Country:          req.Country,
		NoOfEmployee:     headcount,
		WebsiteLink:      req.WebsiteLink,
		LinkedIn:         req.LinkedIn,
		PasswordHash:     hash,
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "organisation registered", slog.String("org_id", org.ID.String()))
	return org, nil
}

// Login authenticates an email and password against users first, then
// organisations, and issues a token pair.
func (s *Service) Login(ctx context.Context, baseURL string, req LoginRequest) (*TokenPair, error) {
	emailAddr := sanitizer.NormalizeEmail(req.Email)

	if err := s.allow(ctx, "login:"+emailAddr); err != nil {
		return nil, err
	}

	principal, err := s.findPrincipalByEmail(ctx, emailAddr)
	if err != nil {
		return nil, ErrAuthenticationFailed
	}

	if err := s.hasher.Verify(principal.passwordHash(), req.Password); err != nil {
		return nil, err
	}

	if s.limiter != nil {
		_ = s.limiter.Reset(ctx, "login:"+emailAddr)
	}

	return s.issuePair(principal, baseURL, false, false)
}

// ChangePassword verifies the caller's current password before storing the
// new one.
func (s *Service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	principal, ok := PrincipalFromContext(ctx)
	if !ok || principal.Email == "" {
		return ErrAuthenticationFailed
	}

	record, err := s.findPrincipalByEmail(ctx, principal.Email)
	if err != nil {
		return ErrUserNotFound
	}

	if err := s.hasher.Verify(record.passwordHash(), req.CurrentPassword); err != nil {
		return err
	}

	return s.setPassword(ctx, record, req.NewPassword)
}

// Profile returns the stored account of the authenticated caller, shaped
// for the profile endpoint.
func (s *Service) Profile(ctx context.Context, baseURL string) (map[string]any, error) {
	principal, ok := PrincipalFromContext(ctx)
	if !ok || principal.Email == "" || !principal.EntityType.Valid() {
		return nil, ErrAuthenticationFailed
	}

	if principal.EntityType == UserTypeOrganisation {
		org, err := s.orgs.GetByEmail(ctx, principal.Email)
		if err != nil {
			return nil, ErrOrganisationNotFound
		}
		return map[string]any{
			"org_id":            org.ID.String(),
			"organisation_name": org.OrganisationName,
			"ceo_first_name":    org.CEOFirstName,
			"ceo_last_name":     org.CEOLastName,
			"email":             org.Email,
			"established_year":  org.EstablishedYear,
			"country":           org.Country,
			"no_of_employee":    org.NoOfEmployee.Bounds(),
			"website_link":      nullable(org.WebsiteLink),
			"linkedin":          nullable(org.LinkedIn),
			"profile_picture":   resolveProfilePicture(org.ProfilePicture, baseURL),
		}, nil
	}

	user, err := s.users.GetByEmail(ctx, principal.Email)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return map[string]any{
		"user_id":             user.ID.String(),
		"title":               nullable(user.Title),
		"first_name":          user.FirstName,
		"last_name":           user.LastName,
		"organisation_name":   nullable(user.OrganisationName),
		"email":               nullable(user.Email),
		"gender":              int(user.Gender),
		"date_of_birth":       nullable(user.DateOfBirth),
		"country_code":        nullable(user.CountryCode),
		"cell_phone_number_1": nullable(user.CellPhoneNumber1),
		"profile_picture":     resolveProfilePicture(user.ProfilePicture, baseURL),
	}, nil
}

// RequestPasswordReset emails a one-shot reset link to a known account.
func (s *Service) RequestPasswordReset(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if _, err := s.findPrincipalByEmail(ctx, emailAddr); err != nil {
		return ErrRecordNotFound
	}

	token, err := s.jwt.IssueSinglePurpose(map[string]any{"sub": emailAddr})
	if err != nil {
		return err
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.cfg.FrontendURL, token)
	return s.mailer.Send(ctx, email.Message{
		To:       emailAddr,
		Subject:  "Password Reset Request",
		BodyHTML: fmt.Sprintf("<p>Click on the link to reset your password: %s</p>", link),
		Tag:      "password-reset",
	})
}

// ResetPassword completes the link-based flow: the token's subject names
// the account whose password is replaced.
func (s *Service) ResetPassword(ctx context.Context, token, newPassword string) error {
	payload, err := s.jwt.Decode(token)
	if err != nil {
		return ErrInvalidToken
	}
	emailAddr, _ := payload["sub"].(string)
	if emailAddr == "" {
		return ErrInvalidToken
	}

	record, err := s.findPrincipalByEmail(ctx, emailAddr)
	if err != nil {
		return ErrRecordNotFound
	}
	return s.setPassword(ctx, record, newPassword)
}

// SendResetOTP emails a time-limited code to a known account.
func (s *Service) SendResetOTP(ctx context.Context, emailAddr string) error {
	emailAddr = sanitizer.NormalizeEmail(emailAddr)

	if err := s.allow(ctx, "otp:"+emailAddr); err != nil {
		return err
	}

	if _, err := s.findPrincipalByEmail(ctx, emailAddr); err != nil {
		return ErrRecordNotFound
	}

	code := s.otp.Generate()
	return s.mailer.Send(ctx, email.Message{
		To:       emailAddr,
		Subject:  "OTP for Password Reset",
		BodyHTML: fmt.Sprintf("<p>Reset password OTP: %s</p>", code),
		Tag:      "password-reset-otp",
	})
}

// VerifyOTPReset checks the code against the current window and replaces
// the account password.
func (s *Service) VerifyOTPReset(ctx context.Context, req OTPResetPasswordRequest) error {
	ok, err := s.otp.Verify(req.OTP)
	if err != nil || !ok {
		return ErrInvalidOTP
	}

	emailAddr := sanitizer.NormalizeEmail(req.Email)
	record, err := s.findPrincipalByEmail(ctx, emailAddr)
	if err != nil {
		return ErrRecordNotFound
	}
	return s.setPassword(ctx, record, req.NewPassword)
}

func (p principalRecord) passwordHash() string {
	if p.org != nil {
		return p.org.PasswordHash
	}
	return p.user.PasswordHash
}

// findPrincipalByEmail tries users first, then organisations.
func (s *Service) findPrincipalByEmail(ctx context.Context, emailAddr string) (principalRecord, error) {
	user, err := s.users.GetByEmail(ctx, emailAddr)
	if err == nil {
		return principalRecord{user: user}, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return principalRecord{}, err
	}

	org, err := s.orgs.GetByEmail(ctx, emailAddr)
	if err != nil {
		return principalRecord{}, err
	}
	return principalRecord{org: org}, nil
}

func (s *Service) setPassword(ctx context.Context, record principalRecord, newPassword string) error {
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	if record.org != nil {
		return s.orgs.UpdatePassword(ctx, record.org.ID, hash)
	}
	return s.users.UpdatePassword(ctx, record.user.ID, hash)
}

// allow consumes one rate-limit token for key; a drained bucket maps to
// ErrTooManyRequests. Limiter failures do not block authentication.
func (s *Service) allow(ctx context.Context, key string) error {
	if s.limiter == nil {
		return nil
	}
	res, err := s.limiter.Allow(ctx, key)
	if err != nil {
		s.log.WarnContext(ctx, "rate limiter unavailable", slog.Any("error", err))
		return nil
	}
	if !res.Allowed() {
		return ErrTooManyRequests
	}
	return nil
}

// marshalOAuthDetails serializes the raw provider response for storage.
func marshalOAuthDetails(details map[string]any) []byte {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	return raw
}
