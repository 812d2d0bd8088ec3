package auth

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/identity/pkg/email"
	"github.com/hireloop/identity/pkg/jwt"
	"github.com/hireloop/identity/pkg/totp"
)

const (
	testJWTSecret  = "test-signing-secret"
	testOTPSecret  = "JBSWY3DPEHPK3PXP"
	testBaseURL    = "http://api.test"
	testPassword   = "s3cret-pass"
	testUserEmail  = "jane@example.com"
	testOrgEmail   = "hr@acme.example.com"
	testRoleFixed  = "11111111-1111-1111-1111-111111111111"
	testOrgRole    = "Organisation"
	testPhoneFixed = "+15550001111"
)

type fakeUserStore struct {
	mu    sync.Mutex
	users []*User
}

func (s *fakeUserStore) Create(_ context.Context, user *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *user
	s.users = append(s.users, &clone)
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeUserStore) GetByEmail(_ context.Context, emailAddr string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email != "" && u.Email == emailAddr {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeUserStore) GetByOAuth(_ context.Context, oauthID, provider string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.OAuthID == oauthID && u.OAuthProvider == provider {
			clone := *u
			return &clone, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *fakeUserStore) ExistsByEmail(ctx context.Context, emailAddr string) (bool, error) {
	_, err := s.GetByEmail(ctx, emailAddr)
	return err == nil, nil
}

func (s *fakeUserStore) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.CellPhoneNumber1 != "" && u.CellPhoneNumber1 == phone {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.PasswordHash = passwordHash
			return nil
		}
	}
	return ErrUserNotFound
}

func (s *fakeUserStore) UpdateOAuthDetails(_ context.Context, id uuid.UUID, details []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.OAuthDetails = details
			return nil
		}
	}
	return ErrUserNotFound
}

type fakeOrgStore struct {
	mu   sync.Mutex
	orgs []*Organisation
}

func (s *fakeOrgStore) Create(_ context.Context, org *Organisation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clone := *org
	s.orgs = append(s.orgs, &clone)
	return nil
}

func (s *fakeOrgStore) GetByID(_ context.Context, id uuid.UUID) (*Organisation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if o.ID == id {
			clone := *o
			return &clone, nil
		}
	}
	return nil, ErrOrganisationNotFound
}

func (s *fakeOrgStore) GetByEmail(_ context.Context, emailAddr string) (*Organisation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if o.Email == emailAddr {
			clone := *o
			return &clone, nil
		}
	}
	return nil, ErrOrganisationNotFound
}

func (s *fakeOrgStore) ExistsByEmail(ctx context.Context, emailAddr string) (bool, error) {
	_, err := s.GetByEmail(ctx, emailAddr)
	return err == nil, nil
}

func (s *fakeOrgStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orgs {
		if o.ID == id {
			o.PasswordHash = passwordHash
			return nil
		}
	}
	return ErrOrganisationNotFound
}

type fakeRoleStore struct {
	mu      sync.Mutex
	ensured []string
}

func (s *fakeRoleStore) EnsureRole(_ context.Context, name, _ string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensured = append(s.ensured, name)
	return uuid.MustParse(testRoleFixed), nil
}

type captureSender struct {
	mu       sync.Mutex
	messages []email.Message
}

func (s *captureSender) Send(_ context.Context, msg email.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	return nil
}

func (s *captureSender) last(t *testing.T) email.Message {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NotEmpty(t, s.messages)
	return s.messages[len(s.messages)-1]
}

type serviceFixture struct {
	svc    *Service
	users  *fakeUserStore
	orgs   *fakeOrgStore
	roles  *fakeRoleStore
	mailer *captureSender
	tokens *jwt.Service
	otp    *totp.Generator
}

func newServiceFixture(t *testing.T, opts ...func(*serviceFixture)) *serviceFixture {
	t.Helper()

	tokens, err := jwt.New(jwt.Config{SecretKey: testJWTSecret, Algorithm: "HS256"})
	require.NoError(t, err)

	otp, err := totp.NewGenerator(totp.Config{SecretKey: testOTPSecret, ExpireSeconds: 600})
	require.NoError(t, err)

	f := &serviceFixture{
		users:  &fakeUserStore{},
		orgs:   &fakeOrgStore{},
		roles:  &fakeRoleStore{},
		mailer: &captureSender{},
		tokens: tokens,
		otp:    otp,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.svc = NewService(
		Config{FrontendURL: "http://app.test", OrganisationRole: testOrgRole, BcryptCost: 4},
		f.users,
		f.orgs,
		f.roles,
		tokens,
		otp,
		f.mailer,
		NewOAuthEngine(),
		nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return f
}

func (f *serviceFixture) registerUser(t *testing.T) *User {
	t.Helper()
	user, err := f.svc.RegisterIndividual(context.Background(), IndividualRegistrationRequest{
		FirstName:        "Jane",
		LastName:         "Doe",
		Email:            testUserEmail,
		Gender:           int(GenderFemale),
		CountryCode:      "+1",
		CellPhoneNumber1: testPhoneFixed,
		Password:         testPassword,
	})
	require.NoError(t, err)
	return user
}

func (f *serviceFixture) registerOrg(t *testing.T) *Organisation {
	t.Helper()
	org, err := f.svc.RegisterOrganisation(context.Background(), OrganisationRegistrationRequest{
		OrganisationName: "Acme",
		CEOFirstName:     "Ada",
		CEOLastName:      "Lovelace",
		Email:            testOrgEmail,
		EstablishedYear:  1999,
		Country:          "US",
		NoOfEmployee:     "[100,500]",
		Password:         testPassword,
	})
	require.NoError(t, err)
	return org
}
