package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"github.com/hireloop/identity/pkg/jwt"
)

const accessTokenType = "access"

// principalRecord is the account a token resolves to, either an individual
// user or an organisation.
type principalRecord struct {
	user *User
	org  *Organisation
}

func (p principalRecord) id() uuid.UUID {
	if p.org != nil {
		return p.org.ID
	}
	return p.user.ID
}

// issuePair signs a fresh access and refresh token pair for the principal.
func (s *Service) issuePair(p principalRecord, baseURL string, otpValidated, socialLogin bool) (*TokenPair, error) {
	access, err := s.jwt.IssueAccess(s.accessClaims(p, baseURL, otpValidated, socialLogin, true))
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.IssueRefresh(map[string]any{"sub": p.id().String()})
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    s.jwt.Scheme(),
	}, nil
}

// accessClaims builds the access-token payload. The login variant carries
// social_login and a resolved profile picture; the refresh variant omits
// both, matching what refreshed tokens have always contained.
func (s *Service) accessClaims(p principalRecord, baseURL string, otpValidated, socialLogin, login bool) map[string]any {
	claims := map[string]any{"otp_validated": otpValidated}
	if login {
		claims["social_login"] = socialLogin
	}

	if p.org != nil {
		org := p.org
		entity := map[string]any{
			"org_id":            org.ID.String(),
			"organisation_name": org.OrganisationName,
			"ceo_first_name":    org.CEOFirstName,
			"ceo_last_name":     org.CEOLastName,
			"email":             org.Email,
			"no_of_employee":    org.NoOfEmployee.Bounds(),
			"website_link":      nullable(org.WebsiteLink),
			"linkedin":          nullable(org.LinkedIn),
		}
		if login {
			entity["user_type"] = int(UserTypeOrganisation)
			entity["profile_picture"] = resolveProfilePicture(org.ProfilePicture, baseURL)
		}
		claims["user_type"] = int(UserTypeOrganisation)
		claims["organisation"] = entity
		return claims
	}

	user := p.user
	entity := map[string]any{
		"user_id":             user.ID.String(),
		"title":               nullable(user.Title),
		"first_name":          user.FirstName,
		"last_name":           user.LastName,
		"organisation_name":   nullable(user.OrganisationName),
		"email":               nullable(user.Email),
		"gender":              int(user.Gender),
		"date_of_birth":       nullable(user.DateOfBirth),
		"cell_phone_number_1": nullable(user.CellPhoneNumber1),
	}
	if login {
		entity["user_type"] = int(user.UserType)
		entity["profile_picture"] = resolveProfilePicture(user.ProfilePicture, baseURL)
	}
	claims["user_type"] = int(user.UserType)
	claims["user"] = entity
	return claims
}

// RefreshTokens validates a refresh/access token pair and returns tokens
// according to what is still valid:
//
//   - refresh invalid: the caller must log in again
//   - refresh expired: the whole pair is rotated
//   - both valid: the pair is returned unchanged
//   - access expired: a new access token is issued against the same refresh
//   - access decodes but carries the wrong type: a full new pair is issued
func (s *Service) RefreshTokens(ctx context.Context, baseURL string, req TokenRefreshRequest) (*TokenPair, error) {
	refreshPayload, err := s.jwt.Decode(req.RefreshToken)
	if errors.Is(err, jwt.ErrExpiredToken) {
		payload, decodeErr := s.jwt.DecodeExpired(req.RefreshToken)
		if decodeErr != nil {
			return nil, ErrInvalidToken
		}
		if typ, _ := payload["type"].(string); typ != jwt.TypeRefresh {
			return nil, ErrInvalidToken
		}
		principal, principalErr := s.principalFromToken(ctx, payload, UserType(req.UserType))
		if principalErr != nil {
			return nil, principalErr
		}
		return s.issuePair(principal, baseURL, false, false)
	}
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !s.jwt.IsValid(refreshPayload, jwt.TypeRefresh) {
		return nil, ErrInvalidToken
	}

	principal, err := s.principalFromToken(ctx, refreshPayload, UserType(req.UserType))
	if err != nil {
		return nil, err
	}

	accessPayload, err := s.jwt.Decode(req.AccessToken)
	switch {
	case err == nil && s.jwt.IsValid(accessPayload, accessTokenType):
		return &TokenPair{
			AccessToken:  req.AccessToken,
			RefreshToken: req.RefreshToken,
			TokenType:    s.jwt.Scheme(),
		}, nil

	case errors.Is(err, jwt.ErrExpiredToken):
		access, issueErr := s.jwt.IssueAccess(s.accessClaims(principal, baseURL, false, false, false))
		if issueErr != nil {
			return nil, issueErr
		}
		return &TokenPair{
			AccessToken:  access,
			RefreshToken: req.RefreshToken,
			TokenType:    s.jwt.Scheme(),
		}, nil

	case err != nil:
		return nil, ErrInvalidToken
	}

	// The access token decoded but is not an access token. Reissue both.
	return s.issuePair(principal, baseURL, false, false)
}

// principalFromToken resolves the sub claim against the store selected by
// the declared user type.
func (s *Service) principalFromToken(ctx context.Context, payload map[string]any, userType UserType) (principalRecord, error) {
	sub, _ := payload["sub"].(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return principalRecord{}, ErrInvalidToken
	}

	switch userType {
	case UserTypeIndividual, UserTypeSuperAdmin:
		user, err := s.users.GetByID(ctx, id)
		if err != nil {
			return principalRecord{}, ErrUserNotFound
		}
		return principalRecord{user: user}, nil
	case UserTypeOrganisation:
		org, err := s.orgs.GetByID(ctx, id)
		if err != nil {
			return principalRecord{}, ErrOrganisationNotFound
		}
		return principalRecord{org: org}, nil
	default:
		return principalRecord{}, ErrInvalidUserType
	}
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// resolveProfilePicture keeps absolute picture URLs as they are and prefixes
// relative storage paths with the request base URL.
func resolveProfilePicture(picture, baseURL string) any {
	if picture == "" {
		return nil
	}
	if u, err := url.Parse(picture); err == nil && u.Scheme != "" && u.Host != "" {
		return picture
	}
	if baseURL == "" {
		return picture
	}
	return strings.TrimSuffix(baseURL, "/") + "/" + strings.TrimPrefix(picture, "/")
}
