package jwt

import (
	"errors"
	"maps"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
)

// TypeRefresh is the payload discriminator carried by refresh tokens.
const TypeRefresh = "refresh"

// Service issues and verifies signed, time-limited tokens. The signing
// secret is process-wide immutable configuration; only HMAC algorithms are
// accepted so a key-confusion downgrade is impossible.
type Service struct {
	secret     []byte
	method     jwtlib.SigningMethod
	scheme     string
	accessTTL  time.Duration
	refreshTTL time.Duration

	now func() time.Time // swapped in tests
}

// New creates a token service from config. It fails on an empty secret or a
// non-HMAC algorithm name.
func New(cfg Config) (*Service, error) {
	if cfg.SecretKey == "" {
		return nil, ErrMissingSecret
	}

	method := jwtlib.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwtlib.SigningMethodHMAC); !ok {
		return nil, ErrUnsupportedAlg
	}

	accessTTL := time.Duration(cfg.AccessTTLMinutes) * time.Minute
	if accessTTL <= 0 {
		accessTTL = 30 * time.Minute
	}
	refreshTTL := time.Duration(cfg.RefreshTTLDays) * 24 * time.Hour
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}

	scheme := cfg.Scheme
	if scheme == "" {
		scheme = "Bearer"
	}

	return &Service{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		scheme:     scheme,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Scheme returns the authorization header scheme ("Bearer" unless overridden).
func (s *Service) Scheme() string { return s.scheme }

// IssueAccess signs the payload with the access-token lifetime. The iat and
// exp claims are stamped here; callers never set them.
func (s *Service) IssueAccess(payload map[string]any) (string, error) {
	return s.issue(payload, s.accessTTL)
}

// IssueRefresh signs the payload with the refresh-token lifetime and forces
// the refresh type discriminator into the payload.
func (s *Service) IssueRefresh(payload map[string]any) (string, error) {
	if payload == nil {
		return "", ErrMissingPayload
	}
	withType := make(map[string]any, len(payload)+1)
	maps.Copy(withType, payload)
	withType["type"] = TypeRefresh
	return s.issue(withType, s.refreshTTL)
}

// IssueSinglePurpose signs a short-lived token for one-shot flows such as
// password-reset links. Lifetime matches the access token.
func (s *Service) IssueSinglePurpose(payload map[string]any) (string, error) {
	return s.issue(payload, s.accessTTL)
}

func (s *Service) issue(payload map[string]any, ttl time.Duration) (string, error) {
	if payload == nil {
		return "", ErrMissingPayload
	}

	now := s.now()
	claims := make(jwtlib.MapClaims, len(payload)+2)
	maps.Copy(claims, payload)
	claims["iat"] = now.Unix()
	claims["exp"] = now.Add(ttl).Unix()

	signed, err := jwtlib.NewWithClaims(s.method, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	return signed, nil
}

// Decode verifies the signature and temporal claims, returning the payload.
// It distinguishes expiry (ErrExpiredToken) from every other failure
// (ErrInvalidToken) because the refresh protocol treats them differently.
func (s *Service) Decode(token string) (map[string]any, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{s.method.Alg()}))
	if err != nil {
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// DecodeExpired verifies the signature but skips temporal validation. The
// refresh flow uses it to recover the subject of an expired refresh token
// before rotating the pair.
func (s *Service) DecodeExpired(token string) (map[string]any, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrInvalidToken
	}

	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(token, claims, func(t *jwtlib.Token) (any, error) {
		return s.secret, nil
	}, jwtlib.WithValidMethods([]string{s.method.Alg()}), jwtlib.WithoutClaimsValidation())
	if err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// IsValid reports whether a decoded payload is semantically valid for the
// expected token type. It never returns an error: a payload with a
// mismatched type discriminator, a missing or unparseable exp claim, or an
// exp in the past is simply invalid.
func (s *Service) IsValid(payload map[string]any, expectedType string) bool {
	if payload == nil {
		return false
	}

	if typ, ok := payload["type"]; ok {
		str, ok := typ.(string)
		if !ok || str != expectedType {
			return false
		}
	}

	exp, ok := numericClaim(payload["exp"])
	if !ok {
		return false
	}

	return s.now().Unix() < exp
}

// numericClaim normalizes the numeric representations a claim can take
// after a JSON round trip.
func numericClaim(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
