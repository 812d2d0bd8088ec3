package auth

import (
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/hireloop/identity/pkg/apiresponse"
	"github.com/hireloop/identity/pkg/jwt"
)

// openPaths are reachable without a token. Matching happens after trailing
// slashes are trimmed, except where a pattern allows one explicitly.
var openPaths = []*regexp.Regexp{
	regexp.MustCompile(`/(docs|profile_pictures/.+)$`),
	regexp.MustCompile(`/(openapi.json|favicon.ico)$`),
	regexp.MustCompile(`/api/v1/(login|request-password-reset|reset-password|send-otp-reset-password|verify-otp-reset-password)$`),
	regexp.MustCompile(`/api/v1/registration/(individual|organisation)$`),
	regexp.MustCompile(`/api/v1/token/refresh/?$`),
	regexp.MustCompile(`/api/v1/oauth/callback/?$`),
}

func isOpenPath(path string) bool {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	for _, re := range openPaths {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Middleware authenticates every request outside the open-path allow list.
// A verified access token puts a Principal on the request context; anything
// else is rejected with a 401 envelope.
func Middleware(tokens *jwt.Service, log *slog.Logger) func(http.Handler) http.Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isOpenPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := principalFromHeader(tokens, r.Header.Get("Authorization"))
			if err != nil {
				log.DebugContext(r.Context(), "request rejected",
					slog.String("path", r.URL.Path), slog.Any("error", err))
				apiresponse.Error(w, http.StatusUnauthorized, "Invalid or expired token.", nil)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
		})
	}
}

// principalFromHeader verifies the bearer token and lifts its entity claims
// into a Principal.
func principalFromHeader(tokens *jwt.Service, header string) (Principal, error) {
	scheme, raw, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, tokens.Scheme()) || strings.TrimSpace(raw) == "" {
		return Principal{}, ErrInvalidAuthHeader
	}

	payload, err := tokens.Decode(strings.TrimSpace(raw))
	if err != nil {
		return Principal{}, ErrInvalidToken
	}
	if !tokens.IsValid(payload, accessTokenType) {
		return Principal{}, ErrInvalidToken
	}

	return principalFromClaims(payload)
}

func principalFromClaims(payload map[string]any) (Principal, error) {
	userType, ok := numericPayloadClaim(payload["user_type"])
	if !ok || !UserType(userType).Valid() {
		return Principal{}, ErrInvalidToken
	}

	var entity map[string]any
	var idKey string
	switch UserType(userType) {
	case UserTypeOrganisation:
		entity, _ = payload["organisation"].(map[string]any)
		idKey = "org_id"
	default:
		entity, _ = payload["user"].(map[string]any)
		idKey = "user_id"
	}
	if entity == nil {
		return Principal{}, ErrInvalidToken
	}

	id, err := uuid.Parse(stringClaim(entity, idKey))
	if err != nil {
		return Principal{}, ErrInvalidToken
	}

	return Principal{
		EntityID:   id,
		EntityType: UserType(userType),
		Email:      stringClaim(entity, "email"),
		Claims:     payload,
	}, nil
}

func numericPayloadClaim(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case int64:
		return int(n), true
	default:
		return 0, false
	}
}
