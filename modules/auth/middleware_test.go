package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsOpenPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path string
		open bool
	}{
		{"/docs", true},
		{"/docs/", true},
		{"/openapi.json", true},
		{"/favicon.ico", true},
		{"/profile_pictures/abc.jpg", true},
		{"/profile_pictures/", false},
		{"/api/v1/login", true},
		{"/api/v1/login/", true},
		{"/api/v1/request-password-reset", true},
		{"/api/v1/reset-password", true},
		{"/api/v1/send-otp-reset-password", true},
		{"/api/v1/verify-otp-reset-password", true},
		{"/api/v1/registration/individual", true},
		{"/api/v1/registration/organisation", true},
		{"/api/v1/registration/admin", false},
		{"/api/v1/token/refresh", true},
		{"/api/v1/token/refresh/", true},
		{"/api/v1/oauth/callback", true},
		{"/api/v1/profile_details", false},
		{"/api/v1/change-password", false},
		{"/", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.path, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.open, isOpenPath(tt.path))
		})
	}
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	user := f.registerUser(t)

	issueAccess := func(t *testing.T) string {
		t.Helper()
		token, err := f.tokens.IssueAccess(
			f.svc.accessClaims(principalRecord{user: user}, testBaseURL, false, false, true))
		require.NoError(t, err)
		return token
	}

	var seen Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	protected := Middleware(f.tokens, nil)(next)

	do := func(path, header string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		protected.ServeHTTP(rec, req)
		return rec
	}

	t.Run("open path needs no token", func(t *testing.T) {
		rec := do("/api/v1/login", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("valid token reaches the handler with a principal", func(t *testing.T) {
		rec := do("/api/v1/profile_details", "Bearer "+issueAccess(t))
		require.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, user.ID, seen.EntityID)
		assert.Equal(t, UserTypeIndividual, seen.EntityType)
		assert.Equal(t, testUserEmail, seen.Email)
	})

	t.Run("missing header", func(t *testing.T) {
		rec := do("/api/v1/profile_details", "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Invalid or expired token.", body["message"])
	})

	t.Run("wrong scheme", func(t *testing.T) {
		rec := do("/api/v1/profile_details", "Basic "+issueAccess(t))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := do("/api/v1/profile_details", "Bearer garbage")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("refresh token is not an access token", func(t *testing.T) {
		refresh, err := f.tokens.IssueRefresh(map[string]any{"sub": user.ID.String()})
		require.NoError(t, err)
		rec := do("/api/v1/profile_details", "Bearer "+refresh)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		expired := signTestToken(t, map[string]any{
			"user_type": int(UserTypeIndividual),
			"user":      map[string]any{"user_id": user.ID.String()},
			"exp":       time.Now().Add(-time.Minute).Unix(),
		})
		rec := do("/api/v1/profile_details", "Bearer "+expired)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestPrincipalFromClaims(t *testing.T) {
	t.Parallel()

	orgID := "7d8f0fb4-3f8d-43a1-8a3c-1c2d8500beef"

	t.Run("organisation claims", func(t *testing.T) {
		t.Parallel()
		principal, err := principalFromClaims(map[string]any{
			"user_type": float64(UserTypeOrganisation),
			"organisation": map[string]any{
				"org_id": orgID,
				"email":  testOrgEmail,
			},
		})
		require.NoError(t, err)
		assert.Equal(t, orgID, principal.EntityID.String())
		assert.Equal(t, UserTypeOrganisation, principal.EntityType)
		assert.Equal(t, testOrgEmail, principal.Email)
	})

	t.Run("rejections", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			claims map[string]any
		}{
			{"missing user_type", map[string]any{"user": map[string]any{"user_id": orgID}}},
			{"invalid user_type", map[string]any{"user_type": float64(9)}},
			{"missing entity object", map[string]any{"user_type": float64(UserTypeIndividual)}},
			{
				"entity id not a uuid",
				map[string]any{
					"user_type": float64(UserTypeIndividual),
					"user":      map[string]any{"user_id": "nope"},
				},
			},
		}
		for _, tt := range tests {
			tt := tt
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				_, err := principalFromClaims(tt.claims)
				assert.ErrorIs(t, err, ErrInvalidToken)
			})
		}
	})
}

func TestWithPrincipalRoundTrip(t *testing.T) {
	t.Parallel()

	_, ok := PrincipalFromContext(context.Background())
	assert.False(t, ok)

	p := Principal{Email: testUserEmail, EntityType: UserTypeIndividual}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	require.True(t, ok)
	assert.Equal(t, p, got)
}
