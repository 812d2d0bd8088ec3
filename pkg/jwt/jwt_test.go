package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := New(Config{
		SecretKey:        "test-secret-key-with-enough-entropy",
		Algorithm:        "HS256",
		AccessTTLMinutes: 30,
		RefreshTTLDays:   7,
	})
	require.NoError(t, err)
	return svc
}

func TestNew(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := New(Config{Algorithm: "HS256"})
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("non-HMAC algorithm rejected", func(t *testing.T) {
		_, err := New(Config{SecretKey: "secret", Algorithm: "RS256"})
		assert.ErrorIs(t, err, ErrUnsupportedAlg)
	})

	t.Run("HS512 accepted", func(t *testing.T) {
		_, err := New(Config{SecretKey: "secret", Algorithm: "HS512"})
		assert.NoError(t, err)
	})
}

func TestRoundTrip(t *testing.T) {
	svc := newTestService(t)

	payload := map[string]any{
		"user_type":     float64(2),
		"otp_validated": false,
		"social_login":  true,
		"user":          map[string]any{"user_id": "abc", "email": "a@b.co"},
	}

	token, err := svc.IssueAccess(payload)
	require.NoError(t, err)

	decoded, err := svc.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, payload["user_type"], decoded["user_type"])
	assert.Equal(t, payload["otp_validated"], decoded["otp_validated"])
	assert.Equal(t, payload["social_login"], decoded["social_login"])
	assert.Equal(t, payload["user"], decoded["user"])
	assert.Contains(t, decoded, "iat")
	assert.Contains(t, decoded, "exp")

	assert.True(t, svc.IsValid(decoded, "access"))
}

func TestIssueRefresh(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.IssueRefresh(map[string]any{"sub": "uuid-1"})
	require.NoError(t, err)

	decoded, err := svc.Decode(token)
	require.NoError(t, err)

	assert.Equal(t, TypeRefresh, decoded["type"])
	assert.Equal(t, "uuid-1", decoded["sub"])
	assert.True(t, svc.IsValid(decoded, TypeRefresh))
	assert.False(t, svc.IsValid(decoded, "access"))
}

func TestDecode_Errors(t *testing.T) {
	svc := newTestService(t)

	t.Run("expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		svc.now = func() time.Time { return past }
		token, err := svc.IssueAccess(map[string]any{"sub": "x"})
		require.NoError(t, err)
		svc.now = time.Now

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("tampered signature", func(t *testing.T) {
		token, err := svc.IssueAccess(map[string]any{"sub": "x"})
		require.NoError(t, err)

		_, err = svc.Decode(token + "x")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.Decode("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.Decode("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other, err := New(Config{SecretKey: "different-secret", Algorithm: "HS256"})
		require.NoError(t, err)
		token, err := other.IssueAccess(map[string]any{"sub": "x"})
		require.NoError(t, err)

		_, err = svc.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestDecodeExpired(t *testing.T) {
	svc := newTestService(t)

	t.Run("recovers the payload of an expired token", func(t *testing.T) {
		past := time.Now().Add(-2 * time.Hour)
		svc.now = func() time.Time { return past }
		token, err := svc.IssueRefresh(map[string]any{"sub": "uuid-1"})
		require.NoError(t, err)
		svc.now = time.Now

		_, err = svc.Decode(token)
		require.ErrorIs(t, err, ErrExpiredToken)

		payload, err := svc.DecodeExpired(token)
		require.NoError(t, err)
		assert.Equal(t, "uuid-1", payload["sub"])
		assert.Equal(t, TypeRefresh, payload["type"])
	})

	t.Run("still checks the signature", func(t *testing.T) {
		other, err := New(Config{SecretKey: "different-secret", Algorithm: "HS256"})
		require.NoError(t, err)
		token, err := other.IssueRefresh(map[string]any{"sub": "uuid-1"})
		require.NoError(t, err)

		_, err = svc.DecodeExpired(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := svc.DecodeExpired("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestIsValid(t *testing.T) {
	svc := newTestService(t)
	now := time.Now().Unix()

	tests := []struct {
		name         string
		payload      map[string]any
		expectedType string
		want         bool
	}{
		{"nil payload", nil, "access", false},
		{"missing exp", map[string]any{"sub": "x"}, "access", false},
		{"unparseable exp", map[string]any{"exp": "soon"}, "access", false},
		{"exp one second in the past", map[string]any{"exp": float64(now - 1)}, "access", false},
		{"exp in the future", map[string]any{"exp": float64(now + 60)}, "access", true},
		{"type mismatch", map[string]any{"exp": float64(now + 60), "type": "refresh"}, "access", false},
		{"type match", map[string]any{"exp": float64(now + 60), "type": "refresh"}, "refresh", true},
		{"no type field passes any expectation", map[string]any{"exp": float64(now + 60)}, "refresh", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.IsValid(tt.payload, tt.expectedType))
		})
	}
}

func TestIssue_NonDeterministicButVerifiable(t *testing.T) {
	svc := newTestService(t)

	// Two tokens issued at different instants differ, yet both verify.
	a, err := svc.IssueAccess(map[string]any{"sub": "x"})
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(time.Second) }
	b, err := svc.IssueAccess(map[string]any{"sub": "x"})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	_, err = svc.Decode(a)
	assert.NoError(t, err)
	_, err = svc.Decode(b)
	assert.NoError(t, err)
}
