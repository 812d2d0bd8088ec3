package binder_test

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hireloop/identity/pkg/binder"
)

type loginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func TestJSON(t *testing.T) {
	t.Parallel()

	t.Run("decodes a valid body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.c","password":"secret"}`))
		req.Header.Set("Content-Type", "application/json")

		var payload loginPayload
		require.NoError(t, binder.JSON(req, &payload))
		assert.Equal(t, "a@b.c", payload.Email)
		assert.Equal(t, "secret", payload.Password)
	})

	t.Run("accepts content type with charset", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.c"}`))
		req.Header.Set("Content-Type", "application/json; charset=utf-8")

		var payload loginPayload
		require.NoError(t, binder.JSON(req, &payload))
	})

	t.Run("rejects missing content type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{}`))

		var payload loginPayload
		assert.ErrorIs(t, binder.JSON(req, &payload), binder.ErrMissingContentType)
	})

	t.Run("rejects non-json content type", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader("email=a"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		var payload loginPayload
		assert.ErrorIs(t, binder.JSON(req, &payload), binder.ErrUnsupportedMediaType)
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.c","extra":true}`))
		req.Header.Set("Content-Type", "application/json")

		var payload loginPayload
		assert.ErrorIs(t, binder.JSON(req, &payload), binder.ErrInvalidJSON)
	})

	t.Run("rejects empty body", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/json")

		var payload loginPayload
		assert.ErrorIs(t, binder.JSON(req, &payload), binder.ErrInvalidJSON)
	})

	t.Run("rejects trailing garbage", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"a@b.c"}{"again":1}`))
		req.Header.Set("Content-Type", "application/json")

		var payload loginPayload
		assert.ErrorIs(t, binder.JSON(req, &payload), binder.ErrInvalidJSON)
	})
}
