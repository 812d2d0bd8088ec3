package totp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "JBSWY3DPEHPK3PXP"

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(Config{SecretKey: testSecret, ExpireSeconds: 600})
	require.NoError(t, err)
	return g
}

func TestNewGenerator(t *testing.T) {
	t.Run("missing secret", func(t *testing.T) {
		_, err := NewGenerator(Config{})
		assert.ErrorIs(t, err, ErrMissingSecret)
	})

	t.Run("non-base32 secret", func(t *testing.T) {
		_, err := NewGenerator(Config{SecretKey: "not a secret!"})
		assert.ErrorIs(t, err, ErrInvalidSecret)
	})

	t.Run("lowercase secret normalized", func(t *testing.T) {
		_, err := NewGenerator(Config{SecretKey: "jbswy3dpehpk3pxp"})
		assert.NoError(t, err)
	})

	t.Run("zero period falls back to default", func(t *testing.T) {
		g, err := NewGenerator(Config{SecretKey: testSecret})
		require.NoError(t, err)
		assert.Equal(t, int64(600), g.period)
	})
}

func TestGenerate(t *testing.T) {
	g := newTestGenerator(t)

	code := g.Generate()
	assert.Len(t, code, 6)
	assert.Regexp(t, `^\d{6}$`, code)

	// Same window yields the same code.
	assert.Equal(t, code, g.Generate())
}

func TestVerify(t *testing.T) {
	current := time.Unix(1_700_000_000, 0)
	g := newTestGenerator(t)
	g.now = func() time.Time { return current }

	code := g.Generate()

	t.Run("current window accepted", func(t *testing.T) {
		ok, err := g.Verify(code)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("surrounding whitespace tolerated", func(t *testing.T) {
		ok, err := g.Verify(" " + code + " ")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("previous window rejected", func(t *testing.T) {
		stale := code
		current = current.Add(600 * time.Second)
		defer func() { current = time.Unix(1_700_000_000, 0) }()

		ok, err := g.Verify(stale)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wrong code rejected", func(t *testing.T) {
		wrong := "000000"
		if wrong == code {
			wrong = "000001"
		}
		ok, err := g.Verify(wrong)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("malformed codes", func(t *testing.T) {
		for _, bad := range []string{"", "12345", "1234567", "12345a", "abcdef"} {
			_, err := g.Verify(bad)
			assert.ErrorIs(t, err, ErrInvalidCode, "code %q", bad)
		}
	})
}

func TestGenerate_WindowBoundary(t *testing.T) {
	g := newTestGenerator(t)

	base := time.Unix(1_700_000_000, 0).Truncate(600 * time.Second)

	g.now = func() time.Time { return base }
	first := g.Generate()

	// Last second of the same window.
	g.now = func() time.Time { return base.Add(599 * time.Second) }
	assert.Equal(t, first, g.Generate())

	// First second of the next window.
	g.now = func() time.Time { return base.Add(600 * time.Second) }
	assert.NotEqual(t, first, g.Generate())
}
