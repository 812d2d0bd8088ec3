package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEmployeeRange(t *testing.T) {
	t.Parallel()

	t.Run("closed band", func(t *testing.T) {
		t.Parallel()
		r, err := ParseEmployeeRange("[100,500]")
		require.NoError(t, err)
		assert.Equal(t, 100, r.Min)
		require.NotNil(t, r.Max)
		assert.Equal(t, 500, *r.Max)
		assert.Equal(t, "[100,500]", r.String())
		assert.Equal(t, []any{100, 500}, r.Bounds())
	})

	t.Run("open upper bound", func(t *testing.T) {
		t.Parallel()
		r, err := ParseEmployeeRange("[500,]")
		require.NoError(t, err)
		assert.Equal(t, 500, r.Min)
		assert.Nil(t, r.Max)
		assert.Equal(t, "[500,)", r.String())
		assert.Equal(t, []any{500, nil}, r.Bounds())
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		for _, input := range []string{"", "100-500", "[,500]", "[a,b]", "[100]"} {
			_, err := ParseEmployeeRange(input)
			assert.Error(t, err, "input %q", input)
		}
	})
}

func TestUserTypeValid(t *testing.T) {
	t.Parallel()

	assert.True(t, UserTypeSuperAdmin.Valid())
	assert.True(t, UserTypeIndividual.Valid())
	assert.True(t, UserTypeOrganisation.Valid())
	assert.False(t, UserType(0).Valid())
	assert.False(t, UserType(4).Valid())
}

func TestGenderValid(t *testing.T) {
	t.Parallel()

	for g := GenderMale; g <= GenderOthers; g++ {
		assert.True(t, g.Valid())
	}
	assert.False(t, Gender(0).Valid())
	assert.False(t, Gender(5).Valid())
}
