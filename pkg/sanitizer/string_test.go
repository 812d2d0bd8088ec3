package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hireloop/identity/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "John.Doe@Example.COM", "john.doe@example.com"},
		{"trims", "  user@example.com \t", "user@example.com"},
		{"already normalized", "user@example.com", "user@example.com"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestTrimToNil(t *testing.T) {
	assert.Nil(t, sanitizer.TrimToNil("   "))

	got := sanitizer.TrimToNil(" hello ")
	assert.NotNil(t, got)
	assert.Equal(t, "hello", *got)
}
