package sanitizer

import "strings"

// NormalizeEmail lowercases and trims an email address. Uniqueness checks and
// logins must always go through this so casing never splits an identity.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Trim removes surrounding whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// TrimToNil returns nil for strings that are empty after trimming, which is
// how optional text fields are persisted.
func TrimToNil(s string) *string {
	t := strings.TrimSpace(s)
	if t == "" {
		return nil
	}
	return &t
}
