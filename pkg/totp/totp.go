// Package totp generates and verifies the time-based one-time codes used by
// the password-reset flow. Codes follow RFC 6238 over HMAC-SHA1 with a long
// validity period so a code sent by email stays usable while the user reads
// their inbox.
package totp

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base32"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"
)

const digits = 6

var secretKeyRegex = regexp.MustCompile("^[A-Z2-7]+=*$")

// Generator produces and verifies six-digit codes against a single shared
// secret. Verification accepts only the current window; a code from the
// previous period is already stale.
type Generator struct {
	key    []byte
	period int64

	now func() time.Time // swapped in tests
}

// NewGenerator builds a generator from config. The secret must be
// base32-encoded; the period falls back to ten minutes when unset.
func NewGenerator(cfg Config) (*Generator, error) {
	secret := strings.TrimSpace(strings.ToUpper(cfg.SecretKey))
	if secret == "" {
		return nil, ErrMissingSecret
	}
	if !secretKeyRegex.MatchString(secret) {
		return nil, ErrInvalidSecret
	}

	key, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.TrimRight(secret, "="))
	if err != nil {
		return nil, errors.Join(ErrInvalidSecret, err)
	}

	period := int64(cfg.ExpireSeconds)
	if period <= 0 {
		period = 600
	}

	return &Generator{
		key:    key,
		period: period,
		now:    time.Now,
	}, nil
}

// Generate returns the six-digit code for the current window.
func (g *Generator) Generate() string {
	counter := g.now().Unix() / g.period
	return fmt.Sprintf("%06d", hotp(g.key, counter, digits))
}

// Verify reports whether the code matches the current window exactly.
func (g *Generator) Verify(code string) (bool, error) {
	code = strings.TrimSpace(code)
	if len(code) != digits {
		return false, ErrInvalidCode
	}
	for _, r := range code {
		if r < '0' || r > '9' {
			return false, ErrInvalidCode
		}
	}

	return hmac.Equal([]byte(code), []byte(g.Generate())), nil
}

// hotp implements the RFC 4226 HMAC-based one-time password algorithm.
func hotp(key []byte, counter int64, digits int) int {
	counterBytes := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		counterBytes[i] = byte(counter & 0xff)
		counter = counter >> 8
	}

	mac := hmac.New(sha1.New, key)
	mac.Write(counterBytes)
	hash := mac.Sum(nil)

	// Dynamic truncation: last 4 bits pick the offset, MSB cleared to keep
	// the value positive.
	offset := hash[len(hash)-1] & 0x0f
	code := (int(hash[offset]&0x7f) << 24) |
		(int(hash[offset+1]&0xff) << 16) |
		(int(hash[offset+2]&0xff) << 8) |
		(int(hash[offset+3] & 0xff))

	return code % int(math.Pow10(digits))
}
