package totp

import "errors"

var (
	ErrMissingSecret = errors.New("totp: secret key is not configured")
	ErrInvalidSecret = errors.New("totp: secret key is not valid base32")
	ErrInvalidCode   = errors.New("totp: code must be six digits")
)
