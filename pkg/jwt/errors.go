package jwt

import "errors"

var (
	ErrMissingSecret  = errors.New("jwt: signing secret is not configured")
	ErrUnsupportedAlg = errors.New("jwt: unsupported signing algorithm")
	ErrInvalidToken   = errors.New("jwt: invalid token")
	ErrExpiredToken   = errors.New("jwt: token expired")
	ErrMissingPayload = errors.New("jwt: missing payload")
)
