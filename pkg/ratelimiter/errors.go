package ratelimiter

import "errors"

var (
	ErrInvalidConfig    = errors.New("ratelimiter: invalid configuration")
	ErrStoreUnavailable = errors.New("ratelimiter: store unavailable")
)
