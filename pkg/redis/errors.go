package redis

import "errors"

var (
	ErrInvalidConnectionURL = errors.New("redis: failed to parse connection url")
	ErrNotReady             = errors.New("redis: server did not become ready")
	ErrHealthcheckFailed    = errors.New("redis: healthcheck failed")
)
