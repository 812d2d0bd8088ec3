package binder

import "errors"

var (
	ErrMissingContentType   = errors.New("binder: missing content type")
	ErrUnsupportedMediaType = errors.New("binder: unsupported media type")
	ErrInvalidJSON          = errors.New("binder: invalid JSON")
)
