package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidConfig  = errors.New("invalid configuration")
	ErrNotPermitted   = errors.New("operation not permitted")
	ErrMalformedInput = errors.New("malformed interactive input")
	ErrNoTarget       = errors.New("no target chosen")
	ErrInputClosed    = errors.New("input closed")
)
