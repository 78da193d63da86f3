package api

import "errors"

var (
	// ErrUnavailable covers network failures and timeouts; the call may be
	// retried.
	ErrUnavailable = errors.New("server unavailable")
	// ErrUnauthorized is a 401 that survived a refresh attempt.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrSessionExpired means the refresh token was rejected and the local
	// token record has been cleared.
	ErrSessionExpired = errors.New("session expired")
	ErrNotFound       = errors.New("not found")
	ErrDuplicate      = errors.New("email already in use")
	ErrValidation     = errors.New("invalid input")
	ErrServer         = errors.New("server error")
)
