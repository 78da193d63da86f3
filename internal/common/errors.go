// Package common defines shared constants and sentinel errors used across
// client and server layers of mailvault. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrInternal           = errors.New("internal error")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Validation errors (missing or malformed input).
	ErrValidation = errors.New("validation error")

	// Token lifecycle errors.
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")

	// Cipher errors. A decryption failure is fatal for the record being
	// read, not for the service.
	ErrDecryptionFailed = errors.New("decryption failed")
)
