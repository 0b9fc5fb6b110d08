// Package common defines sentinel errors and constants shared by the
// DocVault server layers. Callers should match errors with errors.Is.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Input errors.
	ErrValidation     = errors.New("validation error")
	ErrDuplicateEmail = errors.New("user already exists")

	// Authentication errors. ErrInvalidCredentials is intentionally the same
	// for an unknown email and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid or expired token")

	// Password reset errors.
	ErrInvalidOrExpiredCode = errors.New("invalid or expired OTP")

	// Collaborator errors (mail delivery, object storage).
	ErrDispatch = errors.New("dispatch failed")
)

// ValidationError describes a rejected input field. It matches ErrValidation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }
