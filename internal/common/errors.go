// Package common defines shared constants, sentinel errors and small helpers
// used across client and server layers of GophJournal. Callers should use
// errors.Is to match the error values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorForbidden    = errors.New("forbidden")
	ErrorValidation   = errors.New("validation error")

	// Identity errors.
	ErrInvalidCredentials  = errors.New("invalid login credentials")
	ErrUserAlreadyExists   = errors.New("user already registered")
	ErrEmailNotConfirmed   = errors.New("email not confirmed")
	ErrInvalidConfirmation = errors.New("invalid confirmation code")

	// Entry ownership errors.
	ErrOwnershipConflict = errors.New("entry is owned by another user")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
