// Package common defines shared constants and sentinel errors used across
// the server, the Go client and the operator CLI. Callers should use
// errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")

	// Upload errors.
	ErrInvalidFileType = errors.New("invalid file type: only JPEG, PNG, GIF and WebP images are allowed")
	ErrFileTooLarge    = errors.New("file too large: maximum size is 5MB")
	ErrUnknownBucket   = errors.New("unknown storage bucket")
	ErrStorage         = errors.New("storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
)
