package shared

import "errors"

var (
	// ErrNotFound indicates the resource does not exist or is not owned by the caller.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a unique-key conflict.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUnauthorized indicates a missing or invalid bearer token.
	ErrUnauthorized = errors.New("unauthorized")
)
