package service

import "errors"

// Service errors. The API layer maps these to HTTP statuses.
var (
	// ErrNotOwned indicates the resource belongs to another user.
	ErrNotOwned = errors.New("resource is owned by another user")

	// ErrInvalidCredentials indicates an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// MsgSaveFailed is the user-facing message for an unexpected persistence error.
const MsgSaveFailed = "Failed to save lesson."
