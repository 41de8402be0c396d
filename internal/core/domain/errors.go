package domain

import (
	"errors"
	"fmt"
)

// Gateway-level failures. These never reach a handler: the gateway turns them
// into redirects.
var (
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrProfileMissing  = errors.New("profile missing for session")
)

// Data-level failures surfaced to callers verbatim.
var (
	ErrConflict          = errors.New("conflict")
	ErrInvalidTransition = errors.New("invalid state transition")
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrStorageTransient  = errors.New("storage temporarily unavailable")
)

// Account errors.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserExists         = errors.New("user already exists")
	ErrUserNotFound       = fmt.Errorf("user %w", ErrNotFound)
	ErrAccountSuspended   = errors.New("account suspended")
)
