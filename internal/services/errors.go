package services

import "errors"

// Typed failures surfaced by the invitation lifecycle. Handlers map these
// to HTTP status codes; none of them is retried automatically.
var (
	ErrInvalidToken    = errors.New("invalid invitation token")
	ErrExpired         = errors.New("invitation has expired")
	ErrCancelled       = errors.New("invitation has been cancelled")
	ErrAlreadyAccepted = errors.New("invitation has already been accepted")
	ErrEmailMismatch   = errors.New("email does not match invitation")
	ErrDuplicateTenant = errors.New("tenant already exists for this ownership")
	ErrTokenExhausted  = errors.New("failed to generate a unique invitation token")
	ErrContactRequired = errors.New("email or phone is required")
	ErrNotResendable   = errors.New("invitation cannot be resent")

	ErrInvalidCredentials = errors.New("invalid email or password")
)
