package services

import "errors"

// Anything not matching one of these is an internal failure.
var (
	ErrConflict           = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrNotFound           = errors.New("journal not found")
	ErrValidation         = errors.New("invalid request")
)
