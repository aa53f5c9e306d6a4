package services

import "errors"

var (
	// ErrValidation marks malformed publish input. Wrapped with detail;
	// match with errors.Is.
	ErrValidation = errors.New("validation error")

	// ErrPasswordRequired signals that the entry is protected and no
	// password accompanied the read.
	ErrPasswordRequired = errors.New("password required")

	// ErrUnauthorized signals a wrong password. No view is consumed.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrCodeSpaceExhausted surfaces after repeated code collisions.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique code")
)
