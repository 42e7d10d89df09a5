package service

import "errors"

var (
	// ErrValidation marks caller-supplied data the service refuses to
	// accept. Specific failures wrap it with a human-readable detail.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so login failures never reveal which one it was.
	ErrInvalidCredentials = errors.New("invalid credentials")

	ErrTokenIsExpiredOrInvalid = errors.New("token is expired or invalid")
	ErrTokenCreationFailed     = errors.New("token creation failed")
)
