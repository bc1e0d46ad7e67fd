package app

import "errors"

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrExternalService marks a failed call to the embedding, vector index
	// or generation provider. Not retried; the request fails.
	ErrExternalService = errors.New("external service failure")

	// ErrPersistence marks a failed registry file write.
	ErrPersistence = errors.New("persistence failure")
)
