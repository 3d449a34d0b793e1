package models

import "errors"

// Domain error taxonomy shared by repositories, services and handlers.
// Handlers translate these to HTTP status codes with errors.Is.
var (
	// ErrNotFound covers a missing document and a document not owned by
	// the caller; the two cases are indistinguishable on purpose.
	ErrNotFound = errors.New("not found")

	ErrInvalidRequest = errors.New("invalid request")

	// ErrInsufficientBalance means a key debit would have taken the
	// balance below zero. Nothing was mutated.
	ErrInsufficientBalance = errors.New("insufficient reveal keys")

	ErrIncorrectAnswer = errors.New("incorrect answer")

	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoHintsAvailable aborts a hint-granting transaction before any
	// debit when the eligible pool is exhausted.
	ErrNoHintsAvailable = errors.New("no hints available")

	ErrServiceUnavailable = errors.New("external service unavailable")
)
