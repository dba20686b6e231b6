// Package errors defines the sentinel errors shared by every module, plus
// small helpers for wrapping and matching them. Use cases return these to
// express business outcomes; the HTTP layer maps them to status codes, so no
// other layer needs to know about transports.
package errors

import (
	"errors"
	"fmt"
)

// Request and resource outcomes.
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrConflict indicates the request collides with existing state, such as
	// a duplicate name or a resource that is still referenced.
	ErrConflict = errors.New("conflict")

	// ErrInvalidInput indicates the input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized indicates missing or unverifiable credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the authenticated client lacks a required role
	// or permission.
	ErrForbidden = errors.New("forbidden")
)

// Cryptographic and KMS transport faults.
var (
	// ErrAuthenticationFailure indicates an AEAD authentication tag mismatch.
	// A stored ciphertext failing integrity verification is fatal and must
	// never be retried.
	ErrAuthenticationFailure = errors.New("authentication failure")

	// ErrTransportCorruption indicates an end-to-end integrity check with the
	// KMS failed (CRC mismatch on a request or response payload).
	ErrTransportCorruption = errors.New("transport corruption")

	// ErrTransportTimeout indicates a KMS call exceeded its deadline. Callers
	// may retry idempotent operations.
	ErrTransportTimeout = errors.New("transport timeout")
)

// New returns an error with the given message.
func New(message string) error {
	return errors.New(message)
}

// Wrap annotates err with message, keeping the chain intact so sentinel
// matching still works. Returns nil when err is nil.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}
