// Package apperr defines the error kinds reported by the credential store,
// the key manager and the cipher. Callers distinguish them with errors.Is.
package apperr

import "errors"

var (
	// ErrNotFound is returned when a referenced id or name has no row.
	ErrNotFound = errors.New("not found")
	// ErrUniquenessViolation is returned when an insert duplicates a unique key.
	ErrUniquenessViolation = errors.New("uniqueness violation")
	// ErrReferentialIntegrity is returned when an item references a missing user.
	ErrReferentialIntegrity = errors.New("referential integrity violation")
	// ErrDecryption is returned when a ciphertext is malformed, was sealed
	// under another key, or fails authentication.
	ErrDecryption = errors.New("decryption failed")
	// ErrIO is returned when the persistent medium or key file is unusable.
	ErrIO = errors.New("storage io error")
)
