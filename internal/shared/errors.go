// Package shared holds cross-cutting helpers used by every domain package.
package shared

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a uniqueness constraint was violated.
	ErrConflict = errors.New("already exists")
	// ErrValidation indicates the request failed validation.
	ErrValidation = errors.New("validation failed")
	// ErrImmutable indicates a write against a finalized estimate.
	ErrImmutable = errors.New("estimate is finalized")
)
