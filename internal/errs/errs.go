// Package errs defines the error taxonomy shared across meridian's
// packages so callers can branch on failure kind with errors.Is.
package errs

import "errors"

// Sentinel kinds. Wrap one of these with fmt.Errorf("...: %w", ErrX) at the
// point a failure is classified; do not construct new kinds ad hoc.
var (
	// ErrNotFound means a requested repository, file, or node does not exist.
	ErrNotFound = errors.New("not found")

	// ErrBadInput means the caller supplied a malformed or out-of-range argument.
	ErrBadInput = errors.New("bad input")

	// ErrIOFailure means a filesystem read/write/stat failed.
	ErrIOFailure = errors.New("i/o failure")

	// ErrSchemaFailure means a store's schema could not be initialized or migrated.
	ErrSchemaFailure = errors.New("schema failure")

	// ErrStoreFailure means a metadata or vector store operation failed for a
	// reason other than the four kinds above.
	ErrStoreFailure = errors.New("store failure")
)
