// Package apperr defines the sentinel errors shared across the bridge.
package apperr

import "errors"

var (
	// ErrNotFound indicates a note file that does not exist in the store.
	ErrNotFound = errors.New("not found")

	// ErrDirectoryNotFound indicates a scan root that does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrUnsupportedFormat indicates the store is configured for a note
	// dialect that cannot carry an identifier block.
	ErrUnsupportedFormat = errors.New("unsupported note format")

	// ErrMissingIdentifier indicates a freshly created note without an
	// identifier block, i.e. a broken creation hook.
	ErrMissingIdentifier = errors.New("missing identifier")

	// ErrCancelled indicates the user aborted an interactive prompt.
	// It is not a failure; actions end silently with no further effects.
	ErrCancelled = errors.New("cancelled")
)
