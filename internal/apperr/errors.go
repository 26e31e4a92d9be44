// Package apperr defines the sentinel error kinds shared across Tavla.
package apperr

import "errors"

var (
	// ErrNotFound marks an absent canvas or asset.
	ErrNotFound = errors.New("not found")
	// ErrInvalidInput marks a malformed id, filename, or payload,
	// rejected before any I/O.
	ErrInvalidInput = errors.New("invalid input")
	// ErrInvalidTreeEdit marks a tree mutation that would create a cycle
	// or dangle a parent; the tree is left unchanged.
	ErrInvalidTreeEdit = errors.New("invalid tree edit")
	// ErrStoreUnavailable marks a transport failure talking to the store.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrInvariant guards internal scene consistency; the failing
	// operation is refused and the scene left intact.
	ErrInvariant = errors.New("invariant violation")
	// ErrAlreadyExists marks creation of a resource that already exists.
	ErrAlreadyExists = errors.New("already exists")
)
