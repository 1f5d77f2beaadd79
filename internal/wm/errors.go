package wm

import "errors"

var (
	// ErrWindowNotFound is returned by registry operations that
	// reference an unknown window ID. Lookups issued after a destroy in
	// the same frame hit this, so callers treat it as recoverable.
	ErrWindowNotFound = errors.New("window not found")

	// ErrInvalidState is returned when a lifecycle transition is not
	// legal from the window's current state.
	ErrInvalidState = errors.New("invalid window state transition")
)
