package lua

import "errors"

// Errors for Lua state operations.
var (
	// ErrStateClosed is returned when operating on a closed state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrModuleClosed is returned when a cleaned-up event module is used.
	ErrModuleClosed = errors.New("lua event module is closed")

	// ErrNotFunction is returned by Call when the global is not a function.
	ErrNotFunction = errors.New("lua global is not a function")
)
