package event

import (
	"errors"
	"fmt"
)

// Sentinel errors for the event manager.
var (
	// ErrInvalidArgument is returned when an event name argument is neither
	// a single name nor a list of names.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNilHandler is returned when a nil handler is provided.
	ErrNilHandler = errors.New("handler cannot be nil")

	// ErrNilEvent is returned when a nil event is dispatched.
	ErrNilEvent = errors.New("event cannot be nil")

	// ErrUncomparableHandler is returned when a handler's dynamic type cannot
	// be compared with ==, which detaching relies on. Wrap functions with Func.
	ErrUncomparableHandler = errors.New("handler type is not comparable")
)

// InvalidNameError describes an event name argument of the wrong type.
type InvalidNameError struct {
	// Value is the offending value.
	Value any

	// Index is the position of Value inside a list of names, or -1 when the
	// argument itself was not a name or list.
	Index int
}

// Type returns the observed type of the offending value.
func (e *InvalidNameError) Type() string {
	if e.Value == nil {
		return "nil"
	}
	return fmt.Sprintf("%T", e.Value)
}

// Error implements the error interface.
func (e *InvalidNameError) Error() string {
	if e.Index >= 0 {
		return fmt.Sprintf("event name at index %d must be string; %s given", e.Index, e.Type())
	}
	return fmt.Sprintf("event name must be string or list of strings; %s given", e.Type())
}

// Is allows errors.Is to match InvalidNameError with ErrInvalidArgument.
func (e *InvalidNameError) Is(target error) bool {
	return target == ErrInvalidArgument
}
