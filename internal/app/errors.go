package app

import (
	"errors"
	"fmt"
)

// Application errors.
var (
	// ErrInitialization indicates an initialization failure.
	ErrInitialization = errors.New("initialization failed")

	// ErrClosed indicates the application has been closed.
	ErrClosed = errors.New("application closed")
)

// InitError reports which component failed to start.
type InitError struct {
	Component string
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("init %s: %v", e.Component, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Is allows errors.Is to match InitError with ErrInitialization.
func (e *InitError) Is(target error) bool {
	return target == ErrInitialization
}
