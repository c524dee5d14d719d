package dispatch

import (
	"context"
	"time"
)

// Stoppable is implemented by events whose propagation can be halted.
// This mirrors the propagation half of event.Event to avoid circular imports.
type Stoppable interface {
	IsPropagationStopped() bool
}

// Handler is the interface for event handlers.
type Handler[E any] interface {
	Handle(ctx context.Context, event E) error
}

// Dispatcher runs an ordered handler chain for a single event.
type Dispatcher[E Stoppable] interface {
	// Dispatch invokes handlers in order until one fails or the event
	// reports that propagation was stopped.
	Dispatch(ctx context.Context, event E, handlers []Handler[E]) Result
}

// Result represents the outcome of one dispatch call.
type Result struct {
	// Invoked is the number of handlers that were called, including the
	// one that failed or stopped propagation.
	Invoked int

	// Pending is the number of handlers that were not called.
	Pending int

	// Stopped is true if a handler stopped propagation.
	Stopped bool

	// Err is the error returned by the failing handler, unwrapped.
	Err error

	// Duration is how long the chain took to run.
	Duration time.Duration
}

// IsSuccess returns true if no handler failed.
func (r Result) IsSuccess() bool {
	return r.Err == nil
}

// Completed returns true if every handler in the chain was invoked.
func (r Result) Completed() bool {
	return r.Pending == 0
}
