package event

import (
	"context"
	"reflect"

	"github.com/dshills/hookmgr/internal/event/dispatch"
	"github.com/dshills/hookmgr/internal/event/queue"
)

// Priority determines handler execution order.
// Higher values execute first; equal values keep attach order.
type Priority int

const (
	// PriorityCritical is for handlers that must observe an event first.
	PriorityCritical Priority = 200

	// PriorityHigh runs before ordinary handlers.
	PriorityHigh Priority = 100

	// PriorityNormal is the default priority.
	PriorityNormal Priority = queue.DefaultPriority

	// PriorityLow is for logging and metrics handlers that run last.
	PriorityLow Priority = -100
)

// String returns a human-readable priority name.
func (p Priority) String() string {
	switch {
	case p >= PriorityCritical:
		return "critical"
	case p >= PriorityHigh:
		return "high"
	case p > PriorityLow:
		return "normal"
	default:
		return "low"
	}
}

// Handler is the interface for event handlers.
//
// Handlers are identified by ==, so their dynamic type must be comparable.
// Pointer types are the usual choice; use Func to adapt a plain function.
type Handler = dispatch.Handler[Event]

// funcHandler adapts a function to Handler with pointer identity.
type funcHandler struct {
	fn func(ctx context.Context, e Event) error
}

func (h *funcHandler) Handle(ctx context.Context, e Event) error {
	return h.fn(ctx, e)
}

// Func wraps fn as a Handler. Every call returns a distinct handler, so
// keep the returned value to detach it later.
func Func(fn func(ctx context.Context, e Event) error) Handler {
	return &funcHandler{fn: fn}
}

// Listener wraps a function that cannot fail as a Handler.
func Listener(fn func(e Event)) Handler {
	return &funcHandler{fn: func(_ context.Context, e Event) error {
		fn(e)
		return nil
	}}
}

// checkHandler validates that h can be stored and later compared.
func checkHandler(h Handler) error {
	if h == nil {
		return ErrNilHandler
	}
	if !reflect.TypeOf(h).Comparable() || !selfEqual(h) {
		return ErrUncomparableHandler
	}
	return nil
}

// selfEqual reports whether h == h completes. A comparable type can still
// panic at run time when an interface field holds an uncomparable value.
func selfEqual(h Handler) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return h == h
}

// Stats contains event manager statistics.
type Stats struct {
	// Events is the number of event names with at least one handler.
	Events int

	// Handlers is the total number of attached handler entries.
	Handlers int

	// Dispatch holds the dispatcher counters.
	Dispatch dispatch.SyncDispatcherStats
}
