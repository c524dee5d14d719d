// Package event provides an in-process event manager.
//
// Components attach handlers to named events with an integer priority. A
// Manager later triggers an event by name; the handlers attached to that
// name run synchronously, in the caller's goroutine, ordered by priority.
// Any handler can stop propagation so that the remaining handlers are
// skipped.
//
// # Architecture
//
//	┌─────────────────────────────────────────────┐
//	│                   Manager                   │
//	│  - name -> queue.Queue[Handler]             │
//	│  - event factory / default event template   │
//	└─────────────────────────────────────────────┘
//	          │                        │
//	          ▼                        ▼
//	┌──────────────────┐     ┌────────────────────────┐
//	│   queue.Queue    │     │ dispatch.SyncDispatcher │
//	│  - priority      │     │  - ordered invocation   │
//	│    buckets       │     │  - stop propagation     │
//	└──────────────────┘     └────────────────────────┘
//
// # Priority Ordering
//
// Higher priorities run first. Handlers sharing a priority run in the order
// they were attached. The default is PriorityNormal (0); negative values are
// allowed.
//
// # Basic Usage
//
//	mgr := event.NewManager(event.WithLogger(logger))
//
//	audit := event.Func(func(ctx context.Context, e event.Event) error {
//	    return record(e.Name(), e.Target())
//	})
//	if err := mgr.Attach(event.Many("user.created", "user.deleted"), audit,
//	    event.WithPriority(event.PriorityLow)); err != nil {
//	    return err
//	}
//
//	e, err := mgr.Trigger(ctx, "user.created", user)
//
// # Handler Identity
//
// Detach removes a handler by ==. Handlers must therefore have comparable
// dynamic types; Func and Listener return pointers, so keep the returned
// value around to detach it. Attaching the same handler twice creates two
// entries, and a single Detach removes both.
//
// # Custom Events
//
// Trigger builds a BaseEvent unless a factory or template is installed:
//
//	type RequestEvent struct {
//	    *event.BaseEvent
//	    Request *http.Request
//	}
//
//	func (e *RequestEvent) Clone(name string) event.Event {
//	    return &RequestEvent{BaseEvent: e.CloneBase(name), Request: e.Request}
//	}
//
//	mgr.SetDefaultEvent(&RequestEvent{BaseEvent: event.NewEvent("", nil), Request: req})
//
// TriggerEvent dispatches an event the caller already built, passing the
// same instance to every handler.
//
// # Errors
//
// Handler errors are returned to the Trigger caller unchanged and end the
// dispatch. Panics are not recovered. Attach reports name arguments of the
// wrong type with an *InvalidNameError, which matches ErrInvalidArgument.
//
// # Thread Safety
//
// Manager is safe for concurrent use. Each dispatch runs over a snapshot of
// the handler order taken when it starts; attach and detach calls made by
// handlers take effect on the next trigger. Events themselves are not
// synchronized and belong to the goroutine that triggers them.
//
// # Subpackages
//
//   - queue: priority-bucketed callback queue
//   - dispatch: ordered synchronous handler chains
//   - events: names and targets of hookmgr's own events
package event
