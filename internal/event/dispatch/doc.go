// Package dispatch runs ordered event handler chains.
//
// A chain is a slice of handlers already sorted by the caller. The
// SyncDispatcher invokes them one after another in the caller's goroutine
// and honors the event's stop-propagation flag between handlers.
//
// # Failure Semantics
//
// Handler errors are not caught, wrapped or retried. The first error ends
// the chain and is returned in Result.Err exactly as the handler produced
// it. Panics are not recovered and unwind through Dispatch.
//
// # Usage
//
//	d := dispatch.NewSyncDispatcher[*MyEvent]()
//	res := d.Dispatch(ctx, evt, handlers)
//	if res.Err != nil {
//	    return res.Err
//	}
//	if res.Stopped {
//	    // a handler halted propagation
//	}
package dispatch
