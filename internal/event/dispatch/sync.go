package dispatch

import (
	"context"
	"sync/atomic"
	"time"
)

// SyncDispatcher executes handler chains synchronously in the caller's
// goroutine. It does not recover panics, retry, or wrap errors: a failing
// handler ends the chain and its error is reported as-is.
type SyncDispatcher[E Stoppable] struct {
	// Stats
	dispatched  atomic.Uint64
	invoked     atomic.Uint64
	stopped     atomic.Uint64
	failed      atomic.Uint64
	totalTimeNs atomic.Int64
}

// NewSyncDispatcher creates a new synchronous dispatcher.
func NewSyncDispatcher[E Stoppable]() *SyncDispatcher[E] {
	return &SyncDispatcher[E]{}
}

// Dispatch invokes handlers strictly in order, passing event to each.
// After every invocation the event's propagation flag is checked; once it
// is set no further handlers run. The check happens after a handler
// returns, so the first handler always runs.
//
// The context is handed to each handler unchanged. Cancellation is the
// handlers' concern; the chain itself is never interrupted.
func (d *SyncDispatcher[E]) Dispatch(ctx context.Context, event E, handlers []Handler[E]) Result {
	d.dispatched.Add(1)
	start := time.Now()

	result := Result{Pending: len(handlers)}
	for _, handler := range handlers {
		result.Invoked++
		result.Pending--
		d.invoked.Add(1)

		if err := handler.Handle(ctx, event); err != nil {
			result.Err = err
			d.failed.Add(1)
			break
		}

		if event.IsPropagationStopped() {
			result.Stopped = true
			d.stopped.Add(1)
			break
		}
	}

	result.Duration = time.Since(start)
	d.totalTimeNs.Add(result.Duration.Nanoseconds())

	return result
}

// Stats returns dispatch statistics.
// Note: Stats are read without a mutex, so values may be slightly inconsistent
// if stats are being updated concurrently.
func (d *SyncDispatcher[E]) Stats() SyncDispatcherStats {
	dispatched := d.dispatched.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if dispatched > 0 {
		avgNs = totalNs / int64(dispatched)
	}

	return SyncDispatcherStats{
		Dispatched:    dispatched,
		Invoked:       d.invoked.Load(),
		Stopped:       d.stopped.Load(),
		Failed:        d.failed.Load(),
		TotalDuration: time.Duration(totalNs),
		AvgDuration:   time.Duration(avgNs),
	}
}

// ResetStats resets all statistics to zero.
func (d *SyncDispatcher[E]) ResetStats() {
	d.dispatched.Store(0)
	d.invoked.Store(0)
	d.stopped.Store(0)
	d.failed.Store(0)
	d.totalTimeNs.Store(0)
}

// SyncDispatcherStats contains statistics for a sync dispatcher.
type SyncDispatcherStats struct {
	// Dispatched is the total number of chains dispatched.
	Dispatched uint64

	// Invoked is the total number of handler invocations.
	Invoked uint64

	// Stopped is the number of chains ended by a propagation stop.
	Stopped uint64

	// Failed is the number of chains ended by a handler error.
	Failed uint64

	// TotalDuration is the cumulative time spent running chains.
	TotalDuration time.Duration

	// AvgDuration is the average chain duration.
	AvgDuration time.Duration
}
