// Package queue provides a priority-bucketed callback queue.
//
// Callbacks are grouped by integer priority. Higher priorities come first
// when the queue is exported; callbacks sharing a priority keep the order
// in which they were added. Adding is O(1) amortized; the cost of ordering
// the distinct priorities is paid on export.
//
// A Queue is not safe for concurrent use. The owner must serialize access.
package queue

import (
	"iter"
	"slices"
)

// DefaultPriority is the priority used when a caller does not specify one.
const DefaultPriority = 0

// Entry is a callback paired with the priority it was added at.
type Entry[T comparable] struct {
	Priority int
	Callback T
}

// Queue holds callbacks partitioned by priority.
// A priority bucket exists only while it holds at least one callback.
type Queue[T comparable] struct {
	storage map[int][]T
}

// New creates an empty queue.
func New[T comparable]() *Queue[T] {
	return &Queue[T]{
		storage: make(map[int][]T),
	}
}

// Add appends callback to the bucket for priority.
// Adding the same callback twice keeps two independent entries.
func (q *Queue[T]) Add(callback T, priority int) {
	q.storage[priority] = append(q.storage[priority], callback)
}

// Contains reports whether callback is present at any priority.
func (q *Queue[T]) Contains(callback T) bool {
	for _, bucket := range q.storage {
		if slices.Contains(bucket, callback) {
			return true
		}
	}
	return false
}

// Remove removes every occurrence of callback across all priorities and
// returns the number of entries removed.
func (q *Queue[T]) Remove(callback T) int {
	removed := 0
	for priority, bucket := range q.storage {
		kept := bucket[:0]
		for _, cb := range bucket {
			if cb == callback {
				removed++
				continue
			}
			kept = append(kept, cb)
		}

		if len(kept) == 0 {
			delete(q.storage, priority)
			continue
		}

		// Clear the tail so removed callbacks can be collected.
		clear(bucket[len(kept):])
		q.storage[priority] = kept
	}
	return removed
}

// Priorities returns the distinct priorities in descending order.
func (q *Queue[T]) Priorities() []int {
	priorities := make([]int, 0, len(q.storage))
	for p := range q.storage {
		priorities = append(priorities, p)
	}
	slices.Sort(priorities)
	slices.Reverse(priorities)
	return priorities
}

// Export returns the callbacks ordered from highest to lowest priority.
// The result is a new slice computed from the current state.
func (q *Queue[T]) Export() []T {
	callbacks := make([]T, 0, q.Count())
	for _, p := range q.Priorities() {
		callbacks = append(callbacks, q.storage[p]...)
	}
	return callbacks
}

// Entries returns the callbacks with their priorities, in Export order.
func (q *Queue[T]) Entries() []Entry[T] {
	entries := make([]Entry[T], 0, q.Count())
	for _, p := range q.Priorities() {
		for _, cb := range q.storage[p] {
			entries = append(entries, Entry[T]{Priority: p, Callback: cb})
		}
	}
	return entries
}

// All returns an iterator over the callbacks in Export order.
// Each iteration works on a snapshot taken when it starts.
func (q *Queue[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, cb := range q.Export() {
			if !yield(cb) {
				return
			}
		}
	}
}

// Count returns the total number of callbacks.
func (q *Queue[T]) Count() int {
	count := 0
	for _, bucket := range q.storage {
		count += len(bucket)
	}
	return count
}

// Len returns the number of distinct priorities in use.
func (q *Queue[T]) Len() int {
	return len(q.storage)
}
