package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is the value passed to handlers during a dispatch.
//
// The name is fixed when the event is constructed. The target is an
// arbitrary payload handlers may replace. Stopping propagation is one-way:
// once stopped, an event stays stopped.
type Event interface {
	// Name returns the event name.
	Name() string

	// Target returns the payload associated with the event.
	Target() any

	// SetTarget replaces the payload.
	SetTarget(target any)

	// StopPropagation prevents handlers after the current one from running.
	StopPropagation()

	// IsPropagationStopped reports whether StopPropagation was called.
	IsPropagationStopped() bool
}

// Template is an event that can be copied to produce new events.
// A template installed with Manager.SetDefaultEvent is cloned on every
// Trigger call.
type Template interface {
	Event

	// Clone returns a shallow copy carrying the current target and stop
	// state, with the name replaced.
	Clone(name string) Event
}

// Factory constructs a fresh event for the given name.
// When it returns nil the Manager falls back to a BaseEvent.
type Factory func(name string) Event

// Metadata contains standard information attached to every BaseEvent.
type Metadata struct {
	// ID is a unique identifier for this event instance.
	ID string

	// Timestamp is when the event was created.
	Timestamp time.Time
}

func newMetadata() Metadata {
	return Metadata{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
	}
}

// BaseEvent is the generic event implementation.
//
// Application events can embed *BaseEvent to inherit the Event methods.
// Such types should override Clone so that clones keep the embedding type.
type BaseEvent struct {
	name     string
	target   any
	stopped  bool
	metadata Metadata
}

// NewEvent creates a new event with the given name and target.
func NewEvent(name string, target any) *BaseEvent {
	return &BaseEvent{
		name:     name,
		target:   target,
		metadata: newMetadata(),
	}
}

// Name returns the event name.
func (e *BaseEvent) Name() string {
	return e.name
}

// Target returns the event target.
func (e *BaseEvent) Target() any {
	return e.target
}

// SetTarget replaces the event target.
func (e *BaseEvent) SetTarget(target any) {
	e.target = target
}

// StopPropagation stops further handlers from being invoked.
func (e *BaseEvent) StopPropagation() {
	e.stopped = true
}

// IsPropagationStopped reports whether propagation was stopped.
func (e *BaseEvent) IsPropagationStopped() bool {
	return e.stopped
}

// Metadata returns the event metadata.
func (e *BaseEvent) Metadata() Metadata {
	return e.metadata
}

// Clone returns a copy of e named name. The target and stop state are
// copied; the copy gets fresh metadata.
func (e *BaseEvent) Clone(name string) Event {
	return e.CloneBase(name)
}

// CloneBase is Clone with a concrete return type, for embedding types that
// build their own Clone on top of it.
func (e *BaseEvent) CloneBase(name string) *BaseEvent {
	return &BaseEvent{
		name:     name,
		target:   e.target,
		stopped:  e.stopped,
		metadata: newMetadata(),
	}
}

// MetadataProvider is implemented by events that carry Metadata.
type MetadataProvider interface {
	Metadata() Metadata
}

// genericFactory builds BaseEvents.
func genericFactory(name string) Event {
	return NewEvent(name, nil)
}
