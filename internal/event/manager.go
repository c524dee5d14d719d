package event

import (
	"context"
	"slices"
	"sync"

	"github.com/dshills/hookmgr/internal/event/dispatch"
	"github.com/dshills/hookmgr/internal/event/queue"
	"github.com/dshills/hookmgr/internal/logging"
)

// Manager binds handlers to event names and triggers them.
//
// Each event name owns a priority queue of handlers. The queue is created
// on the first Attach for the name and dropped when its last handler is
// detached.
//
// A Manager is safe for concurrent use. Dispatch works on a snapshot of the
// handler order taken when the trigger starts, so handlers may attach or
// detach freely; such changes apply to later triggers.
type Manager struct {
	mu      sync.RWMutex
	events  map[string]*queue.Queue[Handler]
	factory Factory

	dispatcher *dispatch.SyncDispatcher[Event]
	logger     *logging.Logger
}

// NewManager creates a new event manager.
func NewManager(opts ...ManagerOption) *Manager {
	config := defaultManagerConfig()
	for _, opt := range opts {
		opt(&config)
	}

	return &Manager{
		events:     make(map[string]*queue.Queue[Handler]),
		factory:    config.factory,
		dispatcher: dispatch.NewSyncDispatcher[Event](),
		logger:     config.logger.WithComponent("event"),
	}
}

// SetDefaultEvent installs a template that Trigger clones instead of
// constructing a BaseEvent. Passing nil restores the generic event.
func (m *Manager) SetDefaultEvent(t Template) {
	if t == nil {
		m.SetEventFactory(nil)
		return
	}
	m.SetEventFactory(t.Clone)
}

// SetEventFactory installs the constructor Trigger uses to create events.
// Passing nil restores the generic event.
func (m *Manager) SetEventFactory(f Factory) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.factory = f
}

// Attach attaches handler to every name in names with the same priority.
// The default priority is PriorityNormal.
func (m *Manager) Attach(names Names, handler Handler, opts ...AttachOption) error {
	if err := checkHandler(handler); err != nil {
		return err
	}

	config := attachConfig{priority: PriorityNormal}
	for _, opt := range opts {
		opt(&config)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, name := range names.list {
		q, ok := m.events[name]
		if !ok {
			q = queue.New[Handler]()
			m.events[name] = q
		}
		q.Add(handler, int(config.priority))
	}

	m.logger.Debug("attached handler to %v at priority %d", names.list, config.priority)
	return nil
}

// AttachAny is Attach for dynamically typed name arguments; see ParseNames.
// An invalid value anywhere in a list fails the whole call before any
// handler is registered.
func (m *Manager) AttachAny(names any, handler Handler, opts ...AttachOption) error {
	parsed, err := ParseNames(names)
	if err != nil {
		return err
	}
	return m.Attach(parsed, handler, opts...)
}

// On attaches handler to a single event name.
func (m *Manager) On(name string, handler Handler, opts ...AttachOption) error {
	return m.Attach(One(name), handler, opts...)
}

// Detach removes every occurrence of handler from name.
// Detaching an unknown name or handler does nothing.
func (m *Manager) Detach(name string, handler Handler) {
	if checkHandler(handler) != nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	q, ok := m.events[name]
	if !ok {
		return
	}

	removed := q.Remove(handler)
	if q.Count() == 0 {
		delete(m.events, name)
	}

	if removed > 0 {
		m.logger.Debug("detached %d handler entries from %q", removed, name)
	}
}

// Trigger creates an event named name, sets its target and dispatches it.
//
// The event comes from the installed factory or default event template, or
// is a new BaseEvent. It is returned so the caller can inspect changes made
// by handlers. A handler error ends the dispatch and is returned as-is.
func (m *Manager) Trigger(ctx context.Context, name string, target any) (Event, error) {
	e := m.createEvent(name)
	e.SetTarget(target)
	return e, m.dispatch(ctx, e)
}

// TriggerEvent dispatches a caller-constructed event.
// The same instance is passed to every handler.
func (m *Manager) TriggerEvent(ctx context.Context, e Event) error {
	if e == nil {
		return ErrNilEvent
	}
	return m.dispatch(ctx, e)
}

// Handlers returns the handlers for name in dispatch order.
// The result is a snapshot; it is empty if nothing is attached.
func (m *Manager) Handlers(name string) []Handler {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.events[name]
	if !ok {
		return []Handler{}
	}
	return q.Export()
}

// Entries returns the handlers for name with their priorities.
func (m *Manager) Entries(name string) []queue.Entry[Handler] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.events[name]
	if !ok {
		return nil
	}
	return q.Entries()
}

// Has reports whether any handler is attached to name.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.events[name]
	return ok
}

// Contains reports whether handler is attached to name.
func (m *Manager) Contains(name string, handler Handler) bool {
	if checkHandler(handler) != nil {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.events[name]
	return ok && q.Contains(handler)
}

// Count returns the number of handler entries attached to name.
func (m *Manager) Count(name string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	q, ok := m.events[name]
	if !ok {
		return 0
	}
	return q.Count()
}

// Names returns the event names with attached handlers, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.events))
	for name := range m.events {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Clear detaches every handler from every event.
func (m *Manager) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.events = make(map[string]*queue.Queue[Handler])
}

// Stats returns manager statistics.
func (m *Manager) Stats() Stats {
	m.mu.RLock()
	stats := Stats{Events: len(m.events)}
	for _, q := range m.events {
		stats.Handlers += q.Count()
	}
	m.mu.RUnlock()

	stats.Dispatch = m.dispatcher.Stats()
	return stats
}

// createEvent builds the event for a Trigger call.
// A factory that returns nil gets a BaseEvent instead.
func (m *Manager) createEvent(name string) Event {
	m.mu.RLock()
	factory := m.factory
	m.mu.RUnlock()

	if factory != nil {
		if e := factory(name); e != nil {
			return e
		}
	}
	return genericFactory(name)
}

// dispatch runs the handlers attached to e's name.
func (m *Manager) dispatch(ctx context.Context, e Event) error {
	handlers := m.Handlers(e.Name())
	if len(handlers) == 0 {
		return nil
	}

	res := m.dispatcher.Dispatch(ctx, e, handlers)

	switch {
	case res.Err != nil:
		m.logger.WithError(res.Err).Debug("handler %d of %d for %q failed", res.Invoked, len(handlers), e.Name())
	case res.Stopped:
		m.logger.Debug("propagation of %q stopped after %d of %d handlers", e.Name(), res.Invoked, len(handlers))
	}

	return res.Err
}
