package lua

import (
	"context"
	"slices"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hookmgr/internal/event"
	"github.com/dshills/hookmgr/internal/logging"
)

// ModuleName is the global under which the event module is registered.
const ModuleName = "events"

// eventTypeName names the metatable of event userdata.
const eventTypeName = "hookmgr.event"

// attachment records one name/function pair attached by a script.
type attachment struct {
	name string
	fn   *lua.LFunction
}

// EventModule exposes an event.Manager to Lua scripts.
//
// Scripts use the global events table:
//
//	events.attach("user.created", function(e) ... end, 10)
//	events.attach({"a", "b"}, handler)
//	events.detach("a", handler)
//	local e = events.trigger("user.created", {id = 1})
//	if events.has("a") then ... end
//
// Handlers receive an event value with the methods name(), target(),
// set_target(v), stop() and stopped(). A Lua function always maps to the
// same Go handler, so detach works with the function passed to attach.
type EventModule struct {
	manager *event.Manager
	logger  *logging.Logger

	state  *State
	bridge *Bridge

	mu       sync.Mutex
	handlers map[*lua.LFunction]event.Handler
	attached []attachment
	closed   bool
}

// NewEventModule creates an event module bound to manager.
func NewEventModule(manager *event.Manager, logger *logging.Logger) *EventModule {
	if logger == nil {
		logger = logging.Nop()
	}
	return &EventModule{
		manager:  manager,
		logger:   logger,
		handlers: make(map[*lua.LFunction]event.Handler),
	}
}

// Register installs the events global and the event metatable into s.
func (m *EventModule) Register(s *State) error {
	if s.IsClosed() {
		return ErrStateClosed
	}

	m.mu.Lock()
	m.state = s
	m.bridge = NewBridge(s.L)
	m.mu.Unlock()

	L := s.L

	mt := L.NewTypeMetatable(eventTypeName)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"name":       eventName,
		"target":     m.eventTarget,
		"set_target": m.eventSetTarget,
		"stop":       eventStop,
		"stopped":    eventStopped,
		"id":         eventID,
	}))
	L.SetField(mt, "__tostring", L.NewFunction(eventString))

	mod := L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"attach":  m.attach,
		"detach":  m.detach,
		"trigger": m.trigger,
		"has":     m.has,
		"count":   m.count,
	})
	L.SetField(mod, "PRIORITY_CRITICAL", lua.LNumber(event.PriorityCritical))
	L.SetField(mod, "PRIORITY_HIGH", lua.LNumber(event.PriorityHigh))
	L.SetField(mod, "PRIORITY_NORMAL", lua.LNumber(event.PriorityNormal))
	L.SetField(mod, "PRIORITY_LOW", lua.LNumber(event.PriorityLow))

	s.SetGlobal(ModuleName, mod)
	return nil
}

// Handlers returns the number of name/handler pairs currently attached.
func (m *EventModule) Handlers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.attached)
}

// Cleanup detaches every handler this module attached and disables the
// module. Calling it again does nothing.
func (m *EventModule) Cleanup() {
	m.mu.Lock()
	attached := m.attached
	handlers := m.handlers
	m.attached = nil
	m.handlers = make(map[*lua.LFunction]event.Handler)
	m.closed = true
	m.mu.Unlock()

	for _, a := range attached {
		m.manager.Detach(a.name, handlers[a.fn])
	}
	if len(attached) > 0 {
		m.logger.Debug("detached %d lua handlers", len(attached))
	}
}

// handlerFor returns the Go handler wrapping fn, creating it once.
func (m *EventModule) handlerFor(fn *lua.LFunction) event.Handler {
	if h, ok := m.handlers[fn]; ok {
		return h
	}
	h := event.Func(func(ctx context.Context, e event.Event) error {
		return m.call(ctx, fn, e)
	})
	m.handlers[fn] = h
	return h
}

// call runs a Lua handler with e.
func (m *EventModule) call(ctx context.Context, fn *lua.LFunction, e event.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.state.IsClosed() {
		return ErrStateClosed
	}

	L := m.state.L
	return L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, m.pushEvent(L, e))
}

// pushEvent wraps e as event userdata.
func (m *EventModule) pushEvent(L *lua.LState, e event.Event) *lua.LUserData {
	ud := L.NewUserData()
	ud.Value = e
	L.SetMetatable(ud, L.GetTypeMetatable(eventTypeName))
	return ud
}

// checkOpen raises a Lua error once the module has been cleaned up.
func (m *EventModule) checkOpen(L *lua.LState) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		L.RaiseError("%s", ErrModuleClosed.Error())
	}
}

// parseNames converts the first argument to event names.
// Sequence tables are lists of names; other tables are rejected.
func (m *EventModule) parseNames(L *lua.LState) event.Names {
	arg := L.Get(1)

	var raw any
	if t, ok := arg.(*lua.LTable); ok && isSequence(t) {
		list := make([]any, 0, t.Len())
		for i := 1; i <= t.Len(); i++ {
			list = append(list, m.bridge.ToGoValue(t.RawGetInt(i)))
		}
		raw = list
	} else {
		raw = m.bridge.ToGoValue(arg)
	}

	names, err := event.ParseNames(raw)
	if err != nil {
		L.ArgError(1, err.Error())
	}
	return names
}

// isSequence reports whether t is empty or has only the keys 1..n.
func isSequence(t *lua.LTable) bool {
	if k, _ := t.Next(lua.LNil); k == lua.LNil {
		return true
	}
	_, ok := sequenceLen(t)
	return ok
}

// attach(nameOrNames, fn [, priority])
func (m *EventModule) attach(L *lua.LState) int {
	m.checkOpen(L)
	names := m.parseNames(L)
	fn := L.CheckFunction(2)
	priority := L.OptInt(3, int(event.PriorityNormal))

	m.mu.Lock()
	h := m.handlerFor(fn)
	m.mu.Unlock()

	if err := m.manager.Attach(names, h, event.WithPriority(event.Priority(priority))); err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}

	m.mu.Lock()
	for _, name := range names.List() {
		m.attached = append(m.attached, attachment{name: name, fn: fn})
	}
	m.mu.Unlock()
	return 0
}

// detach(name, fn)
func (m *EventModule) detach(L *lua.LState) int {
	m.checkOpen(L)
	name := L.CheckString(1)
	fn := L.CheckFunction(2)

	m.mu.Lock()
	h, ok := m.handlers[fn]
	if ok {
		m.attached = slices.DeleteFunc(m.attached, func(a attachment) bool {
			return a.name == name && a.fn == fn
		})
	}
	m.mu.Unlock()

	if ok {
		m.manager.Detach(name, h)
	}
	return 0
}

// trigger(name [, target]) -> event
func (m *EventModule) trigger(L *lua.LState) int {
	m.checkOpen(L)
	name := L.CheckString(1)
	target := m.bridge.ToGoValue(L.Get(2))

	ctx := L.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	e, err := m.manager.Trigger(ctx, name, target)
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(m.pushEvent(L, e))
	return 1
}

// has(name) -> bool
func (m *EventModule) has(L *lua.LState) int {
	L.Push(lua.LBool(m.manager.Has(L.CheckString(1))))
	return 1
}

// count(name) -> number
func (m *EventModule) count(L *lua.LState) int {
	L.Push(lua.LNumber(m.manager.Count(L.CheckString(1))))
	return 1
}

// checkEvent returns the event in argument 1.
func checkEvent(L *lua.LState) event.Event {
	ud := L.CheckUserData(1)
	e, ok := ud.Value.(event.Event)
	if !ok {
		L.ArgError(1, "event expected")
		return nil
	}
	return e
}

func eventName(L *lua.LState) int {
	L.Push(lua.LString(checkEvent(L).Name()))
	return 1
}

func (m *EventModule) eventTarget(L *lua.LState) int {
	L.Push(m.bridge.ToLuaValue(checkEvent(L).Target()))
	return 1
}

func (m *EventModule) eventSetTarget(L *lua.LState) int {
	e := checkEvent(L)
	e.SetTarget(m.bridge.ToGoValue(L.Get(2)))
	return 0
}

func eventStop(L *lua.LState) int {
	checkEvent(L).StopPropagation()
	return 0
}

func eventStopped(L *lua.LState) int {
	L.Push(lua.LBool(checkEvent(L).IsPropagationStopped()))
	return 1
}

// eventID returns the metadata ID, or nil for events without metadata.
func eventID(L *lua.LState) int {
	if mp, ok := checkEvent(L).(event.MetadataProvider); ok {
		L.Push(lua.LString(mp.Metadata().ID))
		return 1
	}
	L.Push(lua.LNil)
	return 1
}

func eventString(L *lua.LState) int {
	L.Push(lua.LString("event(" + checkEvent(L).Name() + ")"))
	return 1
}
