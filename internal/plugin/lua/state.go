package lua

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/hookmgr/internal/logging"
)

// Default limits for Lua state.
const (
	DefaultCallStackSize = 256
	DefaultRegistrySize  = 1024 * 20
)

// State wraps gopher-lua with a restricted standard library.
//
// gopher-lua's LState is not goroutine-safe. DoFile, DoString and Call
// serialize Go callers with a mutex, but Lua functions attached as event
// handlers run on whichever goroutine triggers the event. Trigger events
// that reach a plugin from the goroutine that owns its state.
type State struct {
	L *lua.LState

	mu     sync.Mutex
	closed atomic.Bool

	callStackSize int
	registrySize  int
	logger        *logging.Logger
}

// StateOption configures a State.
type StateOption func(*State)

// WithCallStackSize sets the maximum Lua call depth.
func WithCallStackSize(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.callStackSize = n
		}
	}
}

// WithRegistrySize sets the initial registry size.
func WithRegistrySize(n int) StateOption {
	return func(s *State) {
		if n > 0 {
			s.registrySize = n
		}
	}
}

// WithLogger routes the Lua print function to logger at info level.
func WithLogger(logger *logging.Logger) StateOption {
	return func(s *State) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewState creates a new sandboxed Lua state.
func NewState(opts ...StateOption) *State {
	s := &State{
		callStackSize: DefaultCallStackSize,
		registrySize:  DefaultRegistrySize,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.L = lua.NewState(lua.Options{
		CallStackSize:       s.callStackSize,
		RegistrySize:        s.registrySize,
		SkipOpenLibs:        true,
		IncludeGoStackTrace: false,
	})
	openSafeLibraries(s.L)
	if s.logger != nil {
		s.L.SetGlobal("print", s.L.NewFunction(s.print))
	}
	return s
}

// openSafeLibraries opens only safe Lua standard libraries.
func openSafeLibraries(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	// Base functions that load code from disk or strings.
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
}

// print joins its arguments with tabs, like the stock print.
func (s *State) print(L *lua.LState) int {
	n := L.GetTop()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		parts = append(parts, L.ToStringMeta(L.Get(i)).String())
	}
	s.logger.Info("%s", strings.Join(parts, "\t"))
	return 0
}

// DoFile executes a Lua file.
func (s *State) DoFile(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoFile(path)
	})
}

// DoString executes a Lua string.
func (s *State) DoString(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrStateClosed
	}
	return s.doWithRecovery(func() error {
		return s.L.DoString(code)
	})
}

// doWithRecovery executes a function with panic recovery.
func (s *State) doWithRecovery(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("lua panic: %v", r)
		}
	}()
	return fn()
}

// HasFunction reports whether the global name holds a function.
func (s *State) HasFunction(name string) bool {
	return s.GetGlobal(name).Type() == lua.LTFunction
}

// Call calls a global Lua function with the given arguments.
// Returns an empty slice (not nil) if the function returns no values.
func (s *State) Call(fn string, args ...lua.LValue) ([]lua.LValue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return nil, ErrStateClosed
	}

	fnVal := s.L.GetGlobal(fn)
	if fnVal.Type() != lua.LTFunction {
		return nil, fmt.Errorf("%w: %q (got %s)", ErrNotFunction, fn, fnVal.Type())
	}

	stackTop := s.L.GetTop()
	s.L.Push(fnVal)
	for _, arg := range args {
		s.L.Push(arg)
	}

	err := s.doWithRecovery(func() error {
		return s.L.PCall(len(args), lua.MultRet, nil)
	})
	if err != nil {
		return nil, err
	}

	// Collect only the values added by the call.
	nRet := s.L.GetTop() - stackTop
	if nRet <= 0 {
		return []lua.LValue{}, nil
	}
	results := make([]lua.LValue, nRet)
	for i := range nRet {
		results[i] = s.L.Get(stackTop + i + 1)
	}
	s.L.Pop(nRet)
	return results, nil
}

// GetGlobal returns a global variable value.
func (s *State) GetGlobal(name string) lua.LValue {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return lua.LNil
	}
	return s.L.GetGlobal(name)
}

// SetGlobal sets a global variable.
func (s *State) SetGlobal(name string, value lua.LValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return
	}
	s.L.SetGlobal(name, value)
}

// LuaState returns the underlying gopher-lua state.
// Direct access bypasses the mutex; the caller handles synchronization.
func (s *State) LuaState() *lua.LState {
	return s.L
}

// IsClosed returns true if the state has been closed.
func (s *State) IsClosed() bool {
	return s.closed.Load()
}

// Close releases all resources associated with the Lua state.
// After Close is called, all other methods will return ErrStateClosed.
func (s *State) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Swap(true) {
		return nil
	}
	s.L.Close()
	return nil
}
