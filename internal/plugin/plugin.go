package plugin

import (
	"fmt"
	"sync"

	"github.com/dshills/hookmgr/internal/event"
	"github.com/dshills/hookmgr/internal/logging"
	plua "github.com/dshills/hookmgr/internal/plugin/lua"
)

// Optional global functions a script may define.
const (
	activateFunc   = "activate"
	deactivateFunc = "deactivate"
)

// Plugin is one Lua script with its own state and event module.
type Plugin struct {
	mu sync.RWMutex

	name string
	path string

	state  *plua.State
	module *plua.EventModule

	status State
	err    error
}

// Info describes a plugin.
type Info struct {
	Name     string
	Path     string
	State    State
	Handlers int
	Err      error
}

func newPlugin(name, path string) *Plugin {
	return &Plugin{name: name, path: path, status: StateUnloaded}
}

// Name returns the plugin name.
func (p *Plugin) Name() string {
	return p.name
}

// Path returns the script path.
func (p *Plugin) Path() string {
	return p.path
}

// State returns the current plugin state.
func (p *Plugin) State() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.status
}

// Error returns the last load error.
func (p *Plugin) Error() error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.err
}

// Info returns a snapshot of the plugin.
func (p *Plugin) Info() Info {
	p.mu.RLock()
	defer p.mu.RUnlock()

	info := Info{Name: p.name, Path: p.path, State: p.status, Err: p.err}
	if p.module != nil {
		info.Handlers = p.module.Handlers()
	}
	return info
}

// load creates the Lua state, registers the events module and runs the
// script, then calls activate() if the script defines it. On failure
// every handler the script attached is detached again.
func (p *Plugin) load(mgr *event.Manager, logger *logging.Logger) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	state := plua.NewState(plua.WithLogger(logger))
	module := plua.NewEventModule(mgr, logger)

	err := module.Register(state)
	if err == nil {
		err = state.DoFile(p.path)
	}
	if err == nil && state.HasFunction(activateFunc) {
		if _, callErr := state.Call(activateFunc); callErr != nil {
			err = fmt.Errorf("%s: %w", activateFunc, callErr)
		}
	}

	if err != nil {
		module.Cleanup()
		_ = state.Close()
		p.status = StateError
		p.err = err
		return err
	}

	p.state = state
	p.module = module
	p.status = StateLoaded
	p.err = nil
	return nil
}

// unload calls deactivate() if defined, detaches the plugin's handlers
// and closes its state. The deactivate error is returned after cleanup.
func (p *Plugin) unload() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.status != StateLoaded {
		p.status = StateUnloaded
		return nil
	}

	var err error
	if p.state.HasFunction(deactivateFunc) {
		if _, callErr := p.state.Call(deactivateFunc); callErr != nil {
			err = fmt.Errorf("%s: %w", deactivateFunc, callErr)
		}
	}

	p.module.Cleanup()
	_ = p.state.Close()

	p.state = nil
	p.module = nil
	p.status = StateUnloaded
	return err
}
