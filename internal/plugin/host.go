package plugin

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/dshills/hookmgr/internal/event"
	"github.com/dshills/hookmgr/internal/event/events"
	"github.com/dshills/hookmgr/internal/logging"
)

// Host loads Lua plugins against a shared event.Manager.
//
// Each plugin gets its own Lua state. Host triggers the lifecycle events
// in package events on the manager after every load, unload, reload and
// load failure. Errors returned by lifecycle handlers are logged and do
// not undo the operation.
//
// Host methods are safe for concurrent use, but a plugin's Lua handlers
// run on the goroutine that triggers them; see the lua package.
type Host struct {
	mu      sync.Mutex
	plugins map[string]*Plugin
	order   []string
	closed  bool

	manager *event.Manager
	logger  *logging.Logger
}

// HostOption configures a Host.
type HostOption func(*Host)

// WithLogger sets the host logger.
func WithLogger(logger *logging.Logger) HostOption {
	return func(h *Host) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewHost creates a host that attaches plugin handlers to manager.
func NewHost(manager *event.Manager, opts ...HostOption) *Host {
	h := &Host{
		plugins: make(map[string]*Plugin),
		manager: manager,
		logger:  logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.logger = h.logger.WithComponent("plugin")
	return h
}

// Manager returns the event manager plugins attach to.
func (h *Host) Manager() *event.Manager {
	return h.manager
}

// Load runs the script at path as plugin name.
func (h *Host) Load(ctx context.Context, name, path string) error {
	if name == "" || path == "" {
		return fmt.Errorf("%w: name and path are required", ErrInvalidPlugin)
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHostClosed
	}
	if _, ok := h.plugins[name]; ok {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, name)
	}
	h.mu.Unlock()

	p, err := h.loadPlugin(ctx, name, path)
	if err != nil {
		return err
	}

	if err := h.add(p); err != nil {
		_ = p.unload()
		return err
	}

	h.logger.Info("loaded plugin %s from %s", name, path)
	h.notify(ctx, events.PluginLoaded, h.info(p))
	return nil
}

// Unload detaches the handlers of plugin name and closes its state.
// An error from the script's deactivate function is returned after the
// plugin has been removed.
func (h *Host) Unload(ctx context.Context, name string) error {
	p, err := h.remove(name)
	if err != nil {
		return err
	}

	info := h.info(p)
	err = p.unload()
	if err != nil {
		h.logger.WithError(err).Warn("plugin %s deactivate failed", name)
	} else {
		h.logger.Info("unloaded plugin %s", name)
	}

	h.notify(ctx, events.PluginUnloaded, info)
	return err
}

// Reload unloads plugin name and loads its script again.
// If the script no longer loads, the plugin stays unloaded.
func (h *Host) Reload(ctx context.Context, name string) error {
	old, err := h.remove(name)
	if err != nil {
		return err
	}

	if err := old.unload(); err != nil {
		h.logger.WithError(err).Warn("plugin %s deactivate failed", name)
	}

	p, err := h.loadPlugin(ctx, name, old.Path())
	if err != nil {
		return err
	}
	if err := h.add(p); err != nil {
		_ = p.unload()
		return err
	}

	h.logger.Info("reloaded plugin %s", name)
	h.notify(ctx, events.PluginReloaded, h.info(p))
	return nil
}

// Get returns the plugin with the given name.
func (h *Host) Get(name string) (*Plugin, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	p, ok := h.plugins[name]
	return p, ok
}

// Plugins returns information about loaded plugins in load order.
func (h *Host) Plugins() []Info {
	h.mu.Lock()
	plugins := make([]*Plugin, 0, len(h.order))
	for _, name := range h.order {
		plugins = append(plugins, h.plugins[name])
	}
	h.mu.Unlock()

	infos := make([]Info, 0, len(plugins))
	for _, p := range plugins {
		infos = append(infos, p.Info())
	}
	return infos
}

// Paths returns the script path of every loaded plugin, keyed by name.
func (h *Host) Paths() map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()

	paths := make(map[string]string, len(h.plugins))
	for name, p := range h.plugins {
		paths[name] = p.Path()
	}
	return paths
}

// Count returns the number of loaded plugins.
func (h *Host) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.plugins)
}

// Close unloads every plugin in reverse load order. Lifecycle events are
// not triggered. All deactivate errors are returned together.
func (h *Host) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	order := slices.Clone(h.order)
	plugins := h.plugins
	h.plugins = make(map[string]*Plugin)
	h.order = nil
	h.mu.Unlock()

	var result *multierror.Error
	for _, name := range slices.Backward(order) {
		if err := plugins[name].unload(); err != nil {
			result = multierror.Append(result, fmt.Errorf("plugin %s: %w", name, err))
		}
	}
	return result.ErrorOrNil()
}

// loadPlugin loads a new Plugin and reports failures as PluginError events.
func (h *Host) loadPlugin(ctx context.Context, name, path string) (*Plugin, error) {
	p := newPlugin(name, path)
	logger := h.logger.WithField("plugin", name)

	if err := p.load(h.manager, logger); err != nil {
		loadErr := &LoadError{Name: name, Path: path, Err: err}
		logger.WithError(err).Error("failed to load plugin from %s", path)
		h.notify(ctx, events.PluginError, events.PluginFailure{Name: name, Path: path, Err: loadErr})
		return nil, loadErr
	}
	return p, nil
}

// add registers a loaded plugin.
func (h *Host) add(p *Plugin) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHostClosed
	}
	if _, ok := h.plugins[p.Name()]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, p.Name())
	}
	h.plugins[p.Name()] = p
	h.order = append(h.order, p.Name())
	return nil
}

// remove unregisters a plugin without unloading it.
func (h *Host) remove(name string) (*Plugin, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}
	p, ok := h.plugins[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPluginNotFound, name)
	}
	delete(h.plugins, name)
	h.order = slices.DeleteFunc(h.order, func(n string) bool { return n == name })
	return p, nil
}

func (h *Host) info(p *Plugin) events.PluginInfo {
	i := p.Info()
	return events.PluginInfo{Name: i.Name, Path: i.Path, Handlers: i.Handlers}
}

// notify triggers a lifecycle event.
func (h *Host) notify(ctx context.Context, name string, target any) {
	if _, err := h.manager.Trigger(ctx, name, target); err != nil {
		h.logger.WithError(err).Warn("%s handler failed", name)
	}
}
