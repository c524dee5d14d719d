package app

import (
	"context"

	"github.com/dshills/hookmgr/internal/event"
	"github.com/dshills/hookmgr/internal/logging"
	"github.com/dshills/hookmgr/internal/plugin"
)

// bootstrapper handles component initialization with proper cleanup on failure.
type bootstrapper struct {
	app       *Application
	opts      Options
	initOrder []string
}

// newBootstrapper creates a new bootstrapper for the application.
func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{
		app:       app,
		opts:      opts,
		initOrder: make([]string, 0, 4),
	}
}

// bootstrap initializes all components in dependency order.
// On failure, it cleans up already-initialized components.
func (b *bootstrapper) bootstrap(ctx context.Context) error {
	steps := []func(context.Context) error{
		b.initLogger,
		b.initManager,
		b.initPlugins,
		b.initWatcher,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			b.cleanup()
			return err
		}
	}
	return nil
}

func (b *bootstrapper) initLogger(context.Context) error {
	lc := b.app.config.Logging()
	if b.opts.LogOutput != nil {
		lc.Output = b.opts.LogOutput
	}
	b.app.logger = logging.New(lc)
	b.initOrder = append(b.initOrder, "logger")
	return nil
}

func (b *bootstrapper) initManager(context.Context) error {
	b.app.manager = event.NewManager(event.WithLogger(b.app.logger))
	b.initOrder = append(b.initOrder, "manager")
	return nil
}

// initPlugins loads every enabled plugin in configuration order.
func (b *bootstrapper) initPlugins(ctx context.Context) error {
	b.app.host = plugin.NewHost(b.app.manager, plugin.WithLogger(b.app.logger))
	b.initOrder = append(b.initOrder, "plugins")

	for _, pc := range b.app.config.EnabledPlugins() {
		if err := b.app.host.Load(ctx, pc.Name, pc.Path); err != nil {
			return &InitError{Component: "plugin " + pc.Name, Err: err}
		}
	}
	return nil
}

// initWatcher watches loaded plugin files when the config enables it.
func (b *bootstrapper) initWatcher(context.Context) error {
	if !b.app.config.Watch {
		return nil
	}

	w, err := plugin.NewWatcher(plugin.WithWatcherLogger(b.app.logger))
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	b.app.watcher = w
	b.initOrder = append(b.initOrder, "watcher")

	for name, path := range b.app.host.Paths() {
		if err := w.Watch(name, path); err != nil {
			return &InitError{Component: "watcher", Err: err}
		}
	}
	return nil
}

// cleanup releases initialized components in reverse order.
func (b *bootstrapper) cleanup() {
	for i := len(b.initOrder) - 1; i >= 0; i-- {
		b.cleanupComponent(b.initOrder[i])
	}
}

// cleanupComponent cleans up a single component.
func (b *bootstrapper) cleanupComponent(component string) {
	switch component {
	case "watcher":
		if b.app.watcher != nil {
			_ = b.app.watcher.Close()
			b.app.watcher = nil
		}
	case "plugins":
		if b.app.host != nil {
			_ = b.app.host.Close()
			b.app.host = nil
		}
	case "manager":
		if b.app.manager != nil {
			b.app.manager.Clear()
			b.app.manager = nil
		}
	case "logger":
		b.app.logger = nil
	}
}
