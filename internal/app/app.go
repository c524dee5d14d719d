// Package app wires configuration, logging, the event manager and the
// plugin host into one application.
package app

import (
	"context"
	"io"
	"sync"

	"github.com/hashicorp/go-multierror"

	"github.com/dshills/hookmgr/internal/config"
	"github.com/dshills/hookmgr/internal/event"
	"github.com/dshills/hookmgr/internal/logging"
	"github.com/dshills/hookmgr/internal/plugin"
)

// Options configures New.
type Options struct {
	// Config is the loaded configuration. Defaults to config.Default().
	Config *config.Config

	// LogOutput receives log output. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application owns the event manager and the loaded plugins.
type Application struct {
	mu     sync.Mutex
	closed bool

	config  *config.Config
	logger  *logging.Logger
	manager *event.Manager
	host    *plugin.Host
	watcher *plugin.Watcher
}

// New builds the application and loads every enabled plugin.
// If any step fails, components created so far are closed again.
func New(ctx context.Context, opts Options) (*Application, error) {
	if opts.Config == nil {
		opts.Config = config.Default()
	}

	a := &Application{config: opts.Config}
	if err := newBootstrapper(a, opts).bootstrap(ctx); err != nil {
		return nil, err
	}
	return a, nil
}

// Config returns the application configuration.
func (a *Application) Config() *config.Config {
	return a.config
}

// Logger returns the application logger.
func (a *Application) Logger() *logging.Logger {
	return a.logger
}

// Manager returns the event manager.
func (a *Application) Manager() *event.Manager {
	return a.manager
}

// Host returns the plugin host.
func (a *Application) Host() *plugin.Host {
	return a.host
}

// Watching reports whether plugin files are watched for changes.
func (a *Application) Watching() bool {
	return a.watcher != nil
}

// Changes returns the names of plugins whose files changed.
// It returns nil when watching is disabled; receiving from it blocks.
func (a *Application) Changes() <-chan string {
	if a.watcher == nil {
		return nil
	}
	return a.watcher.Changes()
}

// Trigger triggers name on the event manager.
func (a *Application) Trigger(ctx context.Context, name string, target any) (event.Event, error) {
	if a.isClosed() {
		return nil, ErrClosed
	}
	return a.manager.Trigger(ctx, name, target)
}

// ReloadPlugin reloads plugin name. Call it from the goroutine that
// triggers events.
func (a *Application) ReloadPlugin(ctx context.Context, name string) error {
	if a.isClosed() {
		return ErrClosed
	}
	return a.host.Reload(ctx, name)
}

// Close stops watching, unloads plugins and detaches every handler.
func (a *Application) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	a.mu.Unlock()

	var result *multierror.Error
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if err := a.host.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	a.manager.Clear()

	a.logger.Debug("application closed")
	return result.ErrorOrNil()
}

func (a *Application) isClosed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.closed
}
