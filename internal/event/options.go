package event

import "github.com/dshills/hookmgr/internal/logging"

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

// managerConfig contains configuration for the event manager.
type managerConfig struct {
	logger  *logging.Logger
	factory Factory
}

// defaultManagerConfig returns the default configuration.
func defaultManagerConfig() managerConfig {
	return managerConfig{
		logger: logging.Nop(),
	}
}

// WithLogger sets the logger used by the manager.
func WithLogger(l *logging.Logger) ManagerOption {
	return func(c *managerConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithEventFactory sets the constructor used by Trigger.
func WithEventFactory(f Factory) ManagerOption {
	return func(c *managerConfig) {
		c.factory = f
	}
}

// WithDefaultEvent installs a template cloned by Trigger.
func WithDefaultEvent(t Template) ManagerOption {
	return func(c *managerConfig) {
		if t != nil {
			c.factory = t.Clone
		}
	}
}

// AttachOption configures a single Attach call.
type AttachOption func(*attachConfig)

type attachConfig struct {
	priority Priority
}

// WithPriority sets the handler priority. Higher priorities run first.
func WithPriority(p Priority) AttachOption {
	return func(c *attachConfig) {
		c.priority = p
	}
}
