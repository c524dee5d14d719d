package plugin

import (
	"errors"
	"fmt"
)

// Plugin system errors.
var (
	// ErrPluginNotFound is returned when a plugin name is not loaded.
	ErrPluginNotFound = errors.New("plugin not found")

	// ErrAlreadyLoaded is returned when loading a name that is already loaded.
	ErrAlreadyLoaded = errors.New("plugin is already loaded")

	// ErrHostClosed is returned when using a closed host.
	ErrHostClosed = errors.New("plugin host is closed")

	// ErrInvalidPlugin is returned for an empty plugin name or path.
	ErrInvalidPlugin = errors.New("invalid plugin")
)

// LoadError is returned when a plugin script fails to load.
type LoadError struct {
	Name string
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("loading plugin %q from %s: %v", e.Name, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *LoadError) Unwrap() error {
	return e.Err
}
