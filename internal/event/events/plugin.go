package events

// Plugin lifecycle event names.
const (
	// PluginLoaded is triggered after a plugin script has run successfully.
	PluginLoaded = "plugin.loaded"

	// PluginUnloaded is triggered after a plugin's handlers were detached.
	PluginUnloaded = "plugin.unloaded"

	// PluginReloaded is triggered after a plugin was unloaded and loaded again.
	PluginReloaded = "plugin.reloaded"

	// PluginError is triggered when loading or reloading a plugin fails.
	PluginError = "plugin.error"
)

// PluginInfo is the target of plugin lifecycle events.
type PluginInfo struct {
	// Name is the unique plugin identifier.
	Name string

	// Path is the path to the plugin script.
	Path string

	// Handlers is the number of handlers the plugin has attached.
	Handlers int
}

// PluginFailure is the target of PluginError events.
type PluginFailure struct {
	// Name is the plugin identifier.
	Name string

	// Path is the path to the plugin script.
	Path string

	// Err is the load error.
	Err error
}
