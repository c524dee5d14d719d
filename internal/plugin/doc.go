// Package plugin loads Lua scripts that attach handlers to an event.Manager.
//
// A plugin is a single Lua file. When it is loaded the script runs once in
// a fresh, sandboxed Lua state with the events module installed (see
// package lua), and usually attaches handlers:
//
//	-- audit.lua
//	local function audit(e)
//	    print("saw " .. e:name())
//	end
//
//	events.attach({"user.created", "user.deleted"}, audit, events.PRIORITY_LOW)
//
//	function deactivate()
//	    print("audit unloading")
//	end
//
// A script may define activate() and deactivate() globals. activate runs
// after the script body; deactivate runs before the plugin's handlers are
// detached.
//
// # Host
//
//	host := plugin.NewHost(mgr, plugin.WithLogger(logger))
//	defer host.Close()
//
//	if err := host.Load(ctx, "audit", "plugins/audit.lua"); err != nil {
//	    return err
//	}
//
// The host triggers events.PluginLoaded, PluginUnloaded, PluginReloaded
// and PluginError on the manager, so Go code and other plugins can react
// to plugin lifecycle changes.
//
// # Watcher
//
// Watcher reports plugins whose files changed. The goroutine that owns the
// host reloads them:
//
//	for name := range w.Changes() {
//	    if err := host.Reload(ctx, name); err != nil {
//	        logger.WithError(err).Warn("reload %s", name)
//	    }
//	}
package plugin
