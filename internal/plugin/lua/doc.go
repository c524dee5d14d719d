// Package lua runs plugin scripts on gopher-lua and connects them to an
// event.Manager.
//
// # State
//
// State is a Lua runtime limited to the base, table, string and math
// libraries. Functions that load code (dofile, load, require and friends)
// are removed.
//
//	state := lua.NewState(lua.WithLogger(logger))
//	defer state.Close()
//
//	if err := state.DoFile("plugin.lua"); err != nil {
//	    return err
//	}
//
// # Event module
//
// EventModule installs the events global:
//
//	mod := lua.NewEventModule(mgr, logger)
//	if err := mod.Register(state); err != nil {
//	    return err
//	}
//	defer mod.Cleanup()
//
// Scripts attach handlers with events.attach(name_or_names, fn, priority),
// remove them with events.detach(name, fn) and fire events with
// events.trigger(name, target). Errors raised by a Lua handler are
// returned to whoever triggered the event; errors from Go handlers are
// raised as Lua errors inside the triggering script.
//
// # Bridge
//
// Bridge converts event targets between Go values and Lua values.
package lua
