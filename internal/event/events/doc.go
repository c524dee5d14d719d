// Package events names the events hookmgr itself triggers and defines the
// targets they carry.
//
// Applications attach to these names like any other event:
//
//	mgr.On(events.PluginLoaded, event.Listener(func(e event.Event) {
//	    info := e.Target().(events.PluginInfo)
//	    log.Printf("plugin %s loaded from %s", info.Name, info.Path)
//	}))
//
// Names follow a dot-separated <module>.<action> convention.
package events
