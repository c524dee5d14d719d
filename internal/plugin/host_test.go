package plugin

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/hookmgr/internal/event"
	"github.com/dshills/hookmgr/internal/event/events"
)

func writeScript(t *testing.T, dir, name, code string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(code), 0o600))
	return path
}

// recordLifecycle attaches a listener to every plugin lifecycle event.
func recordLifecycle(t *testing.T, mgr *event.Manager) *[]string {
	t.Helper()
	var seen []string
	h := event.Listener(func(e event.Event) {
		seen = append(seen, e.Name())
	})
	require.NoError(t, mgr.Attach(event.Many(
		events.PluginLoaded, events.PluginUnloaded, events.PluginReloaded, events.PluginError,
	), h))
	return &seen
}

func TestHost_LoadUnload(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "audit.lua", `
		events.attach({"user.created", "user.deleted"}, function(e) e:set_target("audited") end)
	`)

	mgr := event.NewManager()
	seen := recordLifecycle(t, mgr)
	host := NewHost(mgr)
	defer host.Close()

	ctx := context.Background()
	require.NoError(t, host.Load(ctx, "audit", path))

	e, err := mgr.Trigger(ctx, "user.created", nil)
	require.NoError(t, err)
	assert.Equal(t, "audited", e.Target())

	infos := host.Plugins()
	require.Len(t, infos, 1)
	assert.Equal(t, Info{Name: "audit", Path: path, State: StateLoaded, Handlers: 2}, infos[0])
	assert.Equal(t, map[string]string{"audit": path}, host.Paths())

	p, ok := host.Get("audit")
	require.True(t, ok)
	assert.Equal(t, StateLoaded, p.State())
	assert.NoError(t, p.Error())

	require.NoError(t, host.Unload(ctx, "audit"))
	assert.False(t, mgr.Has("user.created"))
	assert.False(t, mgr.Has("user.deleted"))
	assert.Equal(t, StateUnloaded, p.State())
	assert.Equal(t, 0, host.Count())

	assert.Equal(t, []string{events.PluginLoaded, events.PluginUnloaded}, *seen)
}

func TestHost_LoadedEventTarget(t *testing.T) {
	path := writeScript(t, t.TempDir(), "p.lua", `events.attach("x", function() end)`)

	mgr := event.NewManager()
	var got any
	require.NoError(t, mgr.On(events.PluginLoaded, event.Listener(func(e event.Event) {
		got = e.Target()
	})))

	host := NewHost(mgr)
	defer host.Close()
	require.NoError(t, host.Load(context.Background(), "p", path))

	assert.Equal(t, events.PluginInfo{Name: "p", Path: path, Handlers: 1}, got)
}

func TestHost_LoadErrors(t *testing.T) {
	dir := t.TempDir()
	good := writeScript(t, dir, "good.lua", `-- nothing`)
	broken := writeScript(t, dir, "broken.lua", `events.attach("x", function() end) error("bad plugin")`)

	mgr := event.NewManager()
	seen := recordLifecycle(t, mgr)

	var failure events.PluginFailure
	require.NoError(t, mgr.On(events.PluginError, event.Listener(func(e event.Event) {
		failure = e.Target().(events.PluginFailure)
	})))

	host := NewHost(mgr)
	defer host.Close()
	ctx := context.Background()

	err := host.Load(ctx, "", good)
	assert.ErrorIs(t, err, ErrInvalidPlugin)

	err = host.Load(ctx, "broken", broken)
	require.Error(t, err)
	var loadErr *LoadError
	require.True(t, errors.As(err, &loadErr))
	assert.Equal(t, "broken", loadErr.Name)
	assert.Contains(t, err.Error(), "bad plugin")
	assert.False(t, mgr.Has("x"), "handlers of a failed plugin are detached")
	assert.Equal(t, "broken", failure.Name)
	assert.Equal(t, 0, host.Count())

	err = host.Load(ctx, "missing", filepath.Join(dir, "missing.lua"))
	assert.True(t, errors.As(err, &loadErr))

	require.NoError(t, host.Load(ctx, "good", good))
	assert.ErrorIs(t, host.Load(ctx, "good", good), ErrAlreadyLoaded)

	assert.ErrorIs(t, host.Unload(ctx, "nope"), ErrPluginNotFound)
	assert.ErrorIs(t, host.Reload(ctx, "nope"), ErrPluginNotFound)

	assert.Equal(t, []string{events.PluginError, events.PluginError, events.PluginLoaded}, *seen)
}

func TestHost_Reload(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "p.lua", `events.attach("v1", function() end)`)

	mgr := event.NewManager()
	seen := recordLifecycle(t, mgr)
	host := NewHost(mgr)
	defer host.Close()
	ctx := context.Background()

	require.NoError(t, host.Load(ctx, "p", path))
	assert.True(t, mgr.Has("v1"))

	writeScript(t, dir, "p.lua", `events.attach("v2", function() end)`)
	require.NoError(t, host.Reload(ctx, "p"))
	assert.False(t, mgr.Has("v1"))
	assert.True(t, mgr.Has("v2"))

	writeScript(t, dir, "p.lua", `syntax error here`)
	err := host.Reload(ctx, "p")
	require.Error(t, err)
	assert.False(t, mgr.Has("v2"))
	_, ok := host.Get("p")
	assert.False(t, ok, "a plugin that fails to reload stays unloaded")

	assert.Equal(t, []string{
		events.PluginLoaded, events.PluginReloaded, events.PluginError,
	}, *seen)
}

func TestHost_ActivateDeactivate(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "p.lua", `
		function activate()
			events.attach("activated", function() end)
		end
		function deactivate()
			events.trigger("deactivating")
		end
	`)

	mgr := event.NewManager()
	deactivated := false
	require.NoError(t, mgr.On("deactivating", event.Listener(func(event.Event) {
		deactivated = true
	})))

	host := NewHost(mgr)
	ctx := context.Background()
	require.NoError(t, host.Load(ctx, "p", path))
	assert.True(t, mgr.Has("activated"))

	require.NoError(t, host.Unload(ctx, "p"))
	assert.True(t, deactivated)
	assert.False(t, mgr.Has("activated"))
}

func TestHost_ActivateFailure(t *testing.T) {
	path := writeScript(t, t.TempDir(), "p.lua", `
		events.attach("x", function() end)
		function activate() error("no") end
	`)

	mgr := event.NewManager()
	host := NewHost(mgr)
	defer host.Close()

	err := host.Load(context.Background(), "p", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "activate")
	assert.False(t, mgr.Has("x"))
}

func TestHost_LifecycleHandlerErrorIgnored(t *testing.T) {
	path := writeScript(t, t.TempDir(), "p.lua", `-- empty`)

	mgr := event.NewManager()
	require.NoError(t, mgr.On(events.PluginLoaded, event.Func(func(context.Context, event.Event) error {
		return errors.New("observer failed")
	})))

	host := NewHost(mgr)
	defer host.Close()
	require.NoError(t, host.Load(context.Background(), "p", path))
	assert.Equal(t, 1, host.Count())
}

func TestHost_Close(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.lua", `
		events.attach("x", function() end)
		function deactivate() error("a failed") end
	`)
	b := writeScript(t, dir, "b.lua", `
		function deactivate() error("b failed") end
	`)
	c := writeScript(t, dir, "c.lua", `-- fine`)

	mgr := event.NewManager()
	seen := recordLifecycle(t, mgr)
	host := NewHost(mgr)
	ctx := context.Background()

	require.NoError(t, host.Load(ctx, "a", a))
	require.NoError(t, host.Load(ctx, "b", b))
	require.NoError(t, host.Load(ctx, "c", c))

	names := make([]string, 0, 3)
	for _, info := range host.Plugins() {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	err := host.Close()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "a failed")
	assert.Contains(t, err.Error(), "b failed")
	assert.False(t, mgr.Has("x"))
	assert.Len(t, *seen, 3, "close does not trigger unload events")

	assert.NoError(t, host.Close())
	assert.ErrorIs(t, host.Load(ctx, "c", c), ErrHostClosed)
	assert.ErrorIs(t, host.Unload(ctx, "c"), ErrHostClosed)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "unloaded", StateUnloaded.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "error", StateError.String())
	assert.Equal(t, "unknown", State(99).String())
}
