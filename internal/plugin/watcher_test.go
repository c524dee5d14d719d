package plugin

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitChange(t *testing.T, w *Watcher) string {
	t.Helper()
	select {
	case name := <-w.Changes():
		return name
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for change")
		return ""
	}
}

func TestWatcher_ReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "p.lua", `-- v1`)
	other := writeScript(t, dir, "other.txt", `x`)

	w, err := NewWatcher(WithDebounce(20 * time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch("p", path))

	// Unwatched files in the same directory are ignored.
	require.NoError(t, os.WriteFile(other, []byte("y"), 0o600))

	for i := range 3 {
		require.NoError(t, os.WriteFile(path, []byte{byte('a' + i)}, 0o600))
	}
	assert.Equal(t, "p", waitChange(t, w))

	select {
	case name := <-w.Changes():
		t.Fatalf("unexpected extra change %q", name)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWatcher_ReportsRecreate(t *testing.T) {
	dir := t.TempDir()
	path := writeScript(t, dir, "p.lua", `-- v1`)

	w, err := NewWatcher(WithDebounce(10 * time.Millisecond))
	require.NoError(t, err)
	defer w.Close()
	require.NoError(t, w.Watch("p", path))

	tmp := filepath.Join(dir, "p.lua.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("-- v2"), 0o600))
	require.NoError(t, os.Rename(tmp, path))

	assert.Equal(t, "p", waitChange(t, w))
}

func TestWatcher_Unwatch(t *testing.T) {
	dir := t.TempDir()
	a := writeScript(t, dir, "a.lua", ``)
	b := writeScript(t, dir, "b.lua", ``)

	w, err := NewWatcher(WithDebounce(10 * time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch("a", a))
	require.NoError(t, w.Watch("b", b))
	require.NoError(t, w.Unwatch("a"))
	require.NoError(t, w.Unwatch("unknown"))

	require.NoError(t, os.WriteFile(a, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(b, []byte("x"), 0o600))
	assert.Equal(t, "b", waitChange(t, w))
}

func TestWatcher_Close(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)

	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Changes()
	assert.False(t, ok)
	assert.ErrorIs(t, w.Watch("p", "p.lua"), ErrWatcherClosed)
	assert.ErrorIs(t, w.Unwatch("p"), ErrWatcherClosed)
}
