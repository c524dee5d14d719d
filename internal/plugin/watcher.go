package plugin

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/hookmgr/internal/logging"
)

// DefaultDebounce is how long Watcher waits for a file to settle.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("plugin watcher is closed")

// Watcher reports plugins whose script files change.
//
// fsnotify watches the directory of each script, so editors that replace
// files through a rename are still seen. Several writes to the same file
// within the debounce delay are reported once. Watcher only reports names
// on Changes; the owner of the Host performs the reload so that Lua states
// stay on one goroutine.
type Watcher struct {
	mu sync.Mutex

	watcher *fsnotify.Watcher
	delay   time.Duration
	logger  *logging.Logger

	// absolute script path -> plugin name
	files map[string]string
	// watched directory -> reference count
	dirs map[string]int

	pending map[string]*time.Timer
	changes chan string

	closed   bool
	closeCh  chan struct{}
	closedWg sync.WaitGroup
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the delay used to coalesce rapid changes.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.delay = d
		}
	}
}

// WithWatcherLogger sets the watcher logger.
func WithWatcherLogger(logger *logging.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWatcher creates a new fsnotify-based watcher.
func NewWatcher(opts ...WatcherOption) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher: fsw,
		delay:   DefaultDebounce,
		logger:  logging.Nop(),
		files:   make(map[string]string),
		dirs:    make(map[string]int),
		pending: make(map[string]*time.Timer),
		changes: make(chan string, 16),
		closeCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("watcher")

	w.closedWg.Add(1)
	go w.processLoop()

	return w, nil
}

// Watch starts reporting changes to path as name.
func (w *Watcher) Watch(name, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	dir := filepath.Dir(absPath)

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}
	if _, ok := w.files[absPath]; ok {
		w.files[absPath] = name
		return nil
	}

	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[absPath] = name
	return nil
}

// Unwatch stops reporting changes to the script of plugin name.
func (w *Watcher) Unwatch(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	for path, n := range w.files {
		if n != name {
			continue
		}
		delete(w.files, path)

		dir := filepath.Dir(path)
		w.dirs[dir]--
		if w.dirs[dir] <= 0 {
			delete(w.dirs, dir)
			if err := w.watcher.Remove(dir); err != nil {
				return err
			}
		}
	}
	return nil
}

// Changes returns the channel of changed plugin names.
// It is closed by Close.
func (w *Watcher) Changes() <-chan string {
	return w.changes
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()

	w.closedWg.Wait()
	close(w.changes)
	return w.watcher.Close()
}

// processLoop handles incoming fsnotify events.
func (w *Watcher) processLoop() {
	defer w.closedWg.Done()

	for {
		select {
		case <-w.closeCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("fsnotify error")
		}
	}
}

// handleFSEvent schedules a change for writes and creates of watched files.
func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
		return
	}

	path, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if _, ok := w.files[path]; !ok {
		return
	}

	if t, ok := w.pending[path]; ok {
		t.Reset(w.delay)
		return
	}
	w.pending[path] = time.AfterFunc(w.delay, func() {
		w.fire(path)
	})
}

// fire reports the plugin for path once its debounce timer expires.
func (w *Watcher) fire(path string) {
	w.mu.Lock()
	if _, ok := w.pending[path]; !ok || w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	name, ok := w.files[path]
	if !ok {
		w.mu.Unlock()
		return
	}
	// Close waits for this send before closing changes.
	w.closedWg.Add(1)
	w.mu.Unlock()
	defer w.closedWg.Done()

	select {
	case w.changes <- name:
	case <-w.closeCh:
	}
}
