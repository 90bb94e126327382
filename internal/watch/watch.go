package watch

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"dirigent/internal/logging"
)

const defaultBuffer = 32

// Watcher observes directories for changes and reports the affected
// directory path on its Notify channel. Events are forwarded raw; callers
// that need coalescing layer their own debounce on top.
type Watcher struct {
	fw       *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]bool
	notify   chan string
	done     chan struct{}
	closed   bool
}

// New creates a watcher and starts its event loop. buffer controls how many
// pending notifications are held before new ones are dropped.
func New(buffer int) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if buffer <= 0 {
		buffer = defaultBuffer
	}

	w := &Watcher{
		fw:       fw,
		watching: make(map[string]bool),
		notify:   make(chan string, buffer),
		done:     make(chan struct{}),
	}

	go w.run()
	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Remove) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Write) {
				// fsnotify reports the changed file; map it back to the
				// watched directory that contains it.
				parentDir := filepath.Dir(event.Name)

				w.mu.Lock()
				var dir string
				if w.watching[parentDir] {
					dir = parentDir
				} else if w.watching[event.Name] {
					// The watched directory itself changed (e.g. chmod).
					dir = event.Name
				}
				w.mu.Unlock()

				if dir != "" {
					select {
					case w.notify <- dir:
						logging.Debug("directory changed", "op", event.Op.String(), "dir", dir)
					default:
						// Channel full, skip.
					}
				}
			}

		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher error", "err", err)
		}
	}
}

// Watch adds a directory to the watch list. Watching an already-watched
// path is a no-op.
func (w *Watcher) Watch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watching[path] {
		return nil
	}

	if err := w.fw.Add(path); err != nil {
		return err
	}

	w.watching[path] = true
	logging.Debug("now watching", "dir", path)
	return nil
}

// Unwatch removes a directory from the watch list.
func (w *Watcher) Unwatch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.watching[path] {
		return nil
	}

	if err := w.fw.Remove(path); err != nil {
		// The path may already be gone; nothing useful to do.
		logging.Debug("unwatch failed", "dir", path, "err", err)
	}

	delete(w.watching, path)
	return nil
}

// UnwatchAll removes every watched directory.
func (w *Watcher) UnwatchAll() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path := range w.watching {
		w.fw.Remove(path)
	}
	w.watching = make(map[string]bool)
}

// Watched reports whether path is currently on the watch list.
func (w *Watcher) Watched(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.watching[path]
}

// Notify returns the channel carrying changed-directory notifications.
func (w *Watcher) Notify() <-chan string {
	return w.notify
}

// Close shuts the watcher down. Safe to call more than once.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	close(w.done)
	return w.fw.Close()
}
