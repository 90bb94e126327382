// Package history implements bidirectional navigation history: back and
// forward stacks per browsing tab, with stale entries (paths deleted since
// they were recorded) skipped silently on revisit.
package history

import (
	"errors"
	"fmt"
	"sync"

	"dirigent/internal/fsq"
	"dirigent/internal/logging"
	"dirigent/internal/notify"
)

var (
	// ErrEmptyPath rejects navigation to an empty path.
	ErrEmptyPath = errors.New("path is empty")
	// ErrNotFound means the target path does not exist.
	ErrNotFound = errors.New("path does not exist")
	// ErrNotADirectory means the target exists but is not a directory.
	ErrNotADirectory = errors.New("path is not a directory")
)

// maxStaleSkips bounds how many vanished entries one Back/Forward call will
// discard before giving up. Guards against a pathological stack of dead
// paths; in practice the stack drains long before the cap.
const maxStaleSkips = 128

// History owns the navigation state for one tab. All operations serialize on
// an internal mutex; notifications fire synchronously once the mutation
// completed.
type History struct {
	mu           sync.Mutex
	tabID        string
	query        fsq.Query
	bus          *notify.Bus
	current      string
	backStack    []string
	forwardStack []string
}

// New creates an empty history for the given tab. The query service
// validates candidate paths; bus receives NavigationChanged events and may
// be nil.
func New(tabID string, query fsq.Query, bus *notify.Bus) *History {
	return &History{tabID: tabID, query: query, bus: bus}
}

// TabID returns the owning tab's identifier.
func (h *History) TabID() string { return h.tabID }

// CurrentPath returns the path the tab is on, or "" before any navigation.
func (h *History) CurrentPath() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.current
}

// CanBack reports whether the back stack is non-empty.
func (h *History) CanBack() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.backStack) > 0
}

// CanForward reports whether the forward stack is non-empty.
func (h *History) CanForward() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.forwardStack) > 0
}

// Depths returns the back and forward stack sizes, for diagnostics.
func (h *History) Depths() (back, forward int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.backStack), len(h.forwardStack)
}

func (h *History) validate(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if !h.query.Exists(path) {
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if !h.query.IsDirectory(path) {
		return fmt.Errorf("%w: %s", ErrNotADirectory, path)
	}
	return nil
}

// NavigateTo moves the tab to path. The previous location is pushed onto the
// back stack and the forward stack is cleared: navigating somewhere new
// invalidates the forward branch, the same rule redo history follows. State
// is untouched when validation fails.
func (h *History) NavigateTo(path string) error {
	return h.navigate(path, notify.NavigateTo)
}

func (h *History) navigate(path string, typ notify.NavType) error {
	h.mu.Lock()
	if err := h.validate(path); err != nil {
		h.mu.Unlock()
		return err
	}
	if h.current != "" {
		h.backStack = append(h.backStack, h.current)
	}
	h.forwardStack = nil
	h.current = path
	h.mu.Unlock()

	h.publish(path, typ)
	return nil
}

// Back revisits the previous location. An empty back stack is a quiet
// no-op. Entries whose path has vanished since being recorded are discarded
// and the pop retried, so dead history never surfaces as an error.
func (h *History) Back() error {
	h.mu.Lock()
	moved, path := h.popValid(&h.backStack, &h.forwardStack)
	h.mu.Unlock()

	if moved {
		h.publish(path, notify.NavigateBack)
	}
	return nil
}

// Forward is the mirror of Back over the forward stack.
func (h *History) Forward() error {
	h.mu.Lock()
	moved, path := h.popValid(&h.forwardStack, &h.backStack)
	h.mu.Unlock()

	if moved {
		h.publish(path, notify.NavigateForward)
	}
	return nil
}

// popValid pops from src until a still-valid directory turns up, pushing the
// current path onto dst on success. Stale entries are dropped. Caller holds
// the mutex.
func (h *History) popValid(src, dst *[]string) (moved bool, path string) {
	for skips := 0; len(*src) > 0 && skips < maxStaleSkips; skips++ {
		candidate := (*src)[len(*src)-1]
		*src = (*src)[:len(*src)-1]

		if !h.query.IsDirectory(candidate) {
			logging.Debug("skipping stale history entry", "tab", h.tabID, "path", candidate)
			continue
		}

		if h.current != "" {
			*dst = append(*dst, h.current)
		}
		h.current = candidate
		return true, candidate
	}
	logging.Debug("history navigation exhausted", "tab", h.tabID)
	return false, ""
}

// Up navigates to the parent of the current path. Missing parent (already
// at a root, or the parent vanished) is a quiet no-op.
func (h *History) Up() error {
	h.mu.Lock()
	current := h.current
	h.mu.Unlock()

	if current == "" {
		return nil
	}
	parent, ok := h.query.ParentDirectory(current)
	if !ok || !h.query.IsDirectory(parent) {
		logging.Debug("no parent to navigate to", "tab", h.tabID, "path", current)
		return nil
	}
	return h.navigate(parent, notify.NavigateUp)
}

func (h *History) publish(path string, typ notify.NavType) {
	if h.bus != nil {
		h.bus.Publish(notify.NavigationChanged{TabID: h.tabID, Path: path, Type: typ})
	}
}
