package history

import (
	"errors"
	"fmt"
	"sync"

	"dirigent/internal/fsq"
	"dirigent/internal/notify"
)

// ErrUnknownTab means no history is registered for the given tab ID.
var ErrUnknownTab = errors.New("unknown tab")

// Tabs tracks one History instance per open tab, keeping per-tab state out
// of whatever owns the tabs themselves.
type Tabs struct {
	mu    sync.Mutex
	query fsq.Query
	bus   *notify.Bus
	tabs  map[string]*History
}

// NewTabs creates an empty registry. New histories inherit query and bus.
func NewTabs(query fsq.Query, bus *notify.Bus) *Tabs {
	return &Tabs{query: query, bus: bus, tabs: make(map[string]*History)}
}

// Open creates a history for tabID positioned at initialPath. Opening an
// already-open tab is an error; the existing history is kept.
func (t *Tabs) Open(tabID, initialPath string) (*History, error) {
	t.mu.Lock()
	if _, exists := t.tabs[tabID]; exists {
		t.mu.Unlock()
		return nil, fmt.Errorf("tab %q already open", tabID)
	}
	h := New(tabID, t.query, t.bus)
	t.tabs[tabID] = h
	t.mu.Unlock()

	if err := h.NavigateTo(initialPath); err != nil {
		t.Close(tabID)
		return nil, err
	}
	return h, nil
}

// Get returns the history for tabID, or nil if the tab is unknown.
func (t *Tabs) Get(tabID string) *History {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tabs[tabID]
}

// Close drops the history for tabID so closed tabs leave no stale state.
func (t *Tabs) Close(tabID string) {
	t.mu.Lock()
	delete(t.tabs, tabID)
	t.mu.Unlock()
}

// Len returns the number of open tabs.
func (t *Tabs) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tabs)
}

// CurrentPaths returns the current path of every open tab, keyed by tab ID.
func (t *Tabs) CurrentPaths() map[string]string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[string]string, len(t.tabs))
	for id, h := range t.tabs {
		out[id] = h.CurrentPath()
	}
	return out
}
