// Package app wires the command engine, navigation history, refresh
// coordinator, watcher, and store into one coordinated front door.
package app

import (
	"context"
	"os"
	"sync"

	"dirigent/internal/command"
	"dirigent/internal/config"
	"dirigent/internal/fileops"
	"dirigent/internal/fsq"
	"dirigent/internal/history"
	"dirigent/internal/logging"
	"dirigent/internal/notify"
	"dirigent/internal/refresh"
	"dirigent/internal/store"
	"dirigent/internal/watch"
)

type Orchestrator struct {
	cfg      config.Config
	bus      *notify.Bus
	ops      fileops.Service
	commands *command.Manager
	tabs     *history.Tabs
	refresh  *refresh.Coordinator
	watcher  *watch.Watcher
	store    *store.DB

	mu      sync.Mutex
	watched map[string]int // per-directory watch refcount across tabs
	done    chan struct{}
	wg      sync.WaitGroup
}

// New builds an orchestrator from config. The watcher is optional: if the
// platform cannot provide one, refreshes still flow from operations and
// explicit requests.
func New(cfg config.Config) (*Orchestrator, error) {
	bus := notify.NewBus()

	windows := refresh.Windows{
		Low:    cfg.Refresh.LowWindow(),
		Normal: cfg.Refresh.NormalWindow(),
	}

	o := &Orchestrator{
		cfg:      cfg,
		bus:      bus,
		ops:      fileops.NewLocal(),
		commands: command.NewManager(cfg.Commands.MaxStackSize, bus),
		tabs:     history.NewTabs(fsq.OS{}, bus),
		refresh:  refresh.NewCoordinator(windows, bus),
		store:    store.NewDB(),
		watched:  make(map[string]int),
		done:     make(chan struct{}),
	}

	w, err := watch.New(cfg.Watcher.Buffer)
	if err != nil {
		logging.Warn("watcher unavailable", "err", err)
	} else {
		o.watcher = w
	}

	return o, nil
}

// Start opens the store and begins forwarding watcher notifications into
// the refresh coordinator.
func (o *Orchestrator) Start() error {
	if err := o.store.Open(o.cfg.Store.Path); err != nil {
		return err
	}

	if o.watcher != nil {
		o.wg.Add(1)
		go o.forwardWatchEvents()
	}
	return nil
}

// forwardWatchEvents bridges raw directory-change notifications into
// low-priority refresh requests; the coordinator does the debouncing.
func (o *Orchestrator) forwardWatchEvents() {
	defer o.wg.Done()
	for {
		select {
		case <-o.done:
			return
		case dir, ok := <-o.watcher.Notify():
			if !ok {
				return
			}
			req, err := refresh.NewRequest(dir, refresh.SourceWatcher, refresh.PriorityLow)
			if err != nil {
				logging.Warn("dropping watch notification", "dir", dir, "err", err)
				continue
			}
			o.refresh.RequestRefresh(req)
		}
	}
}

// Bus exposes the event bus for subscribers.
func (o *Orchestrator) Bus() *notify.Bus { return o.bus }

// Commands exposes the undo/redo manager.
func (o *Orchestrator) Commands() *command.Manager { return o.commands }

// Refresh exposes the refresh coordinator, mainly for target registration.
func (o *Orchestrator) Refresh() *refresh.Coordinator { return o.refresh }

// Store exposes the persistence layer.
func (o *Orchestrator) Store() *store.DB { return o.store }

// RegisterTarget adds a refresh target to the coordinator's fan-out set.
func (o *Orchestrator) RegisterTarget(t refresh.Target) {
	o.refresh.Register(t)
}

// UnregisterTarget removes a refresh target.
func (o *Orchestrator) UnregisterTarget(instanceID string) {
	o.refresh.Unregister(instanceID)
}

// Pin persists a pinned directory.
func (o *Orchestrator) Pin(path string) error {
	return o.store.AddPinned(path)
}

// Unpin removes a pinned directory.
func (o *Orchestrator) Unpin(path string) error {
	return o.store.RemovePinned(path)
}

// Pinned lists pinned directories, oldest first.
func (o *Orchestrator) Pinned() ([]string, error) {
	return o.store.Pinned()
}

// Recents lists recently-visited directories, most recent first.
func (o *Orchestrator) Recents(limit int) ([]store.Recent, error) {
	return o.store.Recents(limit)
}

// RefreshNow forces an immediate refresh of path, bypassing debounce.
func (o *Orchestrator) RefreshNow(ctx context.Context, path string) error {
	req, err := refresh.NewRequest(path, refresh.SourceUserRefresh, refresh.PriorityHigh)
	if err != nil {
		return err
	}
	return o.refresh.RequestImmediate(ctx, req)
}

// requestOperationRefresh schedules a normal-priority refresh for every
// directory a completed command touched.
func (o *Orchestrator) requestOperationRefresh(cmd command.Command) {
	dt, ok := cmd.(command.DirToucher)
	if !ok {
		return
	}
	for _, dir := range dt.TouchedDirs() {
		req, err := refresh.NewRequest(dir, refresh.SourceOperationCompleted, refresh.PriorityNormal)
		if err != nil {
			logging.Warn("skipping refresh for touched dir", "dir", dir, "err", err)
			continue
		}
		o.refresh.RequestRefresh(req)
	}
}

// watchDir bumps the refcount for dir and starts watching on first use.
func (o *Orchestrator) watchDir(dir string) {
	if o.watcher == nil || dir == "" {
		return
	}
	o.mu.Lock()
	o.watched[dir]++
	first := o.watched[dir] == 1
	o.mu.Unlock()

	if first {
		if err := o.watcher.Watch(dir); err != nil {
			logging.Warn("watch failed", "dir", dir, "err", err)
		}
	}
}

// unwatchDir drops the refcount for dir and stops watching at zero.
func (o *Orchestrator) unwatchDir(dir string) {
	if o.watcher == nil || dir == "" {
		return
	}
	o.mu.Lock()
	if o.watched[dir] > 0 {
		o.watched[dir]--
	}
	last := o.watched[dir] == 0
	if last {
		delete(o.watched, dir)
	}
	o.mu.Unlock()

	if last {
		o.watcher.Unwatch(dir)
	}
}

// HomeDir returns the configured initial path, falling back to the user's
// home directory and finally the working directory.
func (o *Orchestrator) HomeDir() string {
	if o.cfg.History.InitialPath != "" {
		return o.cfg.History.InitialPath
	}
	if home, err := os.UserHomeDir(); err == nil {
		return home
	}
	wd, _ := os.Getwd()
	return wd
}

// Close tears everything down: watcher first so no new refresh requests
// arrive, then the coordinator, then the store.
func (o *Orchestrator) Close() {
	close(o.done)
	if o.watcher != nil {
		o.watcher.Close()
	}
	o.wg.Wait()
	o.refresh.Close()
	o.store.Close()
}
