package refresh

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"dirigent/internal/logging"
	"dirigent/internal/notify"
)

// Default debounce windows per priority. High bypasses debouncing entirely.
const (
	DefaultLowWindow    = 200 * time.Millisecond
	DefaultNormalWindow = 100 * time.Millisecond
)

// Windows holds the debounce window per priority tier.
type Windows struct {
	Low    time.Duration
	Normal time.Duration
}

// DefaultWindows returns the standard debounce tuning.
func DefaultWindows() Windows {
	return Windows{Low: DefaultLowWindow, Normal: DefaultNormalWindow}
}

// pending is one ledger entry: the per-path debounce state between the first
// coalesced request and its dispatch.
type pending struct {
	timer    *time.Timer
	priority Priority
	count    int
	oldest   time.Time
	first    Request // originating request, kept for correlation
}

// Coordinator collapses refresh requests per normalized path and fans each
// surviving dispatch out to all interested targets. Ledger mutations are
// serialized under one mutex; dispatches for different paths run fully in
// parallel.
type Coordinator struct {
	mu      sync.Mutex
	targets map[string]Target
	ledger  map[string]*pending
	windows Windows
	bus     *notify.Bus
	closed  bool
	wg      sync.WaitGroup
}

// NewCoordinator creates a coordinator publishing RefreshCompleted events on
// bus (may be nil). Zero window values fall back to the defaults.
func NewCoordinator(windows Windows, bus *notify.Bus) *Coordinator {
	if windows.Low <= 0 {
		windows.Low = DefaultLowWindow
	}
	if windows.Normal <= 0 {
		windows.Normal = DefaultNormalWindow
	}
	return &Coordinator{
		targets: make(map[string]Target),
		ledger:  make(map[string]*pending),
		windows: windows,
		bus:     bus,
	}
}

// Register adds a target to the fan-out set, replacing any previous target
// with the same instance ID.
func (c *Coordinator) Register(t Target) {
	c.mu.Lock()
	c.targets[t.InstanceID()] = t
	c.mu.Unlock()
	logging.Debug("refresh target registered", "id", t.InstanceID())
}

// Unregister removes a target. Safe concurrently with an in-flight
// dispatch: the removed target may still see the dispatch already underway
// but receives no further callbacks.
func (c *Coordinator) Unregister(instanceID string) {
	c.mu.Lock()
	delete(c.targets, instanceID)
	c.mu.Unlock()
	logging.Debug("refresh target unregistered", "id", instanceID)
}

// window returns the debounce delay for a priority tier.
func (c *Coordinator) window(p Priority) time.Duration {
	if p >= PriorityNormal {
		return c.windows.Normal
	}
	return c.windows.Low
}

// RequestRefresh enqueues a request. Low and Normal requests coalesce into
// the per-path ledger entry and dispatch when its debounce timer fires; a
// High request dispatches immediately and collapses any pending entry for
// the same path into that dispatch. Escalation restarts the timer at the
// shorter window of the new maximum priority; it never lengthens a window
// already running.
func (c *Coordinator) RequestRefresh(req Request) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	if req.Priority == PriorityHigh {
		c.cancelPendingLocked(req.Path)
		c.wg.Add(1)
		c.mu.Unlock()
		go func() {
			defer c.wg.Done()
			c.dispatch(context.Background(), req)
		}()
		return
	}

	entry, ok := c.ledger[req.Path]
	if !ok {
		entry = &pending{
			priority: req.Priority,
			count:    1,
			oldest:   req.Timestamp,
			first:    req,
		}
		path := req.Path
		entry.timer = time.AfterFunc(c.window(req.Priority), func() { c.expire(path) })
		c.ledger[req.Path] = entry
		c.mu.Unlock()
		logging.Debug("refresh scheduled", "path", req.Path, "priority", req.Priority.String())
		return
	}

	entry.count++
	if req.Priority > entry.priority {
		// Escalate: restart at the shorter window for the new maximum.
		entry.priority = req.Priority
		entry.timer.Stop()
		path := req.Path
		entry.timer = time.AfterFunc(c.window(req.Priority), func() { c.expire(path) })
		logging.Debug("refresh escalated", "path", req.Path, "priority", req.Priority.String(), "coalesced", entry.count)
	}
	c.mu.Unlock()
}

// RequestImmediate bypasses the ledger: it cancels any pending entry for
// the path and runs the full fan-out synchronously with zero delay,
// returning the aggregated dispatch error.
func (c *Coordinator) RequestImmediate(ctx context.Context, req Request) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.cancelPendingLocked(req.Path)
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	return c.dispatch(ctx, req)
}

// cancelPendingLocked removes and stops the ledger entry for path, if any.
// Caller holds the mutex.
func (c *Coordinator) cancelPendingLocked(path string) {
	if entry, ok := c.ledger[path]; ok {
		entry.timer.Stop()
		delete(c.ledger, path)
	}
}

// PendingCount returns how many requests have coalesced into the path's
// pending entry, or zero when nothing is pending. Diagnostic only.
func (c *Coordinator) PendingCount(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.ledger[path]; ok {
		return entry.count
	}
	return 0
}

// PendingPriority returns the highest priority coalesced for path, and
// whether an entry is pending at all.
func (c *Coordinator) PendingPriority(path string) (Priority, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.ledger[path]; ok {
		return entry.priority, true
	}
	return 0, false
}

// expire runs on timer expiry: it claims the ledger entry and dispatches.
// A racing High request or immediate refresh may have already claimed the
// entry, in which case there is nothing left to do.
func (c *Coordinator) expire(path string) {
	c.mu.Lock()
	entry, ok := c.ledger[path]
	if !ok || c.closed {
		c.mu.Unlock()
		return
	}
	delete(c.ledger, path)
	c.wg.Add(1)
	c.mu.Unlock()
	defer c.wg.Done()

	logging.Debug("refresh dispatching", "path", path, "coalesced", entry.count, "age", time.Since(entry.oldest).String())
	c.dispatch(context.Background(), entry.first)
}

// dispatch fans one refresh out to every interested target. Targets run
// concurrently; one failing target never blocks delivery to the rest. The
// RefreshCompleted event carries the originating request's ID so consumers
// can correlate bursts with their eventual dispatch.
func (c *Coordinator) dispatch(ctx context.Context, req Request) error {
	c.mu.Lock()
	snapshot := make([]Target, 0, len(c.targets))
	for _, t := range c.targets {
		snapshot = append(snapshot, t)
	}
	c.mu.Unlock()

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	for _, t := range snapshot {
		if !t.ShouldRefresh(req.Path) {
			continue
		}
		wg.Add(1)
		go func(t Target) {
			defer wg.Done()
			var err error
			if t.IsPathLoaded(req.Path) {
				err = t.RefreshDirectory(ctx, req.Path, true)
			} else {
				err = t.LoadDirectory(ctx, req.Path)
			}
			if err != nil {
				logging.Warn("refresh target failed", "id", t.InstanceID(), "path", req.Path, "err", err)
				errMu.Lock()
				errs = append(errs, err)
				errMu.Unlock()
			}
		}(t)
	}
	wg.Wait()

	err := errors.Join(errs...)
	c.publishCompleted(req, err)
	return err
}

func (c *Coordinator) publishCompleted(req Request, err error) {
	if c.bus == nil {
		return
	}
	ev := notify.RefreshCompleted{
		Path:      req.Path,
		Source:    req.Source.String(),
		Success:   err == nil,
		RequestID: req.RequestID,
	}
	if err != nil {
		ev.ErrorMessage = strings.TrimSpace(err.Error())
	}
	c.bus.Publish(ev)
}

// Close stops all pending timers and waits for in-flight dispatches to
// drain. Requests arriving after Close are dropped.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	for path, entry := range c.ledger {
		entry.timer.Stop()
		delete(c.ledger, path)
	}
	c.mu.Unlock()
	c.wg.Wait()
}
