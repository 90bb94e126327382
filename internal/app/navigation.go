package app

import (
	"dirigent/internal/fsq"
	"dirigent/internal/history"
	"dirigent/internal/logging"
	"dirigent/internal/refresh"
)

// OpenTab starts tracking navigation for a new tab. Relative and ~ paths
// resolve against the configured home directory; an empty initialPath opens
// at home.
func (o *Orchestrator) OpenTab(tabID, initialPath string) error {
	home := o.HomeDir()
	h, err := o.tabs.Open(tabID, fsq.ExpandPath(initialPath, home, home))
	if err != nil {
		return err
	}
	o.watchDir(h.CurrentPath())
	o.touchRecent(h.CurrentPath())
	return nil
}

// CloseTab stops tracking a tab and releases its watch.
func (o *Orchestrator) CloseTab(tabID string) {
	h := o.tabs.Get(tabID)
	if h == nil {
		return
	}
	o.unwatchDir(h.CurrentPath())
	o.tabs.Close(tabID)
}

// Tab returns the navigation history for a tab, or nil.
func (o *Orchestrator) Tab(tabID string) *history.History {
	return o.tabs.Get(tabID)
}

// NavigateTo moves a tab to path, pushing the previous location onto its
// back stack. Relative paths resolve against the tab's current directory and
// ~ against home, so the history layer only ever sees absolute paths.
func (o *Orchestrator) NavigateTo(tabID, path string) error {
	return o.withTab(tabID, func(h *history.History) error {
		return h.NavigateTo(fsq.ExpandPath(path, h.CurrentPath(), o.HomeDir()))
	})
}

// Back moves a tab to its previous location.
func (o *Orchestrator) Back(tabID string) error {
	return o.withTab(tabID, (*history.History).Back)
}

// Forward moves a tab to the location it came back from.
func (o *Orchestrator) Forward(tabID string) error {
	return o.withTab(tabID, (*history.History).Forward)
}

// Up moves a tab to its parent directory.
func (o *Orchestrator) Up(tabID string) error {
	return o.withTab(tabID, (*history.History).Up)
}

// withTab runs one navigation step and, when the current path actually
// changed, re-targets the watcher, records the visit, and schedules a load
// of the new directory.
func (o *Orchestrator) withTab(tabID string, nav func(*history.History) error) error {
	h := o.tabs.Get(tabID)
	if h == nil {
		return history.ErrUnknownTab
	}

	before := h.CurrentPath()
	if err := nav(h); err != nil {
		return err
	}
	after := h.CurrentPath()
	if after == before {
		return nil
	}

	o.unwatchDir(before)
	o.watchDir(after)
	o.touchRecent(after)

	req, err := refresh.NewRequest(after, refresh.SourceProgrammatic, refresh.PriorityHigh)
	if err != nil {
		return err
	}
	o.refresh.RequestRefresh(req)
	return nil
}

func (o *Orchestrator) touchRecent(path string) {
	if err := o.store.TouchRecent(path); err != nil {
		logging.Warn("recording visit failed", "path", path, "err", err)
	}
}
