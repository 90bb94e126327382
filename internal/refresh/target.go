package refresh

import "context"

// Target is a consumer of refresh dispatches, typically a visible directory
// view. The coordinator only ever talks to a target through this contract
// and never reaches into its state.
type Target interface {
	// InstanceID uniquely identifies the target within a coordinator.
	InstanceID() string
	// CurrentPath is the directory the target is showing, for diagnostics.
	CurrentPath() string
	// ShouldRefresh reports whether the target cares about path at all.
	ShouldRefresh(path string) bool
	// IsPathLoaded reports whether path is already loaded, making an
	// incremental refresh possible.
	IsPathLoaded(path string) bool
	// RefreshDirectory reloads an already-loaded path. preserveState keeps
	// selection/expansion intact across the reload.
	RefreshDirectory(ctx context.Context, path string, preserveState bool) error
	// LoadDirectory loads a path the target has not seen yet.
	LoadDirectory(ctx context.Context, path string) error
}
