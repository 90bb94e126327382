// Package refresh implements the debounced, prioritized refresh coordinator:
// it collapses bursts of directory-refresh requests per path and fans the
// surviving dispatch out to every registered target.
package refresh

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Priority orders refresh requests. Higher priorities shorten or bypass the
// debounce window.
type Priority int

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	}
	return "unknown"
}

// Source identifies what produced a refresh request.
type Source int

const (
	SourceWatcher Source = iota
	SourceOperationCompleted
	SourceManualDragDrop
	SourceExternalDragDrop
	SourceUserRefresh
	SourceSearchResults
	SourceFilterChanged
	SourceProgrammatic
)

func (s Source) String() string {
	switch s {
	case SourceWatcher:
		return "watcher"
	case SourceOperationCompleted:
		return "operation-completed"
	case SourceManualDragDrop:
		return "manual-drag-drop"
	case SourceExternalDragDrop:
		return "external-drag-drop"
	case SourceUserRefresh:
		return "user-refresh"
	case SourceSearchResults:
		return "search-results"
	case SourceFilterChanged:
		return "filter-changed"
	case SourceProgrammatic:
		return "programmatic"
	}
	return "unknown"
}

// Construction errors.
var (
	ErrEmptyPath    = errors.New("refresh path is empty")
	ErrRelativePath = errors.New("refresh path must be absolute")
)

// Request is one refresh demand for a directory. Immutable once built.
type Request struct {
	Path      string
	Source    Source
	Priority  Priority
	Context   map[string]string
	Timestamp time.Time
	RequestID string
}

// NewRequest builds a request for path, normalizing it. Relative or empty
// paths are construction-time errors, never silently absolutized.
func NewRequest(path string, source Source, priority Priority) (Request, error) {
	if path == "" {
		return Request{}, ErrEmptyPath
	}
	if !filepath.IsAbs(path) {
		return Request{}, fmt.Errorf("%w: %q", ErrRelativePath, path)
	}
	return Request{
		Path:      filepath.Clean(path),
		Source:    source,
		Priority:  priority,
		Timestamp: time.Now(),
		RequestID: uuid.NewString(),
	}, nil
}

// WithContext returns a copy of the request with an extra context entry,
// leaving the original untouched.
func (r Request) WithContext(key, value string) Request {
	ctx := make(map[string]string, len(r.Context)+1)
	for k, v := range r.Context {
		ctx[k] = v
	}
	ctx[key] = value
	r.Context = ctx
	return r
}
