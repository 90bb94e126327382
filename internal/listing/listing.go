// Package listing reads single directory levels and caches the results. A
// Service doubles as a refresh target: refreshes re-read directories it has
// already listed.
package listing

import (
	"context"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"

	"dirigent/internal/logging"
)

// Entry is one item of a directory listing.
type Entry struct {
	Name    string
	Path    string
	IsDir   bool
	Size    int64
	ModTime time.Time
}

// Service lists directories on demand and keeps the last listing per path.
type Service struct {
	mu      sync.Mutex
	id      string
	current string
	cache   map[string][]Entry
}

// NewService creates a lister identified by id in refresh fan-outs.
func NewService(id string) *Service {
	return &Service{id: id, cache: make(map[string][]Entry)}
}

// List reads the direct children of path and caches the result.
func (s *Service) List(ctx context.Context, path string) ([]Entry, error) {
	entries, err := listDir(ctx, path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[path] = entries
	s.mu.Unlock()
	return entries, nil
}

// Cached returns the last listing for path, if one exists.
func (s *Service) Cached(path string) ([]Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries, ok := s.cache[path]
	return entries, ok
}

// Evict drops the cached listing for path.
func (s *Service) Evict(path string) {
	s.mu.Lock()
	delete(s.cache, path)
	s.mu.Unlock()
}

// SetCurrentPath records the directory this lister is presenting.
func (s *Service) SetCurrentPath(path string) {
	s.mu.Lock()
	s.current = path
	s.mu.Unlock()
}

func (s *Service) InstanceID() string { return s.id }

func (s *Service) CurrentPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// ShouldRefresh accepts paths this lister has listed or is presenting.
func (s *Service) ShouldRefresh(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == path {
		return true
	}
	_, ok := s.cache[path]
	return ok
}

// IsPathLoaded reports whether a listing for path is cached.
func (s *Service) IsPathLoaded(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.cache[path]
	return ok
}

// RefreshDirectory re-reads an already-listed directory.
func (s *Service) RefreshDirectory(ctx context.Context, path string, _ bool) error {
	_, err := s.List(ctx, path)
	return err
}

// LoadDirectory reads a directory for the first time.
func (s *Service) LoadDirectory(ctx context.Context, path string) error {
	_, err := s.List(ctx, path)
	return err
}

// listDir walks exactly one level of path. Walk errors on individual
// entries are skipped so one unreadable item never hides the rest.
func listDir(ctx context.Context, path string) ([]Entry, error) {
	var result []Entry
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow: true, // follow symlinks to get target info
	}

	pathLen := len(path)

	err := fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err != nil {
			logging.Debug("listing: walk error", "path", fullPath, "err", err)
			return nil
		}
		if fullPath == path {
			return nil
		}

		// Only direct children: anything with a separator past the root is
		// nested and gets pruned.
		relStart := pathLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		rel := fullPath[relStart:]
		if strings.ContainsAny(rel, "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Broken symlink targets fall back to lstat.
			info, err = os.Lstat(fullPath)
			if err != nil {
				logging.Debug("listing: skipping entry", "name", d.Name(), "err", err)
				return nil
			}
		}

		mu.Lock()
		result = append(result, Entry{
			Name:    d.Name(),
			Path:    fullPath,
			IsDir:   info.IsDir(),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()

		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortEntries(result)
	return result, nil
}

// sortEntries orders directories first, then case-insensitive by name.
func sortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir != entries[j].IsDir {
			return entries[i].IsDir
		}
		return strings.ToLower(entries[i].Name) < strings.ToLower(entries[j].Name)
	})
}
