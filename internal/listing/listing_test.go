package listing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "beta.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Alpha.txt"), []byte("a"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "zdir", "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zdir", "inner.txt"), []byte("x"), 0o644))
	return dir
}

func TestListSingleLevelSorted(t *testing.T) {
	dir := seedDir(t)
	s := NewService("panel-1")

	entries, err := s.List(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, entries, 3) // nested content excluded

	// Directories first, then case-insensitive name order.
	assert.Equal(t, "zdir", entries[0].Name)
	assert.True(t, entries[0].IsDir)
	assert.Equal(t, "Alpha.txt", entries[1].Name)
	assert.Equal(t, "beta.txt", entries[2].Name)
}

func TestCacheLifecycle(t *testing.T) {
	dir := seedDir(t)
	s := NewService("panel-1")

	_, ok := s.Cached(dir)
	assert.False(t, ok)
	assert.False(t, s.IsPathLoaded(dir))

	_, err := s.List(context.Background(), dir)
	require.NoError(t, err)
	assert.True(t, s.IsPathLoaded(dir))

	cached, ok := s.Cached(dir)
	require.True(t, ok)
	assert.Len(t, cached, 3)

	s.Evict(dir)
	assert.False(t, s.IsPathLoaded(dir))
}

func TestRefreshTargetBehavior(t *testing.T) {
	dir := seedDir(t)
	other := t.TempDir()
	s := NewService("panel-1")
	s.SetCurrentPath(dir)

	assert.Equal(t, "panel-1", s.InstanceID())
	assert.Equal(t, dir, s.CurrentPath())
	assert.True(t, s.ShouldRefresh(dir))
	assert.False(t, s.ShouldRefresh(other))

	require.NoError(t, s.LoadDirectory(context.Background(), dir))

	// A new file appears; refresh picks it up.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("n"), 0o644))
	require.NoError(t, s.RefreshDirectory(context.Background(), dir, true))

	cached, ok := s.Cached(dir)
	require.True(t, ok)
	assert.Len(t, cached, 4)
}

func TestListMissingDirectory(t *testing.T) {
	s := NewService("panel-1")
	_, err := s.List(context.Background(), filepath.Join(t.TempDir(), "gone"))
	assert.Error(t, err)
}

func TestListCancelled(t *testing.T) {
	dir := seedDir(t)
	s := NewService("panel-1")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.List(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}
