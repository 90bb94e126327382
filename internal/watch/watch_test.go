package watch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitNotify(t *testing.T, w *Watcher, want string) {
	t.Helper()
	deadline := time.After(3 * time.Second)
	for {
		select {
		case dir := <-w.Notify():
			if dir == want {
				return
			}
		case <-deadline:
			t.Fatalf("no notification for %s", want)
		}
	}
}

func TestWatcherReportsContainingDirectory(t *testing.T) {
	dir := t.TempDir()
	w, err := New(8)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(dir))
	require.True(t, w.Watched(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("x"), 0o644))
	waitNotify(t, w, dir)
}

func TestWatcherDoubleWatchIsNoop(t *testing.T) {
	dir := t.TempDir()
	w, err := New(8)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Watch(dir))
	assert.True(t, w.Watched(dir))
}

func TestWatcherUnwatchStopsNotifications(t *testing.T) {
	dir := t.TempDir()
	w, err := New(8)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(dir))
	require.NoError(t, w.Unwatch(dir))
	assert.False(t, w.Watched(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("x"), 0o644))
	select {
	case got := <-w.Notify():
		t.Fatalf("unexpected notification: %s", got)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherUnwatchAll(t *testing.T) {
	a := t.TempDir()
	b := t.TempDir()
	w, err := New(8)
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, w.Watch(a))
	require.NoError(t, w.Watch(b))
	w.UnwatchAll()
	assert.False(t, w.Watched(a))
	assert.False(t, w.Watched(b))
}

func TestWatcherCloseIdempotent(t *testing.T) {
	w, err := New(8)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
