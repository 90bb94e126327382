package history

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"dirigent/internal/fsq"
	"dirigent/internal/notify"
)

func mkdirs(t *testing.T, root string, names ...string) []string {
	t.Helper()
	paths := make([]string, len(names))
	for i, n := range names {
		paths[i] = filepath.Join(root, n)
		require.NoError(t, os.Mkdir(paths[i], 0o755))
	}
	return paths
}

func TestNavigateToValidation(t *testing.T) {
	root := t.TempDir()
	file := filepath.Join(root, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	h := New("t1", fsq.NewOS(), nil)

	require.ErrorIs(t, h.NavigateTo(""), ErrEmptyPath)
	require.ErrorIs(t, h.NavigateTo(filepath.Join(root, "missing")), ErrNotFound)
	require.ErrorIs(t, h.NavigateTo(file), ErrNotADirectory)

	// Failed navigation leaves state untouched.
	require.Empty(t, h.CurrentPath())
	require.False(t, h.CanBack())
}

func TestBackRestoresPreviousAndForwardHoldsNewest(t *testing.T) {
	root := t.TempDir()
	dirs := mkdirs(t, root, "a", "b")

	h := New("t1", fsq.NewOS(), nil)
	require.NoError(t, h.NavigateTo(dirs[0]))
	require.NoError(t, h.NavigateTo(dirs[1]))

	require.NoError(t, h.Back())
	require.Equal(t, dirs[0], h.CurrentPath())

	back, forward := h.Depths()
	require.Equal(t, 0, back)
	require.Equal(t, 1, forward)

	require.NoError(t, h.Forward())
	require.Equal(t, dirs[1], h.CurrentPath())
}

func TestNavigateToClearsForward(t *testing.T) {
	root := t.TempDir()
	dirs := mkdirs(t, root, "a", "b", "c")

	h := New("t1", fsq.NewOS(), nil)
	require.NoError(t, h.NavigateTo(dirs[0]))
	require.NoError(t, h.NavigateTo(dirs[1]))
	require.NoError(t, h.Back())
	require.True(t, h.CanForward())

	// Branching invalidates the forward stack.
	require.NoError(t, h.NavigateTo(dirs[2]))
	require.False(t, h.CanForward())
}

func TestBackSkipsDeletedEntries(t *testing.T) {
	root := t.TempDir()
	dirs := mkdirs(t, root, "a", "doomed", "c")

	h := New("t1", fsq.NewOS(), nil)
	require.NoError(t, h.NavigateTo(dirs[0]))
	require.NoError(t, h.NavigateTo(dirs[1]))
	require.NoError(t, h.NavigateTo(dirs[2]))

	// The middle entry vanishes before the user goes back.
	require.NoError(t, os.Remove(dirs[1]))

	require.NoError(t, h.Back())
	require.Equal(t, dirs[0], h.CurrentPath())
}

func TestBackNoOpWhenAllEntriesStale(t *testing.T) {
	root := t.TempDir()
	dirs := mkdirs(t, root, "a", "b")

	h := New("t1", fsq.NewOS(), nil)
	require.NoError(t, h.NavigateTo(dirs[0]))
	require.NoError(t, h.NavigateTo(dirs[1]))

	require.NoError(t, os.Remove(dirs[0]))

	// The only back entry is gone: no error, position unchanged.
	require.NoError(t, h.Back())
	require.Equal(t, dirs[1], h.CurrentPath())
	require.False(t, h.CanBack())
}

func TestBackEmptyStackNoOp(t *testing.T) {
	h := New("t1", fsq.NewOS(), nil)
	require.NoError(t, h.Back())
	require.NoError(t, h.Forward())
	require.Empty(t, h.CurrentPath())
}

func TestUp(t *testing.T) {
	root := t.TempDir()
	child := filepath.Join(root, "parent", "child")
	require.NoError(t, os.MkdirAll(child, 0o755))

	h := New("t1", fsq.NewOS(), nil)
	require.NoError(t, h.NavigateTo(child))
	require.NoError(t, h.Up())
	require.Equal(t, filepath.Join(root, "parent"), h.CurrentPath())

	// Up pushes like a normal navigation, so Back returns to the child.
	require.NoError(t, h.Back())
	require.Equal(t, child, h.CurrentPath())
}

func TestUpWithoutCurrentNoOp(t *testing.T) {
	h := New("t1", fsq.NewOS(), nil)
	require.NoError(t, h.Up())
	require.Empty(t, h.CurrentPath())
}

func TestNavigationEvents(t *testing.T) {
	root := t.TempDir()
	dirs := mkdirs(t, root, "a", "b")

	bus := notify.NewBus()
	var events []notify.NavigationChanged
	bus.Subscribe(func(ev notify.Event) {
		if n, ok := ev.(notify.NavigationChanged); ok {
			events = append(events, n)
		}
	})

	h := New("t1", fsq.NewOS(), bus)
	require.NoError(t, h.NavigateTo(dirs[0]))
	require.NoError(t, h.NavigateTo(dirs[1]))
	require.NoError(t, h.Back())
	require.NoError(t, h.Forward())

	require.Len(t, events, 4)
	require.Equal(t, notify.NavigateTo, events[0].Type)
	require.Equal(t, notify.NavigateBack, events[2].Type)
	require.Equal(t, notify.NavigateForward, events[3].Type)
	require.Equal(t, "t1", events[0].TabID)

	// No event for a no-op.
	count := len(events)
	require.NoError(t, h.Forward())
	require.Len(t, events, count)
}

func TestTabsRegistry(t *testing.T) {
	root := t.TempDir()
	dirs := mkdirs(t, root, "a", "b")

	tabs := NewTabs(fsq.NewOS(), nil)

	h1, err := tabs.Open("t1", dirs[0])
	require.NoError(t, err)
	require.Equal(t, dirs[0], h1.CurrentPath())

	_, err = tabs.Open("t1", dirs[1])
	require.Error(t, err)

	h2, err := tabs.Open("t2", dirs[1])
	require.NoError(t, err)
	require.Equal(t, 2, tabs.Len())

	// Tabs are independent: navigating one leaves the other alone.
	require.NoError(t, h2.NavigateTo(dirs[0]))
	require.Equal(t, dirs[0], h1.CurrentPath())
	require.True(t, h2.CanBack())
	require.False(t, h1.CanBack())

	paths := tabs.CurrentPaths()
	require.Equal(t, map[string]string{"t1": dirs[0], "t2": dirs[0]}, paths)

	tabs.Close("t1")
	require.Nil(t, tabs.Get("t1"))
	require.Equal(t, 1, tabs.Len())
}

func TestTabsOpenInvalidPath(t *testing.T) {
	tabs := NewTabs(fsq.NewOS(), nil)
	_, err := tabs.Open("t1", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	require.Equal(t, 0, tabs.Len())
}
