package command

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"dirigent/internal/notify"
)

// spy is a scriptable command for exercising the manager's stack discipline.
type spy struct {
	desc     string
	ts       time.Time
	undoable bool

	execErr error
	undoErr error

	execCalls int
	undoCalls int
	log       *[]string
}

func newSpy(desc string, log *[]string) *spy {
	return &spy{desc: desc, ts: time.Now(), undoable: true, log: log}
}

func (s *spy) Description() string   { return s.desc }
func (s *spy) Timestamp() time.Time  { return s.ts }
func (s *spy) CanUndo() bool         { return s.undoable }

func (s *spy) Execute(context.Context) error {
	s.execCalls++
	if s.log != nil {
		*s.log = append(*s.log, "exec:"+s.desc)
	}
	return s.execErr
}

func (s *spy) Undo(context.Context) error {
	s.undoCalls++
	if s.log != nil {
		*s.log = append(*s.log, "undo:"+s.desc)
	}
	return s.undoErr
}

func collectStates(bus *notify.Bus) *[]notify.UndoRedoStateChanged {
	states := &[]notify.UndoRedoStateChanged{}
	bus.Subscribe(func(ev notify.Event) {
		if s, ok := ev.(notify.UndoRedoStateChanged); ok {
			*states = append(*states, s)
		}
	})
	return states
}

func TestExecutePushesAndClearsRedo(t *testing.T) {
	bus := notify.NewBus()
	states := collectStates(bus)
	m := NewManager(10, bus)
	ctx := context.Background()

	a, b := newSpy("a", nil), newSpy("b", nil)
	require.NoError(t, m.Execute(ctx, a))
	require.NoError(t, m.Execute(ctx, b))
	require.True(t, m.CanUndo())
	require.False(t, m.CanRedo())

	undone, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Same(t, b, undone)
	require.True(t, m.CanRedo())

	// A fresh execution invalidates the redo branch.
	c := newSpy("c", nil)
	require.NoError(t, m.Execute(ctx, c))
	require.False(t, m.CanRedo())

	// Every mutation announced a state.
	require.Len(t, *states, 4)
	last := (*states)[len(*states)-1]
	require.True(t, last.CanUndo)
	require.False(t, last.CanRedo)
}

func TestRedoClearedAfterEveryExecute(t *testing.T) {
	m := NewManager(10, notify.NewBus())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, m.Execute(ctx, newSpy("cmd", nil)))
		require.False(t, m.CanRedo())
	}
}

func TestExecuteFailureLeavesStacksAlone(t *testing.T) {
	bus := notify.NewBus()
	states := collectStates(bus)
	m := NewManager(10, bus)
	ctx := context.Background()

	require.NoError(t, m.Execute(ctx, newSpy("ok", nil)))
	_, err := m.Undo(ctx)
	require.NoError(t, err)
	require.True(t, m.CanRedo())

	failing := newSpy("bad", nil)
	failing.execErr = errors.New("disk melted")
	require.Error(t, m.Execute(ctx, failing))

	// Stacks unchanged by the failure: redo entry still present.
	require.False(t, m.CanUndo())
	require.True(t, m.CanRedo())

	// The failed execute still announced (a no-op-safe notification).
	require.Len(t, *states, 3)
}

func TestCancelledExecuteCountsAsFailure(t *testing.T) {
	m := NewManager(10, notify.NewBus())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Execute(ctx, newSpy("cancelled", nil))
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, m.CanUndo())
}

func TestUndoRedoRoundTrip(t *testing.T) {
	m := NewManager(10, notify.NewBus())
	ctx := context.Background()

	x := newSpy("x", nil)
	require.NoError(t, m.Execute(ctx, x))
	afterExec := []bool{m.CanUndo(), m.CanRedo()}

	undone, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Same(t, x, undone)

	redone, err := m.Redo(ctx)
	require.NoError(t, err)
	require.Same(t, x, redone)

	require.Equal(t, afterExec, []bool{m.CanUndo(), m.CanRedo()})
}

func TestUndoFailureDropsCommand(t *testing.T) {
	m := NewManager(10, notify.NewBus())
	ctx := context.Background()

	bad := newSpy("bad-undo", nil)
	bad.undoErr = errors.New("cannot revert")
	require.NoError(t, m.Execute(ctx, bad))

	cmd, err := m.Undo(ctx)
	require.Error(t, err)
	require.Same(t, bad, cmd) // the failing command is still reported
	// Not restored to the undo stack, not promoted to redo: gone entirely,
	// so a repeated failing undo loop is impossible.
	require.False(t, m.CanUndo())
	require.False(t, m.CanRedo())
	require.Equal(t, 1, bad.undoCalls)

	// Empty stack is a quiet no-op.
	cmd, err = m.Undo(ctx)
	require.NoError(t, err)
	require.Nil(t, cmd)
}

func TestRedoFailureDropsCommand(t *testing.T) {
	m := NewManager(10, notify.NewBus())
	ctx := context.Background()

	cmd := newSpy("flaky", nil)
	require.NoError(t, m.Execute(ctx, cmd))
	_, err := m.Undo(ctx)
	require.NoError(t, err)

	cmd.execErr = errors.New("second time unlucky")
	_, err = m.Redo(ctx)
	require.Error(t, err)
	require.False(t, m.CanUndo())
	require.False(t, m.CanRedo())
}

func TestMaxStackSizeEvictsOldest(t *testing.T) {
	m := NewManager(3, notify.NewBus())
	ctx := context.Background()

	cmds := make([]*spy, 4)
	for i, name := range []string{"c0", "c1", "c2", "c3"} {
		cmds[i] = newSpy(name, nil)
		require.NoError(t, m.Execute(ctx, cmds[i]))
	}

	// Oldest entry evicted: undoing three times drains the stack without
	// ever reaching c0.
	var undone []string
	for m.CanUndo() {
		cmd, err := m.Undo(ctx)
		require.NoError(t, err)
		undone = append(undone, cmd.Description())
	}
	require.Equal(t, []string{"c3", "c2", "c1"}, undone)
	require.Equal(t, 0, cmds[0].undoCalls)
}

func TestClear(t *testing.T) {
	bus := notify.NewBus()
	states := collectStates(bus)
	m := NewManager(10, bus)
	ctx := context.Background()

	require.NoError(t, m.Execute(ctx, newSpy("a", nil)))
	require.NoError(t, m.Execute(ctx, newSpy("b", nil)))
	_, err := m.Undo(ctx)
	require.NoError(t, err)

	m.Clear()
	require.False(t, m.CanUndo())
	require.False(t, m.CanRedo())

	last := (*states)[len(*states)-1]
	require.Equal(t, notify.UndoRedoStateChanged{CanUndo: false, CanRedo: false}, last)
}

func TestDescriptions(t *testing.T) {
	m := NewManager(10, notify.NewBus())
	ctx := context.Background()

	require.Empty(t, m.UndoDescription())
	require.NoError(t, m.Execute(ctx, newSpy("rename", nil)))
	require.Equal(t, "rename", m.UndoDescription())

	_, err := m.Undo(ctx)
	require.NoError(t, err)
	require.Equal(t, "rename", m.RedoDescription())
}
