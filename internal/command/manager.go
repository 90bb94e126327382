package command

import (
	"context"
	"sync"

	"dirigent/internal/logging"
	"dirigent/internal/notify"
)

// DefaultMaxStackSize bounds the undo stack when no explicit limit is given.
const DefaultMaxStackSize = 50

// Manager owns the undo and redo stacks. Exactly one execute/undo/redo runs
// at a time per instance; concurrent calls serialize on an internal mutex so
// stack mutations never interleave. Every mutating call publishes an
// UndoRedoStateChanged event on the bus after it completes, including failed
// executes (a no-op-safe notification), so event-driven callers never need
// to special-case failure.
type Manager struct {
	mu           sync.Mutex
	undoStack    []Command
	redoStack    []Command
	maxStackSize int
	bus          *notify.Bus
}

// NewManager creates a manager publishing state changes on bus. maxStackSize
// values below 1 fall back to DefaultMaxStackSize.
func NewManager(maxStackSize int, bus *notify.Bus) *Manager {
	if maxStackSize < 1 {
		maxStackSize = DefaultMaxStackSize
	}
	return &Manager{maxStackSize: maxStackSize, bus: bus}
}

// Execute runs cmd. On success the command is pushed onto the undo stack
// (evicting the oldest entry past the stack bound) and the redo stack is
// cleared: a new execution invalidates any branching redo history. On
// failure, including cancellation, neither stack changes.
func (m *Manager) Execute(ctx context.Context, cmd Command) error {
	m.mu.Lock()
	err := cmd.Execute(ctx)
	if err == nil {
		// Cancellation during a nominally successful execute still counts
		// as failure for stack bookkeeping.
		err = ctx.Err()
	}
	if err == nil {
		m.undoStack = append(m.undoStack, cmd)
		if len(m.undoStack) > m.maxStackSize {
			m.undoStack = m.undoStack[len(m.undoStack)-m.maxStackSize:]
		}
		m.redoStack = nil
	} else {
		logging.Warn("command execute failed", "op", cmd.Description(), "err", err)
	}
	state := m.stateLocked()
	m.mu.Unlock()

	m.publish(state)
	return err
}

// Undo pops the newest command and reverses it, returning the command it
// acted on so callers can inspect what changed without a separate peek (a
// peek outside the lock could observe a different command). An empty stack
// is a no-op returning (nil, nil). On success the command moves to the redo
// stack; on failure it is dropped rather than restored, so a persistently
// failing undo cannot wedge the stack.
func (m *Manager) Undo(ctx context.Context) (Command, error) {
	m.mu.Lock()
	if len(m.undoStack) == 0 {
		m.mu.Unlock()
		logging.Debug("undo requested with empty stack")
		return nil, nil
	}
	cmd := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]

	err := cmd.Undo(ctx)
	if err == nil {
		m.redoStack = append(m.redoStack, cmd)
	} else {
		logging.Warn("undo failed, dropping command", "op", cmd.Description(), "err", err)
	}
	state := m.stateLocked()
	m.mu.Unlock()

	m.publish(state)
	return cmd, err
}

// Redo pops the newest undone command and re-executes it, returning the
// command it acted on. Mirror of Undo: success moves it back to the undo
// stack, failure drops it.
func (m *Manager) Redo(ctx context.Context) (Command, error) {
	m.mu.Lock()
	if len(m.redoStack) == 0 {
		m.mu.Unlock()
		logging.Debug("redo requested with empty stack")
		return nil, nil
	}
	cmd := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]

	err := cmd.Execute(ctx)
	if err == nil {
		m.undoStack = append(m.undoStack, cmd)
	} else {
		logging.Warn("redo failed, dropping command", "op", cmd.Description(), "err", err)
	}
	state := m.stateLocked()
	m.mu.Unlock()

	m.publish(state)
	return cmd, err
}

// Clear empties both stacks.
func (m *Manager) Clear() {
	m.mu.Lock()
	m.undoStack = nil
	m.redoStack = nil
	state := m.stateLocked()
	m.mu.Unlock()

	m.publish(state)
}

// CanUndo reports whether the undo stack is non-empty.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undoStack) > 0
}

// CanRedo reports whether the redo stack is non-empty.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.redoStack) > 0
}

// UndoDescription returns the label of the command Undo would reverse next.
func (m *Manager) UndoDescription() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.undoStack) == 0 {
		return ""
	}
	return m.undoStack[len(m.undoStack)-1].Description()
}

// RedoDescription returns the label of the command Redo would re-run next.
func (m *Manager) RedoDescription() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.redoStack) == 0 {
		return ""
	}
	return m.redoStack[len(m.redoStack)-1].Description()
}

func (m *Manager) stateLocked() notify.UndoRedoStateChanged {
	return notify.UndoRedoStateChanged{
		CanUndo: len(m.undoStack) > 0,
		CanRedo: len(m.redoStack) > 0,
	}
}

func (m *Manager) publish(state notify.UndoRedoStateChanged) {
	if m.bus != nil {
		m.bus.Publish(state)
	}
}
