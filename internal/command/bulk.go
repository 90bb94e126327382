package command

import (
	"context"
	"fmt"
	"strings"
	"time"

	"dirigent/internal/logging"
)

// MemberFailure records one failed member inside a bulk command.
type MemberFailure struct {
	Index       int
	Description string
	Err         error
}

// BulkError aggregates member failures from a bulk execute or undo.
type BulkError struct {
	Op       string // "execute" or "undo"
	Failures []MemberFailure
}

func (e *BulkError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "bulk %s: %d member(s) failed:", e.Op, len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&sb, " [%d] %s: %v;", f.Index, f.Description, f.Err)
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Bulk groups an ordered sequence of commands into a single undo-stack
// entry. Execution is best-effort: every member is attempted even when an
// earlier one fails, and the bulk counts as executed when at least one
// member succeeded. Undo runs in reverse order, skipping members that never
// succeeded or cannot be undone.
type Bulk struct {
	base
	members   []Command
	succeeded []bool
	failures  []MemberFailure
	executed  bool
}

// NewBulk builds a bulk command over members. The description labels the
// whole group on the undo stack.
func NewBulk(description string, members ...Command) *Bulk {
	return &Bulk{
		base:      newBase(description),
		members:   members,
		succeeded: make([]bool, len(members)),
	}
}

// Timestamp of a bulk is its construction time, not any member's.
func (b *Bulk) Timestamp() time.Time { return b.ts }

// Len returns the number of member commands.
func (b *Bulk) Len() int { return len(b.members) }

// CanUndo is true only when every member supports undo.
func (b *Bulk) CanUndo() bool {
	for _, m := range b.members {
		if !m.CanUndo() {
			return false
		}
	}
	return len(b.members) > 0
}

// TouchedDirs unions the directories touched by members that expose them.
func (b *Bulk) TouchedDirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for _, m := range b.members {
		dt, ok := m.(DirToucher)
		if !ok {
			continue
		}
		for _, dir := range dt.TouchedDirs() {
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
	}
	return dirs
}

// Execute runs every member in order. A cancellation stops further members
// from being issued but keeps the bookkeeping for those already completed.
// The bulk succeeds when at least one member succeeded: a BulkError is
// returned only when every member failed, and partially successful runs
// return nil with the failed members available from PartialFailures.
func (b *Bulk) Execute(ctx context.Context) error {
	b.failures = nil
	successes := 0

	for i, m := range b.members {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(b.members); j++ {
				b.failures = append(b.failures, MemberFailure{Index: j, Description: b.members[j].Description(), Err: err})
			}
			b.executed = successes > 0
			return err
		}
		if err := m.Execute(ctx); err != nil {
			logging.Warn("bulk member failed", "index", i, "op", m.Description(), "err", err)
			b.failures = append(b.failures, MemberFailure{Index: i, Description: m.Description(), Err: err})
			continue
		}
		b.succeeded[i] = true
		successes++
	}

	b.executed = successes > 0
	if successes == 0 {
		return &BulkError{Op: "execute", Failures: b.failures}
	}
	return nil
}

// PartialFailures reports the members that failed or were never attempted
// during the last Execute, each with the error that stopped it. Empty when
// every member succeeded.
func (b *Bulk) PartialFailures() []MemberFailure {
	return append([]MemberFailure(nil), b.failures...)
}

// Undo reverses members in reverse order. Members that never succeeded or
// report CanUndo false are skipped without affecting the result. A member
// undo failure is recorded and the loop continues; the overall undo fails
// only if an attempted member undo failed.
func (b *Bulk) Undo(ctx context.Context) error {
	if !b.executed {
		return ErrNotUndoable
	}

	var failures []MemberFailure
	for i := len(b.members) - 1; i >= 0; i-- {
		m := b.members[i]
		if !b.succeeded[i] || !m.CanUndo() {
			continue
		}
		if err := m.Undo(ctx); err != nil {
			logging.Warn("bulk member undo failed", "index", i, "op", m.Description(), "err", err)
			failures = append(failures, MemberFailure{Index: i, Description: m.Description(), Err: err})
		}
	}

	if len(failures) > 0 {
		return &BulkError{Op: "undo", Failures: failures}
	}
	return nil
}
