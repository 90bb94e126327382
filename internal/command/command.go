// Package command implements the reversible command engine: the Command
// contract, the concrete file-operation commands, bulk composition, and the
// undo/redo manager that sequences them.
package command

import (
	"context"
	"errors"
	"path/filepath"
	"time"

	"dirigent/internal/fileops"
)

// ErrNotUndoable is returned by Undo on commands that cannot be reversed,
// either inherently or because execution never captured the state needed.
var ErrNotUndoable = errors.New("command cannot be undone")

// Command is a reversible unit of work. Execute and Undo are each called at
// most once per direction by the manager; commands do not defend against
// double invocation themselves. A nil error means success; collaborator
// failures are returned, never panicked past the command boundary.
type Command interface {
	// Description is a short human-readable label for the operation.
	Description() string
	// Timestamp is the creation instant of the command.
	Timestamp() time.Time
	// CanUndo reports whether Undo is expected to work. It may be static or
	// computed from execution state.
	CanUndo() bool
	Execute(ctx context.Context) error
	Undo(ctx context.Context) error
}

// DirToucher is implemented by commands that know which directories their
// execution or undo modifies, so callers can refresh just those.
type DirToucher interface {
	TouchedDirs() []string
}

// base carries the fields every concrete command shares.
type base struct {
	desc string
	ts   time.Time
}

func newBase(desc string) base {
	return base{desc: desc, ts: time.Now()}
}

func (b base) Description() string   { return b.desc }
func (b base) Timestamp() time.Time { return b.ts }

// CreateFile creates an empty file; undo deletes it.
type CreateFile struct {
	base
	ops       fileops.Service
	parentDir string
	name      string

	createdPath string
}

// NewCreateFile builds a create-file command for name under parentDir.
func NewCreateFile(ops fileops.Service, parentDir, name string) *CreateFile {
	return &CreateFile{
		base:      newBase("Create file " + name),
		ops:       ops,
		parentDir: parentDir,
		name:      name,
	}
}

// CanUndo is true once execution has recorded the created path.
func (c *CreateFile) CanUndo() bool { return c.createdPath != "" }

// CreatedPath returns the path produced by the last Execute, or "".
func (c *CreateFile) CreatedPath() string { return c.createdPath }

func (c *CreateFile) TouchedDirs() []string { return []string{c.parentDir} }

func (c *CreateFile) Execute(ctx context.Context) error {
	path, err := c.ops.CreateFile(ctx, c.parentDir, c.name)
	if err != nil {
		return err
	}
	c.createdPath = path
	return nil
}

func (c *CreateFile) Undo(ctx context.Context) error {
	if c.createdPath == "" {
		return ErrNotUndoable
	}
	return c.ops.Delete(ctx, c.createdPath)
}

// CreateFolder creates a directory; undo deletes it.
type CreateFolder struct {
	base
	ops       fileops.Service
	parentDir string
	name      string

	createdPath string
}

// NewCreateFolder builds a create-folder command for name under parentDir.
func NewCreateFolder(ops fileops.Service, parentDir, name string) *CreateFolder {
	return &CreateFolder{
		base:      newBase("Create folder " + name),
		ops:       ops,
		parentDir: parentDir,
		name:      name,
	}
}

func (c *CreateFolder) CanUndo() bool { return c.createdPath != "" }

// CreatedPath returns the path produced by the last Execute, or "".
func (c *CreateFolder) CreatedPath() string { return c.createdPath }

func (c *CreateFolder) TouchedDirs() []string { return []string{c.parentDir} }

func (c *CreateFolder) Execute(ctx context.Context) error {
	path, err := c.ops.CreateFolder(ctx, c.parentDir, c.name)
	if err != nil {
		return err
	}
	c.createdPath = path
	return nil
}

func (c *CreateFolder) Undo(ctx context.Context) error {
	if c.createdPath == "" {
		return ErrNotUndoable
	}
	return c.ops.Delete(ctx, c.createdPath)
}

// Rename renames an item; undo renames it back.
type Rename struct {
	base
	ops     fileops.Service
	oldPath string
	newName string

	newPath string
}

// NewRename builds a rename command for path to newName.
func NewRename(ops fileops.Service, path, newName string) *Rename {
	return &Rename{
		base:    newBase("Rename " + filepath.Base(path) + " to " + newName),
		ops:     ops,
		oldPath: path,
		newName: newName,
	}
}

func (c *Rename) CanUndo() bool { return c.newPath != "" }

// NewPath returns the renamed path after a successful Execute, or "".
func (c *Rename) NewPath() string { return c.newPath }

func (c *Rename) TouchedDirs() []string { return []string{filepath.Dir(c.oldPath)} }

func (c *Rename) Execute(ctx context.Context) error {
	path, err := c.ops.Rename(ctx, c.oldPath, c.newName)
	if err != nil {
		return err
	}
	c.newPath = path
	return nil
}

func (c *Rename) Undo(ctx context.Context) error {
	if c.newPath == "" {
		return ErrNotUndoable
	}
	if _, err := c.ops.Rename(ctx, c.newPath, filepath.Base(c.oldPath)); err != nil {
		return err
	}
	return nil
}

// Delete removes an item permanently. It is not reversible: best-effort
// per-item undo does not extend to restoring deleted content.
type Delete struct {
	base
	ops  fileops.Service
	path string
}

// NewDelete builds a delete command for path.
func NewDelete(ops fileops.Service, path string) *Delete {
	return &Delete{
		base: newBase("Delete " + filepath.Base(path)),
		ops:  ops,
		path: path,
	}
}

func (c *Delete) CanUndo() bool { return false }

func (c *Delete) TouchedDirs() []string { return []string{filepath.Dir(c.path)} }

func (c *Delete) Execute(ctx context.Context) error {
	return c.ops.Delete(ctx, c.path)
}

func (c *Delete) Undo(ctx context.Context) error {
	return ErrNotUndoable
}

// Copy copies an item into a directory; undo deletes the copy.
type Copy struct {
	base
	ops     fileops.Service
	src     string
	destDir string

	copiedPath string
}

// NewCopy builds a copy command for src into destDir.
func NewCopy(ops fileops.Service, src, destDir string) *Copy {
	return &Copy{
		base:    newBase("Copy " + filepath.Base(src)),
		ops:     ops,
		src:     src,
		destDir: destDir,
	}
}

func (c *Copy) CanUndo() bool { return c.copiedPath != "" }

// CopiedPath returns the destination path after a successful Execute, or "".
func (c *Copy) CopiedPath() string { return c.copiedPath }

func (c *Copy) TouchedDirs() []string { return []string{c.destDir} }

func (c *Copy) Execute(ctx context.Context) error {
	path, err := c.ops.Copy(ctx, c.src, c.destDir)
	if err != nil {
		return err
	}
	c.copiedPath = path
	return nil
}

func (c *Copy) Undo(ctx context.Context) error {
	if c.copiedPath == "" {
		return ErrNotUndoable
	}
	return c.ops.Delete(ctx, c.copiedPath)
}

// Move moves an item into a directory; undo moves it back.
type Move struct {
	base
	ops     fileops.Service
	src     string
	destDir string

	movedPath string
}

// NewMove builds a move command for src into destDir.
func NewMove(ops fileops.Service, src, destDir string) *Move {
	return &Move{
		base:    newBase("Move " + filepath.Base(src)),
		ops:     ops,
		src:     src,
		destDir: destDir,
	}
}

func (c *Move) CanUndo() bool { return c.movedPath != "" }

// MovedPath returns the destination path after a successful Execute, or "".
func (c *Move) MovedPath() string { return c.movedPath }

func (c *Move) TouchedDirs() []string { return []string{filepath.Dir(c.src), c.destDir} }

func (c *Move) Execute(ctx context.Context) error {
	path, err := c.ops.Move(ctx, c.src, c.destDir)
	if err != nil {
		return err
	}
	c.movedPath = path
	return nil
}

func (c *Move) Undo(ctx context.Context) error {
	if c.movedPath == "" {
		return ErrNotUndoable
	}
	if _, err := c.ops.Move(ctx, c.movedPath, filepath.Dir(c.src)); err != nil {
		return err
	}
	return nil
}
