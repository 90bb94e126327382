package app

import (
	"context"
	"fmt"

	"dirigent/internal/command"
)

// CreateFile creates an empty file through the command engine and returns
// the created path. The enclosing directory gets a refresh on success.
func (o *Orchestrator) CreateFile(ctx context.Context, parentDir, name string) (string, error) {
	cmd := command.NewCreateFile(o.ops, parentDir, name)
	if err := o.commands.Execute(ctx, cmd); err != nil {
		return "", err
	}
	o.requestOperationRefresh(cmd)
	return cmd.CreatedPath(), nil
}

// CreateFolder creates a directory through the command engine.
func (o *Orchestrator) CreateFolder(ctx context.Context, parentDir, name string) (string, error) {
	cmd := command.NewCreateFolder(o.ops, parentDir, name)
	if err := o.commands.Execute(ctx, cmd); err != nil {
		return "", err
	}
	o.requestOperationRefresh(cmd)
	return cmd.CreatedPath(), nil
}

// Rename renames path to newName and returns the resulting path.
func (o *Orchestrator) Rename(ctx context.Context, path, newName string) (string, error) {
	cmd := command.NewRename(o.ops, path, newName)
	if err := o.commands.Execute(ctx, cmd); err != nil {
		return "", err
	}
	o.requestOperationRefresh(cmd)
	return cmd.NewPath(), nil
}

// Delete removes path permanently. Not reversible.
func (o *Orchestrator) Delete(ctx context.Context, path string) error {
	cmd := command.NewDelete(o.ops, path)
	if err := o.commands.Execute(ctx, cmd); err != nil {
		return err
	}
	o.requestOperationRefresh(cmd)
	return nil
}

// DeleteAll removes several paths as one undo-stack entry. Partial
// failures are reported through the returned BulkError while successful
// members stay deleted.
func (o *Orchestrator) DeleteAll(ctx context.Context, paths []string) error {
	members := make([]command.Command, len(paths))
	for i, p := range paths {
		members[i] = command.NewDelete(o.ops, p)
	}
	bulk := command.NewBulk(fmt.Sprintf("Delete %d items", len(paths)), members...)
	err := o.commands.Execute(ctx, bulk)
	if err == nil || len(bulk.PartialFailures()) < len(paths) {
		o.requestOperationRefresh(bulk)
	}
	return err
}

// Copy copies src into destDir and returns the destination path.
func (o *Orchestrator) Copy(ctx context.Context, src, destDir string) (string, error) {
	cmd := command.NewCopy(o.ops, src, destDir)
	if err := o.commands.Execute(ctx, cmd); err != nil {
		return "", err
	}
	o.requestOperationRefresh(cmd)
	return cmd.CopiedPath(), nil
}

// CopyAll copies several items into destDir as one undo-stack entry.
func (o *Orchestrator) CopyAll(ctx context.Context, srcs []string, destDir string) error {
	members := make([]command.Command, len(srcs))
	for i, s := range srcs {
		members[i] = command.NewCopy(o.ops, s, destDir)
	}
	bulk := command.NewBulk(fmt.Sprintf("Copy %d items", len(srcs)), members...)
	err := o.commands.Execute(ctx, bulk)
	if err == nil || len(bulk.PartialFailures()) < len(srcs) {
		o.requestOperationRefresh(bulk)
	}
	return err
}

// Move moves src into destDir and returns the destination path. Both the
// source and destination directories get refreshed.
func (o *Orchestrator) Move(ctx context.Context, src, destDir string) (string, error) {
	cmd := command.NewMove(o.ops, src, destDir)
	if err := o.commands.Execute(ctx, cmd); err != nil {
		return "", err
	}
	o.requestOperationRefresh(cmd)
	return cmd.MovedPath(), nil
}

// MoveAll moves several items into destDir as one undo-stack entry.
func (o *Orchestrator) MoveAll(ctx context.Context, srcs []string, destDir string) error {
	members := make([]command.Command, len(srcs))
	for i, s := range srcs {
		members[i] = command.NewMove(o.ops, s, destDir)
	}
	bulk := command.NewBulk(fmt.Sprintf("Move %d items", len(srcs)), members...)
	err := o.commands.Execute(ctx, bulk)
	if err == nil || len(bulk.PartialFailures()) < len(srcs) {
		o.requestOperationRefresh(bulk)
	}
	return err
}

// Undo reverses the most recent command and refreshes the directories it
// touched. No-op when the undo stack is empty.
func (o *Orchestrator) Undo(ctx context.Context) error {
	cmd, err := o.commands.Undo(ctx)
	if err != nil || cmd == nil {
		return err
	}
	o.requestOperationRefresh(cmd)
	return nil
}

// Redo re-runs the most recently undone command and refreshes the
// directories it touched.
func (o *Orchestrator) Redo(ctx context.Context) error {
	cmd, err := o.commands.Redo(ctx)
	if err != nil || cmd == nil {
		return err
	}
	o.requestOperationRefresh(cmd)
	return nil
}
