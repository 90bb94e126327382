// Package fileops implements the file operation service consumed by the
// reversible commands. Commands never touch the file system themselves; they
// call this contract and record the returned paths for undo.
package fileops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dirigent/internal/logging"
)

// Validation errors, rejected before any file-system mutation.
var (
	ErrEmptyName   = errors.New("name is empty")
	ErrInvalidName = errors.New("name contains invalid characters")
	ErrEmptyPath   = errors.New("path is empty")
)

// invalidNameChars are rejected in file and folder names. The set matches
// Windows restrictions so trees stay portable across platforms.
const invalidNameChars = `<>:"/\|?*`

// Service performs the concrete file operations. All methods return the
// resulting path (where one exists) so callers can build reversible commands.
type Service interface {
	CreateFile(ctx context.Context, parentDir, name string) (string, error)
	CreateFolder(ctx context.Context, parentDir, name string) (string, error)
	// Rename renames the item in place and returns the new path.
	Rename(ctx context.Context, path, newName string) (string, error)
	Delete(ctx context.Context, path string) error
	// Copy copies a file or directory into destDir, picking a unique name on
	// collision, and returns the destination path.
	Copy(ctx context.Context, src, destDir string) (string, error)
	// Move moves a file or directory into destDir and returns the new path.
	Move(ctx context.Context, src, destDir string) (string, error)
}

// Common file permission modes
const (
	DirPermission  = 0o755
	FilePermission = 0o644
)

// Local is the Service implementation over the local file system.
type Local struct{}

// NewLocal returns a local file-system Service.
func NewLocal() Local { return Local{} }

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if strings.ContainsAny(name, invalidNameChars) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// pathExists checks if a path exists on the filesystem.
func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// uniquePath returns candidate if free, otherwise appends " (N)" before the
// extension until the name is unused.
func uniquePath(candidate string) string {
	if !pathExists(candidate) {
		return candidate
	}
	dir := filepath.Dir(candidate)
	ext := filepath.Ext(candidate)
	base := strings.TrimSuffix(filepath.Base(candidate), ext)
	for i := 1; ; i++ {
		next := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, i, ext))
		if !pathExists(next) {
			return next
		}
	}
}

func (Local) CreateFile(ctx context.Context, parentDir, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	if !pathExists(parentDir) {
		return "", fmt.Errorf("parent directory %q does not exist", parentDir)
	}

	path := uniquePath(filepath.Join(parentDir, name))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, FilePermission)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	f.Close()
	logging.Debug("created file", "path", path)
	return path, nil
}

func (Local) CreateFolder(ctx context.Context, parentDir, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateName(name); err != nil {
		return "", err
	}
	if !pathExists(parentDir) {
		return "", fmt.Errorf("parent directory %q does not exist", parentDir)
	}

	path := uniquePath(filepath.Join(parentDir, name))
	if err := os.Mkdir(path, DirPermission); err != nil {
		return "", fmt.Errorf("create folder: %w", err)
	}
	logging.Debug("created folder", "path", path)
	return path, nil
}

func (Local) Rename(ctx context.Context, path, newName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		return "", ErrEmptyPath
	}
	if err := validateName(newName); err != nil {
		return "", err
	}
	if !pathExists(path) {
		return "", fmt.Errorf("rename: %q does not exist", path)
	}

	newPath := filepath.Join(filepath.Dir(path), newName)
	if pathExists(newPath) {
		return "", fmt.Errorf("rename: %q already exists", newPath)
	}
	if err := os.Rename(path, newPath); err != nil {
		return "", fmt.Errorf("rename: %w", err)
	}
	logging.Debug("renamed", "from", path, "to", newPath)
	return newPath, nil
}

func (Local) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if path == "" {
		return ErrEmptyPath
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	if info.IsDir() {
		err = os.RemoveAll(path)
	} else {
		err = os.Remove(path)
	}
	if err != nil {
		return fmt.Errorf("delete: %w", err)
	}
	logging.Debug("deleted", "path", path)
	return nil
}

func (l Local) Copy(ctx context.Context, src, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if src == "" {
		return "", ErrEmptyPath
	}
	srcInfo, err := os.Stat(src)
	if err != nil {
		return "", fmt.Errorf("copy: %w", err)
	}

	dst := uniquePath(filepath.Join(destDir, filepath.Base(src)))
	if srcInfo.IsDir() {
		err = copyDir(ctx, src, dst)
	} else {
		err = copyFile(src, dst, srcInfo.Mode())
	}
	if err != nil {
		return "", fmt.Errorf("copy: %w", err)
	}
	logging.Debug("copied", "from", src, "to", dst)
	return dst, nil
}

func (Local) Move(ctx context.Context, src, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if src == "" {
		return "", ErrEmptyPath
	}
	if !pathExists(src) {
		return "", fmt.Errorf("move: %q does not exist", src)
	}

	dst := filepath.Join(destDir, filepath.Base(src))
	if pathExists(dst) {
		return "", fmt.Errorf("move: %q already exists", dst)
	}
	if err := os.Rename(src, dst); err != nil {
		// Cross-device moves cannot rename; fall back to copy + delete.
		info, statErr := os.Stat(src)
		if statErr != nil {
			return "", fmt.Errorf("move: %w", err)
		}
		if info.IsDir() {
			err = copyDir(ctx, src, dst)
		} else {
			err = copyFile(src, dst, info.Mode())
		}
		if err != nil {
			return "", fmt.Errorf("move: %w", err)
		}
		if err := os.RemoveAll(src); err != nil {
			return "", fmt.Errorf("move: remove source: %w", err)
		}
	}
	logging.Debug("moved", "from", src, "to", dst)
	return dst, nil
}
