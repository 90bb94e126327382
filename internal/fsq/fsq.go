// Package fsq provides the read-only file-system query service the
// navigation and refresh engines validate paths against. The engines never
// touch the file system directly; they depend on the Query contract so tests
// can substitute an in-memory tree.
package fsq

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Query answers existence and shape questions about paths.
type Query interface {
	// Exists reports whether the path is present on the file system.
	Exists(path string) bool
	// IsDirectory reports whether the path exists and is a directory.
	IsDirectory(path string) bool
	// ParentDirectory resolves the parent of path. ok is false at a
	// file-system root, where no distinct parent exists.
	ParentDirectory(path string) (parent string, ok bool)
}

// OS is the Query implementation backed by the real file system.
type OS struct{}

// NewOS returns a file-system backed Query.
func NewOS() OS { return OS{} }

func (OS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OS) IsDirectory(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func (OS) ParentDirectory(path string) (string, bool) {
	parent := filepath.Dir(path)
	if parent == path {
		return "", false
	}
	return parent, true
}

// ExpandPath expands and normalizes a path string, handling:
// - ~ for home directory
// - Relative paths (../, ./)
// - Absolute paths
// - Windows drive letters (C:, D:, etc.)
// Relative input is resolved against base.
func ExpandPath(input, base, home string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return base
	}

	// Handle home directory expansion
	if strings.HasPrefix(input, "~") {
		if input == "~" {
			return home
		}
		if strings.HasPrefix(input, "~/") || strings.HasPrefix(input, "~\\") {
			return filepath.Clean(filepath.Join(home, input[2:]))
		}
	}

	if IsAbsolutePath(input) {
		return filepath.Clean(input)
	}

	return filepath.Clean(filepath.Join(base, input))
}

// IsAbsolutePath checks if a path is absolute, handling both Unix and
// Windows paths.
func IsAbsolutePath(path string) bool {
	if len(path) == 0 {
		return false
	}

	// Unix absolute path
	if path[0] == '/' {
		return true
	}

	// Windows absolute path checks
	if runtime.GOOS == "windows" {
		// Drive letter paths: C:\, D:\, C:/, etc.
		if len(path) >= 2 && isLetter(path[0]) && path[1] == ':' {
			return true
		}
		// UNC paths: \\server\share
		if len(path) >= 2 && path[0] == '\\' && path[1] == '\\' {
			return true
		}
	}

	return false
}

// isLetter checks if a byte is an ASCII letter.
func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
