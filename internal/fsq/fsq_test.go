package fsq

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOSQuery(t *testing.T) {
	tmp := t.TempDir()
	file := filepath.Join(tmp, "a.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	q := NewOS()

	require.True(t, q.Exists(tmp))
	require.True(t, q.Exists(file))
	require.False(t, q.Exists(filepath.Join(tmp, "missing")))

	require.True(t, q.IsDirectory(tmp))
	require.False(t, q.IsDirectory(file))
	require.False(t, q.IsDirectory(filepath.Join(tmp, "missing")))

	parent, ok := q.ParentDirectory(file)
	require.True(t, ok)
	require.Equal(t, tmp, parent)

	_, ok = q.ParentDirectory("/")
	require.False(t, ok)
}

func TestExpandPath(t *testing.T) {
	base := "/base/dir"
	home := "/home/user"

	cases := []struct {
		input    string
		expected string
	}{
		{"", base},
		{"~", home},
		{"~/docs", "/home/user/docs"},
		{"/abs/path", "/abs/path"},
		{"/abs/../other", "/other"},
		{"child", "/base/dir/child"},
		{"../sibling", "/base/sibling"},
		{"  /padded  ", "/padded"},
	}

	for _, tc := range cases {
		require.Equal(t, tc.expected, ExpandPath(tc.input, base, home), "input %q", tc.input)
	}
}

func TestIsAbsolutePath(t *testing.T) {
	require.True(t, IsAbsolutePath("/"))
	require.True(t, IsAbsolutePath("/usr/bin"))
	require.False(t, IsAbsolutePath(""))
	require.False(t, IsAbsolutePath("relative/path"))
}
