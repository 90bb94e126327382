package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	d := NewDB()
	require.NoError(t, d.Open(filepath.Join(t.TempDir(), "test.db")))
	t.Cleanup(d.Close)
	return d
}

func TestPinnedRoundTrip(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.AddPinned("/tmp/a"))
	require.NoError(t, d.AddPinned("/tmp/b"))
	require.NoError(t, d.AddPinned("/tmp/a")) // duplicate is a no-op

	paths, err := d.Pinned()
	require.NoError(t, err)
	assert.Equal(t, []string{"/tmp/a", "/tmp/b"}, paths)

	pinned, err := d.IsPinned("/tmp/a")
	require.NoError(t, err)
	assert.True(t, pinned)

	require.NoError(t, d.RemovePinned("/tmp/a"))
	pinned, err = d.IsPinned("/tmp/a")
	require.NoError(t, err)
	assert.False(t, pinned)
}

func TestRecentsOrderAndCount(t *testing.T) {
	d := openTestDB(t)

	require.NoError(t, d.TouchRecent("/tmp/a"))
	require.NoError(t, d.TouchRecent("/tmp/b"))
	require.NoError(t, d.TouchRecent("/tmp/a"))

	recents, err := d.Recents(10)
	require.NoError(t, err)
	require.Len(t, recents, 2)
	assert.Equal(t, "/tmp/a", recents[0].Path)
	assert.Equal(t, 2, recents[0].VisitCount)
	assert.Equal(t, "/tmp/b", recents[1].Path)
}

func TestRecentsLimitAndPrune(t *testing.T) {
	d := openTestDB(t)

	for _, p := range []string{"/tmp/1", "/tmp/2", "/tmp/3", "/tmp/4"} {
		require.NoError(t, d.TouchRecent(p))
	}

	recents, err := d.Recents(2)
	require.NoError(t, err)
	assert.Len(t, recents, 2)

	require.NoError(t, d.PruneRecents(3))
	recents, err = d.Recents(10)
	require.NoError(t, err)
	assert.Len(t, recents, 3)
}

func TestSettingsUpsert(t *testing.T) {
	d := openTestDB(t)

	v, err := d.Setting("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, d.SaveSetting("theme", "dark"))
	require.NoError(t, d.SaveSetting("theme", "light"))

	v, err = d.Setting("theme")
	require.NoError(t, err)
	assert.Equal(t, "light", v)

	all, err := d.Settings()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"theme": "light"}, all)
}
