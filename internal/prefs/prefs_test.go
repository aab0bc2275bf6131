package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/FrankDatema/MindHop/internal/logx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Store {
	t.Helper()

	fs, err := NewFileStore(t.TempDir(), logx.Discard())
	require.NoError(t, err)

	ss, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
		"sqlite": ss,
	}
}

func TestStore_StringIntRoundTrip(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := s.String("missing")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.SetString("ChoreSpawnData", `{"records":[]}`))
			v, ok, err := s.String("ChoreSpawnData")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"records":[]}`, v)

			n, err := MaxDays(s, "Dishes")
			require.NoError(t, err)
			assert.Equal(t, DefaultMaxDays, n)

			require.NoError(t, s.SetInt(MaxDaysKey("Dishes"), 4))
			n, err = MaxDays(s, "Dishes")
			require.NoError(t, err)
			assert.Equal(t, 4, n)

			require.NoError(t, s.SetString("DishesMaxDays", "4"))
			n, ok, err = LookupInt(s, "DishesMaxDays")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, 4, n)

			keys, err := s.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"ChoreSpawnData", "DishesMaxDays"}, keys)

			require.NoError(t, s.Delete("DishesMaxDays"))
			_, ok, err = LookupInt(s, "DishesMaxDays")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, s.Flush())
		})
	}
}

func TestStore_IntRejectsGarbage(t *testing.T) {
	s := NewMemoryStore()
	require.NoError(t, s.SetString("k", "nope"))

	n, err := s.Int("k", 7)
	assert.Error(t, err)
	assert.Equal(t, 7, n)

	_, ok, err := LookupInt(s, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileStore_FlushPersistsAcrossOpen(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir, logx.Discard())
	require.NoError(t, err)
	require.NoError(t, s.SetInt("LaundryMaxDays", 3))
	require.NoError(t, s.Flush())

	reopened, err := NewFileStore(dir, logx.Discard())
	require.NoError(t, err)
	n, err := MaxDays(reopened, "Laundry")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStore_CorruptFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "prefs.json"), []byte("{not json"), 0o644))

	s, err := NewFileStore(dir, logx.Discard())
	require.NoError(t, err)
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestOpen_Drivers(t *testing.T) {
	dir := t.TempDir()
	for _, driver := range []string{"", DriverFile, DriverMemory, DriverSQLite} {
		s, closeFn, err := Open(driver, dir, filepath.Join(dir, "db", "mindhop.db"), logx.Discard())
		require.NoError(t, err, driver)
		require.NotNil(t, s)
		require.NoError(t, closeFn())
	}

	_, closeFn, err := Open("redis", dir, "", nil)
	assert.Error(t, err)
	assert.NotNil(t, closeFn)
}
