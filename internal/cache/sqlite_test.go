package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteDurable {
	t.Helper()
	d, err := OpenSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSQLiteDurable_RoundTrip(t *testing.T) {
	d := openTestSQLite(t)

	expiresAt := time.Now().Add(time.Hour).Truncate(time.Millisecond)
	require.NoError(t, d.Set("k", []byte("value"), expiresAt))

	value, got, err := d.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)
	assert.True(t, got.Equal(expiresAt), "expiry timestamp must round-trip")
}

func TestSQLiteDurable_GetMissing(t *testing.T) {
	d := openTestSQLite(t)

	_, _, err := d.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteDurable_Upsert(t *testing.T) {
	d := openTestSQLite(t)

	require.NoError(t, d.Set("k", []byte("old"), time.Now().Add(time.Minute)))
	require.NoError(t, d.Set("k", []byte("new"), time.Now().Add(time.Hour)))

	value, _, err := d.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), value)
}

func TestSQLiteDurable_Keys(t *testing.T) {
	d := openTestSQLite(t)

	keys, err := d.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)

	require.NoError(t, d.Set("a", []byte("1"), time.Now().Add(time.Minute)))
	require.NoError(t, d.Set("b", []byte("2"), time.Now().Add(time.Minute)))

	keys, err = d.Keys()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, keys)
}

func TestSQLiteDurable_Delete(t *testing.T) {
	d := openTestSQLite(t)

	require.NoError(t, d.Set("k", []byte("v"), time.Now().Add(time.Minute)))
	require.NoError(t, d.Delete("k"))

	_, _, err := d.Get("k")
	assert.ErrorIs(t, err, ErrNotFound)

	// Deleting an absent key is not an error.
	require.NoError(t, d.Delete("k"))
}

func TestSQLiteDurable_PurgeExpired(t *testing.T) {
	d := openTestSQLite(t)

	now := time.Now()
	require.NoError(t, d.Set("dead", []byte("1"), now.Add(-time.Minute)))
	require.NoError(t, d.Set("live", []byte("2"), now.Add(time.Hour)))

	require.NoError(t, d.PurgeExpired(now))

	keys, err := d.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"live"}, keys)
}

func TestSQLiteDurable_Clear(t *testing.T) {
	d := openTestSQLite(t)

	require.NoError(t, d.Set("a", []byte("1"), time.Now().Add(time.Minute)))
	require.NoError(t, d.Clear())

	keys, err := d.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}
