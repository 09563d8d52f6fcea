package store

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Name  string `cbor:"n"`
	Count int    `cbor:"c"`
}

func newTestStore(t *testing.T, capacity int, opts ...Option[record]) *Store[record] {
	t.Helper()
	s, err := New(t.TempDir(), "records", capacity, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestInsertAndReadAcrossPages(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 3)
	for i := 0; i < 10; i++ {
		key, err := s.Insert(record{Name: strconv.Itoa(i), Count: i})
		require.NoError(t, err)
		assert.Equal(t, i, key, "auto keys are monotonic from zero")
	}
	require.Equal(t, 10, s.Len())

	// Reading an early key forces a page reload; reading a late key
	// forces the scan to wrap.
	for _, key := range []int{0, 9, 4, 7, 1} {
		v, found, err := s.Read(key)
		require.NoError(t, err)
		require.True(t, found, "key %d", key)
		assert.Equal(t, key, v.Count)
	}
}

func TestPageSpillFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	s, err := New[record](dir, "records", 2)
	require.NoError(t, err)
	defer s.Close()

	for i := 0; i < 5; i++ {
		_, err := s.Insert(record{Count: i})
		require.NoError(t, err)
	}

	// Pages 0 and 1 are full and must have spilled; page 2 is resident.
	for _, p := range []int{0, 1} {
		_, statErr := os.Stat(filepath.Join(dir, "records-000"+strconv.Itoa(p)+".page"))
		assert.NoError(t, statErr, "page %d should be on disk", p)
	}
}

func TestUpdateExistingAndFallbackInsert(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 2)
	key, err := s.Insert(record{Name: "original"})
	require.NoError(t, err)

	require.NoError(t, s.Update(key, record{Name: "changed"}))
	v, found, err := s.Read(key)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "changed", v.Name)

	// Update of an unknown key behaves as insert.
	require.NoError(t, s.Update(7, record{Name: "late"}))
	v, found, err = s.Read(7)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "late", v.Name)
	assert.Equal(t, 8, s.Len())
}

func TestUpdateSpilledRecord(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 2)
	for i := 0; i < 6; i++ {
		_, err := s.Insert(record{Count: i})
		require.NoError(t, err)
	}

	// Key 1 lives on a spilled page.
	require.NoError(t, s.Update(1, record{Name: "touched", Count: 100}))
	v, found, err := s.Read(1)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 100, v.Count)

	// The rest are unharmed after the page shuffle.
	v, found, err = s.Read(5)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 5, v.Count)
}

func TestReadMissingKey(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 2)
	_, found, err := s.Read(0)
	require.NoError(t, err, "an empty collection is not an error")
	assert.False(t, found)

	_, err = s.Insert(record{})
	require.NoError(t, err)
	_, found, err = s.Read(42)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestReadByIndex(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 2, WithIndex(func(r record) string { return r.Name }))
	for _, name := range []string{"alpha", "beta", "gamma", "delta"} {
		_, err := s.Insert(record{Name: name})
		require.NoError(t, err)
	}

	key, v, found, err := s.ReadByIndex("gamma")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, key)
	assert.Equal(t, "gamma", v.Name)

	_, _, found, err = s.ReadByIndex("missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestAllOrdered(t *testing.T) {
	t.Parallel()

	s := newTestStore(t, 3)
	const n = 8
	for i := 0; i < n; i++ {
		_, err := s.Insert(record{Count: i * 10})
		require.NoError(t, err)
	}

	var keys []int
	err := s.All(func(key int, v record) error {
		assert.Equal(t, key*10, v.Count)
		keys = append(keys, key)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, keys, n)
	for i, k := range keys {
		assert.Equal(t, i, k, "iteration is in key order")
	}
}
