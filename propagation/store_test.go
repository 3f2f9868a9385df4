// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package propagation

import (
	"crypto/sha256"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func idFor(b byte) [32]byte {
	return sha256.Sum256([]byte{b})
}

func TestStorePutGetDelete(t *testing.T) {
	s := openTestStore(t)
	now := time.Unix(1_700_000_000, 0)

	id := idFor(1)
	require.NoError(t, s.Put(id, []byte("payload-1"), now))
	require.Equal(t, 1, s.Len())

	got, ok, err := s.Get(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload-1"), got)

	require.NoError(t, s.Delete(id))
	require.Equal(t, 0, s.Len())

	_, ok, err = s.Get(id)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, ok, err := s.Get(idFor(99))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStorePutOverwritePreservesInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	base := time.Unix(1_700_000_000, 0)

	idA := idFor(1)
	idB := idFor(2)
	require.NoError(t, s.Put(idA, []byte("a-v1"), base))
	require.NoError(t, s.Put(idB, []byte("b-v1"), base.Add(time.Second)))

	// Overwriting A later must not move it ahead of B in eviction order.
	require.NoError(t, s.Put(idA, []byte("a-v2"), base.Add(time.Hour)))
	require.Equal(t, 2, s.Len())

	evicted, err := s.EvictToCapacity(1)
	require.NoError(t, err)
	require.Equal(t, 1, evicted)

	_, ok, err := s.Get(idA)
	require.NoError(t, err)
	require.False(t, ok, "oldest-inserted entry should have been evicted despite the later overwrite")

	gotB, ok, err := s.Get(idB)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("b-v1"), gotB)
}

func TestStoreEvictToCapacityOldestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Unix(1_700_000_000, 0)

	for i := byte(0); i < 5; i++ {
		require.NoError(t, s.Put(idFor(i), []byte{i}, base.Add(time.Duration(i)*time.Second)))
	}
	require.Equal(t, 5, s.Len())

	evicted, err := s.EvictToCapacity(2)
	require.NoError(t, err)
	require.Equal(t, 3, evicted)
	require.Equal(t, 2, s.Len())

	// The two newest entries (3 and 4) should remain.
	_, ok, err := s.Get(idFor(3))
	require.NoError(t, err)
	require.True(t, ok)
	_, ok, err = s.Get(idFor(4))
	require.NoError(t, err)
	require.True(t, ok)

	_, ok, err = s.Get(idFor(0))
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreEvictToCapacityNoOpWhenUnderLimit(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Put(idFor(1), []byte("x"), time.Unix(1_700_000_000, 0)))

	evicted, err := s.EvictToCapacity(10)
	require.NoError(t, err)
	require.Equal(t, 0, evicted)
	require.Equal(t, 1, s.Len())
}

func TestStoreReopenRecountsEntries(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, s.Put(idFor(1), []byte("x"), time.Unix(1_700_000_000, 0)))
	require.NoError(t, s.Put(idFor(2), []byte("y"), time.Unix(1_700_000_001, 0)))
	require.NoError(t, s.Close())

	reopened, err := Open(dir)
	require.NoError(t, err)
	defer reopened.Close()
	require.Equal(t, 2, reopened.Len())
}
