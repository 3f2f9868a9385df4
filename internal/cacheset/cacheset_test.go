// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package cacheset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFIFOEvictsOldestBeyondCapacity(t *testing.T) {
	s := New[int](4)
	for i := 0; i < 5; i++ {
		s.Insert(i)
	}
	require.False(t, s.Seen(0))
	for i := 1; i < 5; i++ {
		require.True(t, s.Seen(i))
	}
	require.Equal(t, 4, s.Len())
}

func TestInsertDuplicateIsNoOp(t *testing.T) {
	s := New[string](2)
	require.True(t, s.Insert("a"))
	require.False(t, s.Insert("a"))
	require.Equal(t, 1, s.Len())
}
