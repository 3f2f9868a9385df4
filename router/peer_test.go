// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package router

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeerTableObserveCreatesThenUpdates(t *testing.T) {
	pt := NewPeerTable()
	addr := []byte{0x01, 0x02, 0x03}
	t0 := time.Unix(1_700_000_000, 0)

	rec := pt.Observe(addr, t0, 3)
	require.Equal(t, t0, rec.FirstSeen)
	require.Equal(t, t0, rec.LastSeen)
	require.Equal(t, 3, rec.Hops)

	t1 := t0.Add(time.Minute)
	rec = pt.Observe(addr, t1, 1)
	require.Equal(t, t0, rec.FirstSeen, "FirstSeen must not change on re-observe")
	require.Equal(t, t1, rec.LastSeen)
	require.Equal(t, 1, rec.Hops)

	require.Equal(t, 1, pt.Len())
}

func TestPeerTableSetNameAndPeered(t *testing.T) {
	pt := NewPeerTable()
	addr := []byte{0xAA}
	pt.Observe(addr, time.Unix(1_700_000_000, 0), 0)

	pt.SetName(addr, "alice", "propagation_metadata")
	pt.SetPeered(addr, true)

	rec, ok := pt.Get(addr)
	require.True(t, ok)
	require.Equal(t, "alice", rec.Name)
	require.Equal(t, "propagation_metadata", rec.NameSource)
	require.True(t, rec.IsPeered)
}

func TestPeerTableSetNameOnUnknownPeerIsNoOp(t *testing.T) {
	pt := NewPeerTable()
	pt.SetName([]byte{0xBB}, "ghost", "raw_utf8")
	require.Equal(t, 0, pt.Len())
}

func TestPeerTableRemove(t *testing.T) {
	pt := NewPeerTable()
	addr := []byte{0x01}
	pt.Observe(addr, time.Unix(1_700_000_000, 0), 0)
	require.Equal(t, 1, pt.Len())

	pt.Remove(addr)
	require.Equal(t, 0, pt.Len())
	_, ok := pt.Get(addr)
	require.False(t, ok)
}

func TestPeerTableList(t *testing.T) {
	pt := NewPeerTable()
	now := time.Unix(1_700_000_000, 0)
	pt.Observe([]byte{0x01}, now, 1)
	pt.Observe([]byte{0x02}, now, 2)

	list := pt.List()
	require.Len(t, list, 2)
}
