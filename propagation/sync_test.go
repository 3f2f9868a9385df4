// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package propagation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPeerSyncEnqueueDedup(t *testing.T) {
	p := NewPeerSync()
	p.Enqueue("peer-a", "id-1")
	p.Enqueue("peer-a", "id-1")
	p.Enqueue("peer-a", "id-2")

	now := time.Unix(1_700_000_000, 0)
	batch := p.BuildPeerSyncBatch("peer-a", 10, 10, now)
	require.Equal(t, []string{"id-1", "id-2"}, batch)
}

func TestPeerSyncEnqueueSkipsInFlight(t *testing.T) {
	p := NewPeerSync()
	now := time.Unix(1_700_000_000, 0)

	p.Enqueue("peer-a", "id-1")
	batch := p.BuildPeerSyncBatch("peer-a", 10, 10, now)
	require.Equal(t, []string{"id-1"}, batch)

	// id-1 is now in flight; re-enqueueing it must not duplicate it.
	p.Enqueue("peer-a", "id-1")
	batch = p.BuildPeerSyncBatch("peer-a", 10, 10, now)
	require.Empty(t, batch)
}

func TestBuildPeerSyncBatchRespectsLimits(t *testing.T) {
	p := NewPeerSync()
	now := time.Unix(1_700_000_000, 0)
	for _, id := range []string{"1", "2", "3", "4", "5"} {
		p.Enqueue("peer-a", id)
	}

	batch := p.BuildPeerSyncBatch("peer-a", 10, 2, now)
	require.Equal(t, []string{"1", "2"}, batch)

	batch = p.BuildPeerSyncBatch("peer-a", 1, 10, now)
	require.Equal(t, []string{"3"}, batch)
}

func TestBuildPeerSyncBatchEmptyQueue(t *testing.T) {
	p := NewPeerSync()
	now := time.Unix(1_700_000_000, 0)
	batch := p.BuildPeerSyncBatch("peer-a", 5, 5, now)
	require.Nil(t, batch)
}

func TestApplyPeerSyncResult(t *testing.T) {
	p := NewPeerSync()
	now := time.Unix(1_700_000_000, 0)
	p.Enqueue("peer-a", "id-1")
	p.Enqueue("peer-a", "id-2")
	p.BuildPeerSyncBatch("peer-a", 10, 10, now)

	resolveAt := now.Add(time.Minute)
	p.ApplyPeerSyncResult("peer-a", []string{"id-1"}, []string{"id-2"}, resolveAt)

	tr, ok := p.Transfer("peer-a", "id-1")
	require.True(t, ok)
	require.Equal(t, TransferCompleted, tr.State)
	require.Equal(t, resolveAt, tr.ResolvedAt)

	tr, ok = p.Transfer("peer-a", "id-2")
	require.True(t, ok)
	require.Equal(t, TransferCancelled, tr.State)
}

func TestPruneTransfersKeepsInFlightAndFreshResolved(t *testing.T) {
	p := NewPeerSync()
	now := time.Unix(1_700_000_000, 0)
	p.Enqueue("peer-a", "id-1")
	p.Enqueue("peer-a", "id-2")
	p.Enqueue("peer-a", "id-3")
	p.BuildPeerSyncBatch("peer-a", 10, 10, now)

	p.ApplyPeerSyncResult("peer-a", []string{"id-1"}, nil, now)                        // resolved, stale later
	p.ApplyPeerSyncResult("peer-a", []string{"id-2"}, nil, now.Add(DefaultTransferStateTTL-time.Minute)) // resolved, fresh

	pruneAt := now.Add(DefaultTransferStateTTL + time.Minute)
	pruned := p.PruneTransfers(pruneAt)
	require.Equal(t, 1, pruned)

	_, ok := p.Transfer("peer-a", "id-1")
	require.False(t, ok, "old resolved transfer should have been pruned")

	_, ok = p.Transfer("peer-a", "id-2")
	require.True(t, ok, "recently resolved transfer should survive")

	tr3, ok := p.Transfer("peer-a", "id-3")
	require.True(t, ok, "in-flight transfer must never be pruned")
	require.Equal(t, TransferRequested, tr3.State)
}
