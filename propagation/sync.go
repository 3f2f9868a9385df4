// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package propagation

import (
	"sync"
	"time"
)

// TransferState is the lifecycle state of one peer-sync transfer.
type TransferState uint8

const (
	TransferRequested TransferState = iota
	TransferCompleted
	TransferCancelled
)

// Transfer tracks one transient id offered to a peer during sync.
type Transfer struct {
	TransientID string
	State       TransferState
	RequestedAt time.Time
	ResolvedAt  time.Time
}

// DefaultTransferStateTTL is how long a resolved transfer is kept before
// being pruned. Transfers still in the Requested state are not pruned.
const DefaultTransferStateTTL = 24 * time.Hour

// PeerSync tracks, per propagation peer, the queue of transient ids not yet
// offered and the in-flight transfers for ids that have been.
type PeerSync struct {
	mu        sync.Mutex
	unhandled map[string][]string // peer -> queued transient ids, oldest first
	transfers map[string]map[string]*Transfer

	TransferStateTTL time.Duration
}

// NewPeerSync creates an empty PeerSync tracker.
func NewPeerSync() *PeerSync {
	return &PeerSync{
		unhandled:        make(map[string][]string),
		transfers:        make(map[string]map[string]*Transfer),
		TransferStateTTL: DefaultTransferStateTTL,
	}
}

// Enqueue adds transientID to peer's unhandled queue, unless it is already
// queued or already in flight.
func (p *PeerSync) Enqueue(peer, transientID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, id := range p.unhandled[peer] {
		if id == transientID {
			return
		}
	}
	if t, ok := p.transfers[peer]; ok {
		if _, ok := t[transientID]; ok {
			return
		}
	}
	p.unhandled[peer] = append(p.unhandled[peer], transientID)
}

// BuildPeerSyncBatch pops up to min(requested, perTransferLimit) transient
// ids from peer's unhandled queue, creating a Requested transfer for each.
func (p *PeerSync) BuildPeerSyncBatch(peer string, requested, perTransferLimit int, now time.Time) []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := requested
	if perTransferLimit < n {
		n = perTransferLimit
	}
	queue := p.unhandled[peer]
	if n > len(queue) {
		n = len(queue)
	}
	if n <= 0 {
		return nil
	}

	batch := append([]string{}, queue[:n]...)
	p.unhandled[peer] = queue[n:]

	if p.transfers[peer] == nil {
		p.transfers[peer] = make(map[string]*Transfer)
	}
	for _, id := range batch {
		p.transfers[peer][id] = &Transfer{TransientID: id, State: TransferRequested, RequestedAt: now}
	}
	return batch
}

// ApplyPeerSyncResult moves delivered transfers to Completed and rejected
// transfers to Cancelled.
func (p *PeerSync) ApplyPeerSyncResult(peer string, delivered, rejected []string, now time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	peerTransfers := p.transfers[peer]
	if peerTransfers == nil {
		return
	}
	for _, id := range delivered {
		if t, ok := peerTransfers[id]; ok {
			t.State = TransferCompleted
			t.ResolvedAt = now
		}
	}
	for _, id := range rejected {
		if t, ok := peerTransfers[id]; ok {
			t.State = TransferCancelled
			t.ResolvedAt = now
		}
	}
}

// PruneTransfers drops resolved transfers older than TransferStateTTL.
func (p *PeerSync) PruneTransfers(now time.Time) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	ttl := p.TransferStateTTL
	if ttl <= 0 {
		ttl = DefaultTransferStateTTL
	}

	pruned := 0
	for peer, transfers := range p.transfers {
		for id, t := range transfers {
			if t.State == TransferRequested {
				continue
			}
			if now.Sub(t.ResolvedAt) > ttl {
				delete(transfers, id)
				pruned++
			}
		}
		if len(transfers) == 0 {
			delete(p.transfers, peer)
		}
	}
	return pruned
}

// Transfer returns the current transfer state for peer/transientID, if any.
func (p *PeerSync) Transfer(peer, transientID string) (Transfer, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	peerTransfers := p.transfers[peer]
	if peerTransfers == nil {
		return Transfer{}, false
	}
	t, ok := peerTransfers[transientID]
	if !ok {
		return Transfer{}, false
	}
	return *t, true
}
