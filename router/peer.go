// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package router

import (
	"encoding/hex"
	"sync"
	"time"
)

// PeerRecord is the router's view of a known propagation or transport
// peer, as surfaced by the RPC daemon's list_peers method.
type PeerRecord struct {
	Address    string // hex-encoded destination address
	Name       string
	NameSource string
	FirstSeen  time.Time
	LastSeen   time.Time
	Hops       int
	IsPeered   bool
}

// PeerTable tracks every peer the node has observed, keyed by its
// hex-encoded destination address.
type PeerTable struct {
	mu    sync.Mutex
	peers map[string]*PeerRecord
}

// NewPeerTable creates an empty PeerTable.
func NewPeerTable() *PeerTable {
	return &PeerTable{peers: make(map[string]*PeerRecord)}
}

func addrHex(addr []byte) string { return hex.EncodeToString(addr) }

// Observe records that addr was seen at now with the given hop count,
// creating the record if this is the first sighting and otherwise
// refreshing LastSeen/Hops.
func (t *PeerTable) Observe(addr []byte, now time.Time, hops int) *PeerRecord {
	t.mu.Lock()
	defer t.mu.Unlock()

	key := addrHex(addr)
	rec, ok := t.peers[key]
	if !ok {
		rec = &PeerRecord{Address: key, FirstSeen: now}
		t.peers[key] = rec
	}
	rec.LastSeen = now
	rec.Hops = hops
	return rec
}

// SetName records the display name and its extraction source for addr,
// per the AnnounceWorker name-extraction precedence in bridge/announce.go.
func (t *PeerTable) SetName(addr []byte, name, source string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.peers[addrHex(addr)]; ok {
		rec.Name = name
		rec.NameSource = source
	}
}

// SetPeered marks addr as an active propagation peer (or not).
func (t *PeerTable) SetPeered(addr []byte, peered bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if rec, ok := t.peers[addrHex(addr)]; ok {
		rec.IsPeered = peered
	}
}

// Get returns the peer record for addr, if known.
func (t *PeerTable) Get(addr []byte) (PeerRecord, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.peers[addrHex(addr)]
	if !ok {
		return PeerRecord{}, false
	}
	return *rec, true
}

// Remove drops addr from the table, as used by the RPC peer_unpeer method.
func (t *PeerTable) Remove(addr []byte) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.peers, addrHex(addr))
}

// List returns every known peer record, in no particular order.
func (t *PeerTable) List() []PeerRecord {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]PeerRecord, 0, len(t.peers))
	for _, rec := range t.peers {
		out = append(out, *rec)
	}
	return out
}

// Len reports the number of known peers.
func (t *PeerTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.peers)
}
