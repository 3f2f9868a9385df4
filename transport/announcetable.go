// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package transport implements the node's transport-layer bookkeeping:
// announce propagation, path selection, rate limiting, and the outbound
// send-packet decision tree (§3, §4.2, §4.9).
package transport

import (
	"encoding/hex"
	"sync"
	"time"
)

// DefaultAnnounceTableCapacity is the default number of destinations tracked
// by an AnnounceTable.
const DefaultAnnounceTableCapacity = 100_000

// DefaultRetransmitInterval is the default wait between local rebroadcasts
// of a held announce.
const DefaultRetransmitInterval = 11 * time.Second

// DefaultRetransmitRetries is the default number of times an announce is
// rebroadcast before it is left to expire from the table.
const DefaultRetransmitRetries = 1

// AnnounceEntry records what is known about the most recently observed
// announce for one destination.
type AnnounceEntry struct {
	Packet             []byte
	Hops               uint8
	Interface          string
	FirstSeen          time.Time
	RetransmitDeadline time.Time
	Retries            int
}

// AnnounceTable tracks the best (lowest hop count) announce seen for each
// destination address hash, and schedules local rebroadcast. Entries are
// kept in a bounded FIFO-eviction map rather than github.com/decred/dcrd/lru
// (used elsewhere for simple get/put caches) because the retransmit
// scheduler must enumerate every held entry each tick, which that package's
// generic Map does not expose.
//
// The hop-count invariant (§3): an incoming announce with a hop count no
// lower than the one already held for that destination never displaces the
// held entry, so path selection always prefers the shortest path observed.
type AnnounceTable struct {
	mu                 sync.Mutex
	capacity           int
	order              []string
	entries            map[string]AnnounceEntry
	RetransmitInterval time.Duration
	RetransmitRetries  int
}

// NewAnnounceTable creates an AnnounceTable bounded to capacity destinations.
func NewAnnounceTable(capacity int) *AnnounceTable {
	if capacity <= 0 {
		capacity = DefaultAnnounceTableCapacity
	}
	return &AnnounceTable{
		capacity:           capacity,
		entries:            make(map[string]AnnounceEntry),
		RetransmitInterval: DefaultRetransmitInterval,
		RetransmitRetries:  DefaultRetransmitRetries,
	}
}

func addrKey(addressHash []byte) string {
	return hex.EncodeToString(addressHash)
}

func (t *AnnounceTable) evictOldestLocked() {
	for len(t.order) > 0 {
		oldest := t.order[0]
		t.order = t.order[1:]
		if _, ok := t.entries[oldest]; ok {
			delete(t.entries, oldest)
			return
		}
	}
}

// Observe records an announce for addressHash observed with the given hop
// count. Returns true if the entry was installed (first time seen, or a
// strictly lower hop count than the one already held), false if the
// announce was redundant and should not be retransmitted.
func (t *AnnounceTable) Observe(addressHash []byte, packet []byte, hops uint8, iface string, now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	k := addrKey(addressHash)
	if existing, ok := t.entries[k]; ok {
		if hops >= existing.Hops {
			return false
		}
	} else {
		if len(t.entries) >= t.capacity {
			t.evictOldestLocked()
		}
		t.order = append(t.order, k)
	}
	t.entries[k] = AnnounceEntry{
		Packet:             append([]byte{}, packet...),
		Hops:               hops,
		Interface:          iface,
		FirstSeen:          now,
		RetransmitDeadline: now.Add(t.RetransmitInterval),
		Retries:            0,
	}
	return true
}

// Get returns the held announce entry for addressHash, if any.
func (t *AnnounceTable) Get(addressHash []byte) (AnnounceEntry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	e, ok := t.entries[addrKey(addressHash)]
	return e, ok
}

// MinHops returns the lowest hop count observed for addressHash.
func (t *AnnounceTable) MinHops(addressHash []byte) (uint8, bool) {
	e, ok := t.Get(addressHash)
	return e.Hops, ok
}

// Len reports the number of destinations currently tracked.
func (t *AnnounceTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// RetransmitJob is one announce due for local rebroadcast.
type RetransmitJob struct {
	AddressHash []byte
	Packet      []byte
	Interface   string
}

// ToRetransmit returns every entry whose retransmit deadline has passed and
// whose retry budget is not exhausted, advancing each returned entry's
// deadline and retry counter.
func (t *AnnounceTable) ToRetransmit(now time.Time) []RetransmitJob {
	t.mu.Lock()
	defer t.mu.Unlock()

	var due []RetransmitJob
	for _, k := range t.order {
		e, ok := t.entries[k]
		if !ok {
			continue
		}
		if now.Before(e.RetransmitDeadline) {
			continue
		}
		if e.Retries >= t.RetransmitRetries {
			continue
		}
		addrBytes, err := hex.DecodeString(k)
		if err != nil {
			continue
		}
		due = append(due, RetransmitJob{
			AddressHash: addrBytes,
			Packet:      append([]byte{}, e.Packet...),
			Interface:   e.Interface,
		})
		e.Retries++
		e.RetransmitDeadline = now.Add(t.RetransmitInterval)
		t.entries[k] = e
	}
	return due
}
