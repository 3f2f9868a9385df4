// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"sync"
	"time"
)

// DefaultPathTableCapacity is the default number of destinations tracked by
// a PathTable.
const DefaultPathTableCapacity = 100_000

// PathEntry is a known route to a destination: the next-hop address, the
// interface to send on, and the hop count to reach it.
type PathEntry struct {
	NextHop   [16]byte
	Interface string
	Hops      uint8
	Updated   time.Time
}

// PathTable maps destination address hashes to the best known route,
// enforcing the same hop-count monotonicity as AnnounceTable: a path update
// with a hop count no lower than the entry already held never displaces it.
type PathTable struct {
	mu       sync.Mutex
	capacity int
	order    []string
	entries  map[string]PathEntry
}

// NewPathTable creates a PathTable bounded to capacity destinations.
func NewPathTable(capacity int) *PathTable {
	if capacity <= 0 {
		capacity = DefaultPathTableCapacity
	}
	return &PathTable{capacity: capacity, entries: make(map[string]PathEntry)}
}

// Update records a route to destAddr via nextHop/iface at the given hop
// count. Returns true if the route was installed.
func (pt *PathTable) Update(destAddr []byte, nextHop [16]byte, iface string, hops uint8, now time.Time) bool {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	k := addrKey(destAddr)
	if existing, ok := pt.entries[k]; ok {
		if hops >= existing.Hops {
			return false
		}
	} else {
		if len(pt.entries) >= pt.capacity {
			pt.evictOldestLocked()
		}
		pt.order = append(pt.order, k)
	}
	pt.entries[k] = PathEntry{NextHop: nextHop, Interface: iface, Hops: hops, Updated: now}
	return true
}

func (pt *PathTable) evictOldestLocked() {
	for len(pt.order) > 0 {
		oldest := pt.order[0]
		pt.order = pt.order[1:]
		if _, ok := pt.entries[oldest]; ok {
			delete(pt.entries, oldest)
			return
		}
	}
}

// Lookup returns the best known route to destAddr, if any.
func (pt *PathTable) Lookup(destAddr []byte) (PathEntry, bool) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	e, ok := pt.entries[addrKey(destAddr)]
	return e, ok
}

// Remove drops any held route to destAddr.
func (pt *PathTable) Remove(destAddr []byte) {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	k := addrKey(destAddr)
	delete(pt.entries, k)
	for i, o := range pt.order {
		if o == k {
			pt.order = append(pt.order[:i], pt.order[i+1:]...)
			break
		}
	}
}

// Len reports the number of destinations currently routed.
func (pt *PathTable) Len() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return len(pt.entries)
}
