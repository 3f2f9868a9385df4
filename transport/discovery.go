// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/hex"
	"sync"
	"time"

	"github.com/lxmf-mesh/reticulumd/internal/cacheset"
)

// DefaultDiscoveryCacheCapacity bounds the set of address hashes remembered
// as "already seen" for announce deduplication.
const DefaultDiscoveryCacheCapacity = 1024

// DiscoveryCache deduplicates inbound announces by destination address
// hash, independent of the richer AnnounceTable bookkeeping: it exists
// purely to answer "have we already surfaced this destination to the
// application layer" with O(1) bounded memory.
type DiscoveryCache struct {
	set *cacheset.Set[string]
}

// NewDiscoveryCache creates a DiscoveryCache bounded to capacity entries.
func NewDiscoveryCache(capacity int) *DiscoveryCache {
	if capacity <= 0 {
		capacity = DefaultDiscoveryCacheCapacity
	}
	return &DiscoveryCache{set: cacheset.New[string](capacity)}
}

// Seen reports whether addressHash has already been recorded.
func (d *DiscoveryCache) Seen(addressHash []byte) bool {
	return d.set.Seen(hex.EncodeToString(addressHash))
}

// Record marks addressHash as seen. Returns true if this is the first time.
func (d *DiscoveryCache) Record(addressHash []byte) bool {
	return d.set.Insert(hex.EncodeToString(addressHash))
}

// Len reports the number of destinations currently tracked.
func (d *DiscoveryCache) Len() int {
	return d.set.Len()
}

// DefaultPacketCacheTTL is the default dedup window for inbound packet
// hashes: packets with a hash already seen within this window are dropped
// as duplicates (retransmitted copies of the same announce or data packet
// arriving via multiple interfaces).
const DefaultPacketCacheTTL = 15 * time.Second

// PacketCache is a short-TTL dedup set keyed by packet hash, used to
// suppress re-processing a packet received more than once (e.g. via
// multiple interfaces, or a retransmitted announce).
type PacketCache struct {
	mu  sync.Mutex
	ttl time.Duration
	seen map[[32]byte]time.Time
}

// NewPacketCache creates a PacketCache with the given dedup TTL.
func NewPacketCache(ttl time.Duration) *PacketCache {
	if ttl <= 0 {
		ttl = DefaultPacketCacheTTL
	}
	return &PacketCache{ttl: ttl, seen: make(map[[32]byte]time.Time)}
}

// Observe reports whether hash has already been recorded within the TTL
// window (a duplicate) and records it regardless. Expired entries older
// than the TTL are pruned opportunistically on every call.
func (c *PacketCache) Observe(hash [32]byte, now time.Time) (duplicate bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for h, t := range c.seen {
		if now.Sub(t) > c.ttl {
			delete(c.seen, h)
		}
	}

	if t, ok := c.seen[hash]; ok && now.Sub(t) <= c.ttl {
		c.seen[hash] = now
		return true
	}
	c.seen[hash] = now
	return false
}

// Len reports the number of hashes currently tracked (including any not yet
// opportunistically pruned).
func (c *PacketCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.seen)
}
