// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ratchet implements the ratchet store: a bounded per-destination
// cache of the most-recently-announced ephemeral public key, used as the
// peer's envelope-encryption key for opportunistic delivery (§4.4).
package ratchet

import (
	"encoding/hex"
	"sync"

	"github.com/decred/dcrd/lru"
)

// PublicKeySize is the size in bytes of a ratchet public key.
const PublicKeySize = 32

// Store is a concurrency-safe, bounded-in-RAM map from a destination's
// address hash (hex-encoded) to its latest known ratchet public key.
// Writes are idempotent: remembering the same key twice is a no-op past the
// first write's LRU-touch effect.
type Store struct {
	mu    sync.Mutex
	cache *lru.Map[string, [PublicKeySize]byte]
}

// NewStore creates a ratchet store bounded to capacity entries in RAM. A
// capacity of 0 or less selects a bound of 1<<20 entries.
func NewStore(capacity int) *Store {
	if capacity <= 0 {
		capacity = 1 << 20 // effectively unbounded for in-process use
	}
	return &Store{cache: lru.NewMap[string, [PublicKeySize]byte](capacity)}
}

func key(addressHash []byte) string {
	return hex.EncodeToString(addressHash)
}

// Remember records pub as the latest ratchet public key observed for the
// destination addressHash. Idempotent.
func (s *Store) Remember(addressHash []byte, pub [PublicKeySize]byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Put(key(addressHash), pub)
}

// Latest returns the most recently remembered ratchet public key for
// addressHash, if any.
func (s *Store) Latest(addressHash []byte) ([PublicKeySize]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Get(key(addressHash))
}

// Len reports the number of destinations currently tracked.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Len()
}
