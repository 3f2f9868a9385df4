// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"encoding/hex"
	"sync"
	"time"
)

// DefaultTransitProofTimeout is how long a transit link waits for the
// responder's proof before it is dropped.
const DefaultTransitProofTimeout = 600 * time.Second

// DefaultTransitIdleTimeout is how long an established transit link may sit
// idle before it is dropped.
const DefaultTransitIdleTimeout = 900 * time.Second

// TransitLinkEntry records a link this node is forwarding for, without
// being either endpoint: the interfaces/next hops on both sides and the
// timeouts that expire the entry.
type TransitLinkEntry struct {
	LinkID        [16]byte
	PrevInterface string
	NextInterface string
	Established   bool
	Deadline      time.Time
}

// LinkTable tracks transit (forwarded) links this node relays traffic for.
type LinkTable struct {
	mu           sync.Mutex
	entries      map[string]TransitLinkEntry
	ProofTimeout time.Duration
	IdleTimeout  time.Duration
}

// NewLinkTable creates an empty transit LinkTable.
func NewLinkTable() *LinkTable {
	return &LinkTable{
		entries:      make(map[string]TransitLinkEntry),
		ProofTimeout: DefaultTransitProofTimeout,
		IdleTimeout:  DefaultTransitIdleTimeout,
	}
}

func linkKey(linkID [16]byte) string {
	return hex.EncodeToString(linkID[:])
}

// OpenRequest records a new transit link awaiting proof, arriving on
// prevIface and to be forwarded out nextIface.
func (lt *LinkTable) OpenRequest(linkID [16]byte, prevIface, nextIface string, now time.Time) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	lt.entries[linkKey(linkID)] = TransitLinkEntry{
		LinkID:        linkID,
		PrevInterface: prevIface,
		NextInterface: nextIface,
		Established:   false,
		Deadline:      now.Add(lt.ProofTimeout),
	}
}

// ConfirmProof marks a transit link established once its proof has been
// forwarded back to the initiator, and resets its expiry to the idle
// timeout. Returns false if no such link is pending.
func (lt *LinkTable) ConfirmProof(linkID [16]byte, now time.Time) bool {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	k := linkKey(linkID)
	e, ok := lt.entries[k]
	if !ok {
		return false
	}
	e.Established = true
	e.Deadline = now.Add(lt.IdleTimeout)
	lt.entries[k] = e
	return true
}

// Touch refreshes an established link's idle deadline.
func (lt *LinkTable) Touch(linkID [16]byte, now time.Time) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	k := linkKey(linkID)
	e, ok := lt.entries[k]
	if !ok || !e.Established {
		return
	}
	e.Deadline = now.Add(lt.IdleTimeout)
	lt.entries[k] = e
}

// Lookup returns the transit entry for linkID, if any.
func (lt *LinkTable) Lookup(linkID [16]byte) (TransitLinkEntry, bool) {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	e, ok := lt.entries[linkKey(linkID)]
	return e, ok
}

// Expire drops and returns every transit entry whose deadline has passed.
func (lt *LinkTable) Expire(now time.Time) []TransitLinkEntry {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	var expired []TransitLinkEntry
	for k, e := range lt.entries {
		if now.After(e.Deadline) {
			expired = append(expired, e)
			delete(lt.entries, k)
		}
	}
	return expired
}

// Len reports the number of transit links currently tracked.
func (lt *LinkTable) Len() int {
	lt.mu.Lock()
	defer lt.mu.Unlock()
	return len(lt.entries)
}
