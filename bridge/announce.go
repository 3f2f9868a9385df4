// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bridge

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/lxmf-mesh/reticulumd/crypto"
	"github.com/lxmf-mesh/reticulumd/identity"
	"github.com/lxmf-mesh/reticulumd/router"
)

// AnnounceEvent is a verified-at-the-transport-layer announce, ready for
// the bridge to fold into the peer table and surface to RPC clients.
type AnnounceEvent struct {
	Address   [identity.AddressHashSize]byte
	Payload   identity.AnnouncePayload
	Hops      int
	Timestamp time.Time
}

// PeerCrypto is the key material carried on a peer's most recent
// announce, kept around so outbound links and encrypted LXMs can be built
// for it without waiting on a fresh announce.
type PeerCrypto struct {
	Verifying    ed25519.PublicKey
	X25519Public [crypto.X25519KeySize]byte
	RatchetPub   *[crypto.X25519KeySize]byte
}

// AnnounceAcceptedFunc is notified once an announce has been folded into
// the peer table, mirroring the RPC daemon's announce_received method.
type AnnounceAcceptedFunc func(peerHex string, timestamp time.Time, name, nameSource string, appData []byte) error

// AnnounceWorker turns inbound transport announces into peer-table
// updates and RPC announce_received notifications, tracking each peer's
// advertised key material along the way.
type AnnounceWorker struct {
	peers *router.PeerTable

	mu     sync.Mutex
	crypto map[string]PeerCrypto

	accepted AnnounceAcceptedFunc
}

// NewAnnounceWorker creates an AnnounceWorker backed by peers, invoking
// accepted for every announce that verifies. accepted may be nil, in
// which case the worker only maintains its own tables.
func NewAnnounceWorker(peers *router.PeerTable, accepted AnnounceAcceptedFunc) *AnnounceWorker {
	return &AnnounceWorker{
		peers:    peers,
		crypto:   make(map[string]PeerCrypto),
		accepted: accepted,
	}
}

// Handle verifies ev's signature, records the sighting and display name in
// the peer table, caches the peer's key material, and invokes the
// accepted callback.
func (w *AnnounceWorker) Handle(ev AnnounceEvent) error {
	if !identity.VerifyAnnounce(ev.Address, ev.Payload) {
		return fmt.Errorf("bridge: announce for %x failed signature verification", ev.Address)
	}

	peerHex := hex.EncodeToString(ev.Address[:])
	w.peers.Observe(ev.Address[:], ev.Timestamp, ev.Hops)

	name, source := ExtractDisplayName(ev.Payload.AppData)
	if name != "" {
		w.peers.SetName(ev.Address[:], name, source)
	}

	w.mu.Lock()
	w.crypto[peerHex] = PeerCrypto{
		Verifying:    ev.Payload.Verifying,
		X25519Public: ev.Payload.X25519Public,
		RatchetPub:   ev.Payload.RatchetPub,
	}
	w.mu.Unlock()

	if w.accepted == nil {
		return nil
	}
	return w.accepted(peerHex, ev.Timestamp, name, source, ev.Payload.AppData)
}

// PeerCrypto returns the most recently announced key material for
// peerHex, if any announce from it has been handled.
func (w *AnnounceWorker) PeerCrypto(peerHex string) (PeerCrypto, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	pc, ok := w.crypto[peerHex]
	return pc, ok
}
