// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package transport

import (
	"context"
	"fmt"
	"time"

	"github.com/lxmf-mesh/reticulumd/identity"
	"github.com/lxmf-mesh/reticulumd/ratchet"
)

// SendPacketOutcome classifies the result of a send_packet decision.
type SendPacketOutcome uint8

const (
	SentDirect SendPacketOutcome = iota
	SentRouted
	SentBroadcast
	DroppedMissingDestinationIdentity
	DroppedNoRoute
	DroppedMtu
	DroppedEncrypt
)

func (o SendPacketOutcome) String() string {
	switch o {
	case SentDirect:
		return "sent_direct"
	case SentRouted:
		return "sent_routed"
	case SentBroadcast:
		return "sent_broadcast"
	case DroppedMissingDestinationIdentity:
		return "dropped_missing_destination_identity"
	case DroppedNoRoute:
		return "dropped_no_route"
	case DroppedMtu:
		return "dropped_mtu"
	case DroppedEncrypt:
		return "dropped_encrypt"
	default:
		return fmt.Sprintf("SendPacketOutcome(%d)", uint8(o))
	}
}

// EncryptFunc transforms a plaintext payload into its wire ciphertext.
type EncryptFunc func(plaintext []byte) ([]byte, error)

// SendRequest describes one outbound packet and the policy governing how it
// may leave the node.
type SendRequest struct {
	Destination  [16]byte
	HaveIdentity bool
	Direct       bool
	Broadcast    bool
	Payload      []byte
	MTU          int
	Encrypt      EncryptFunc
}

// SendResult carries the wire bytes actually queued for transmission,
// alongside the interface/next-hop chosen by a routed send.
type SendResult struct {
	Outcome   SendPacketOutcome
	Wire      []byte
	Interface string
	NextHop   [16]byte
}

// Transport bundles the bookkeeping tables that drive routing, announce
// propagation, and rate limiting for one node.
type Transport struct {
	Paths        *PathTable
	Announces    *AnnounceTable
	Limits       *AnnounceLimits
	Discovery    *DiscoveryCache
	Packets      *PacketCache
	TransitLinks *LinkTable
	Names        *AnnounceNames
	Ratchets     *ratchet.Store
}

// New builds a Transport with default-sized tables.
func New() *Transport {
	return &Transport{
		Paths:        NewPathTable(0),
		Announces:    NewAnnounceTable(0),
		Limits:       NewAnnounceLimits(),
		Discovery:    NewDiscoveryCache(0),
		Packets:      NewPacketCache(0),
		TransitLinks: NewLinkTable(),
		Names:        NewAnnounceNames(),
		Ratchets:     ratchet.NewStore(0),
	}
}

// SendPacket decides how (or whether) req may be transmitted, per §4.9's
// outbound decision tree:
//
//  1. a send requiring the destination's identity (encryption) with none
//     on hand is refused outright;
//  2. a direct, already-established session sends immediately;
//  3. a known route sends via its next hop;
//  4. a caller-permitted broadcast falls back to local broadcast;
//  5. otherwise there is nowhere to send the packet.
//
// MTU and encryption failures are reported distinctly so callers can
// distinguish a policy rejection from a transient encode failure.
func (t *Transport) SendPacket(req SendRequest) SendResult {
	if req.Encrypt != nil && !req.HaveIdentity {
		return SendResult{Outcome: DroppedMissingDestinationIdentity}
	}

	wire := req.Payload
	if req.Encrypt != nil {
		ct, err := req.Encrypt(req.Payload)
		if err != nil {
			return SendResult{Outcome: DroppedEncrypt}
		}
		wire = ct
	}

	if req.MTU > 0 && len(wire) > req.MTU {
		return SendResult{Outcome: DroppedMtu}
	}

	if req.Direct {
		return SendResult{Outcome: SentDirect, Wire: wire}
	}

	if path, ok := t.Paths.Lookup(req.Destination[:]); ok {
		return SendResult{Outcome: SentRouted, Wire: wire, Interface: path.Interface, NextHop: path.NextHop}
	}

	if req.Broadcast {
		return SendResult{Outcome: SentBroadcast, Wire: wire}
	}

	if !req.HaveIdentity {
		return SendResult{Outcome: DroppedMissingDestinationIdentity}
	}

	return SendResult{Outcome: DroppedNoRoute}
}

// AnnounceOutcome reports what OnAnnounce did with an inbound announce.
type AnnounceOutcome struct {
	Verified    bool
	RateLimited bool
	Accepted    bool
	Retransmit  bool
}

// OnAnnounce processes an inbound announce: signature verification, rate
// limiting, the hop-count-monotonic AnnounceTable/PathTable update, recording
// the announced ratchet key, and discovery-cache recording (§3, §4.2). The
// ratchet key is stored as the latest one; it is not compared with the
// previously recorded key.
func (t *Transport) OnAnnounce(addressHash [16]byte, payload identity.AnnouncePayload, rawPacket []byte, nextHop [16]byte, hops uint8, iface string, now time.Time) AnnounceOutcome {
	if !identity.VerifyAnnounce(addressHash, payload) {
		return AnnounceOutcome{Verified: false}
	}

	if !t.Limits.Allow(addressHash[:], now) {
		return AnnounceOutcome{Verified: true, RateLimited: true}
	}

	accepted := t.Announces.Observe(addressHash[:], rawPacket, hops, iface, now)
	if accepted {
		t.Paths.Update(addressHash[:], nextHop, iface, hops, now)
	}
	if payload.RatchetPub != nil {
		t.Ratchets.Remember(addressHash[:], *payload.RatchetPub)
	}
	t.Discovery.Record(addressHash[:])

	return AnnounceOutcome{Verified: true, Accepted: accepted, Retransmit: accepted}
}

// Scheduler periodically re-announces a destination: it fires immediately
// on Start, then every Interval, until the returned cancel func is called or
// ctx is done. An Interval of zero disables periodic re-announcement; the
// caller's fn still fires once.
type Scheduler struct {
	Interval time.Duration
}

// Start runs fn immediately and then, if s.Interval > 0, every Interval
// until ctx is cancelled or the returned stop func is called.
func (s Scheduler) Start(ctx context.Context, fn func(context.Context)) (stop func()) {
	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		fn(runCtx)
		if s.Interval <= 0 {
			return
		}
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				fn(runCtx)
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}
