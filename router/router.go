// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package router ties together peer bookkeeping, delivery policy,
// ticket issuance, and propagation-node ingestion into the single
// decision surface the RPC daemon and bridges call into.
package router

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/lxmf-mesh/reticulumd/errkind"
	"github.com/lxmf-mesh/reticulumd/propagation"
)

// Router is the node's routing and policy surface: it holds the peer
// table, delivery policy, ticket cache, and the propagation store used
// for store-and-forward ingestion.
type Router struct {
	Peers   *PeerTable
	Policy  *Policy
	Tickets *propagation.TicketCache

	store *propagation.Store
}

// New creates a Router backed by store for propagation ingestion. store
// may be nil if this node does not run a propagation node.
func New(store *propagation.Store) *Router {
	return &Router{
		Peers:   NewPeerTable(),
		Policy:  NewPolicy(),
		Tickets: propagation.NewTicketCache(),
		store:   store,
	}
}

// ErrPropagationDisabled is returned by propagation operations when the
// router was constructed without a backing store. It classifies as
// errkind.Permanent: there is no retry that fixes a node not running a
// propagation role.
var ErrPropagationDisabled = errkind.New(errkind.Permanent, "router: propagation node not enabled")

// IngestTransient validates transientData's proof-of-work stamp against
// targetCost and, if it passes, stores it for later peer sync
// (RPC propagation_ingest).
func (r *Router) IngestTransient(transientData []byte, targetCost int, now time.Time) error {
	if r.store == nil {
		return ErrPropagationDisabled
	}
	ok, err := propagation.ValidateStamp(transientData, targetCost)
	if err != nil {
		return errkind.Wrap(errkind.Codec, "router: validate stamp", err)
	}
	if !ok {
		return errkind.New(errkind.Crypto, fmt.Sprintf("router: stamp below target cost %d", targetCost))
	}
	lxmfBytes, _, err := propagation.SplitTransientData(transientData)
	if err != nil {
		return errkind.Wrap(errkind.Codec, "router: split transient data", err)
	}
	id := propagation.TransientID(lxmfBytes)
	if err := r.store.Put(id, transientData, now); err != nil {
		return fmt.Errorf("router: store transient: %w", err)
	}
	log.Debugf("ingested transient %x (target_cost=%d)", id, targetCost)
	return nil
}

// FetchTransient retrieves previously ingested transient data by id
// (RPC propagation_fetch).
func (r *Router) FetchTransient(transientID [32]byte) ([]byte, bool, error) {
	if r.store == nil {
		return nil, false, ErrPropagationDisabled
	}
	return r.store.Get(transientID)
}

// IssueTicket generates a fresh ticket for destAddr, valid for ttl (or
// propagation.TicketFullLifetime if ttl<=0), and records it in the
// ticket cache (RPC ticket_generate).
func (r *Router) IssueTicket(destAddr []byte, ttl time.Duration, now time.Time) (propagation.Ticket, error) {
	token := make([]byte, 32)
	if _, err := rand.Read(token); err != nil {
		return propagation.Ticket{}, fmt.Errorf("router: generate ticket token: %w", err)
	}
	ticket := propagation.NewTicket(now, ttl, token)
	r.Tickets.Set(destAddr, ticket)
	return ticket, nil
}

// EvaluateDestination applies the router's delivery policy to a
// hex-encoded destination address, as consulted before accepting an
// inbound message or honoring a peer_sync request.
func (r *Router) EvaluateDestination(destAddrHex string) Decision {
	return r.Policy.Evaluate(destAddrHex)
}
