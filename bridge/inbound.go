// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bridge

import (
	"encoding/hex"
	"fmt"

	"github.com/lxmf-mesh/reticulumd/identity"
	"github.com/lxmf-mesh/reticulumd/lxmf"
)

// InboundPayloadMode describes how the transport layer handed a delivered
// payload to the bridge.
type InboundPayloadMode uint8

const (
	// FullWire is the complete LXM wire encoding: destination, source,
	// signature, and payload, decodable directly via lxmf.Unpack.
	FullWire InboundPayloadMode = iota

	// DestinationStripped is a payload with the leading destination
	// address hash omitted, because the transport context (an active
	// Link, or a single-destination delivery) already supplies it.
	DestinationStripped
)

// InboundDelivery is a decoded LXM ready to become an RPC message record,
// plus the metadata the transport layer observed it under.
type InboundDelivery struct {
	Message     *lxmf.Message
	Destination [identity.AddressHashSize]byte
	SourceHex   string
	DestHex     string
}

// DecodeInboundPayload decodes a delivered payload according to mode,
// reconstructing the destination address hash for DestinationStripped
// payloads from the transport-supplied destination. It does not verify
// the message signature; call Verify on the returned Message once the
// source's verifying key is known (e.g. from AnnounceWorker.PeerCrypto).
func DecodeInboundPayload(mode InboundPayloadMode, destination [identity.AddressHashSize]byte, payload []byte) (*InboundDelivery, error) {
	var msg *lxmf.Message
	var err error

	switch mode {
	case FullWire:
		msg, err = lxmf.Unpack(payload)
		if err != nil {
			return nil, fmt.Errorf("bridge: decode full-wire inbound payload: %w", err)
		}
		if msg.Destination != destination {
			return nil, fmt.Errorf("bridge: inbound payload destination %x does not match delivery context %x", msg.Destination, destination)
		}
	case DestinationStripped:
		full := make([]byte, 0, identity.AddressHashSize+len(payload))
		full = append(full, destination[:]...)
		full = append(full, payload...)
		msg, err = lxmf.Unpack(full)
		if err != nil {
			return nil, fmt.Errorf("bridge: decode destination-stripped inbound payload: %w", err)
		}
	default:
		return nil, fmt.Errorf("bridge: unknown inbound payload mode %d", mode)
	}

	return &InboundDelivery{
		Message:     msg,
		Destination: destination,
		SourceHex:   hex.EncodeToString(msg.Source[:]),
		DestHex:     hex.EncodeToString(msg.Destination[:]),
	}, nil
}

// AcceptInboundFunc persists a decoded inbound delivery, mirroring the RPC
// daemon's receive_message method.
type AcceptInboundFunc func(delivery *InboundDelivery) error

// InboundWorker decodes packets handed up from the transport layer and
// forwards them to an AcceptInboundFunc, dropping (and logging) anything
// that fails to decode rather than taking down the delivery loop.
type InboundWorker struct {
	mode   InboundPayloadMode
	accept AcceptInboundFunc
}

// NewInboundWorker creates an InboundWorker that decodes payloads under
// mode and hands successfully-decoded messages to accept.
func NewInboundWorker(mode InboundPayloadMode, accept AcceptInboundFunc) *InboundWorker {
	return &InboundWorker{mode: mode, accept: accept}
}

// Deliver decodes payload as received for destination and, on success,
// invokes the worker's AcceptInboundFunc.
func (w *InboundWorker) Deliver(destination [identity.AddressHashSize]byte, payload []byte) error {
	delivery, err := DecodeInboundPayload(w.mode, destination, payload)
	if err != nil {
		log.Warnf("bridge: dropping undecodable inbound payload: %v", err)
		return err
	}
	return w.accept(delivery)
}
