// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bridge

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lxmf-mesh/reticulumd/identity"
	"github.com/lxmf-mesh/reticulumd/lxmf"
)

func buildTestMessage(t *testing.T) (*lxmf.Message, [identity.AddressHashSize]byte) {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)

	var dest [identity.AddressHashSize]byte
	dest[0] = 0x42
	msg := &lxmf.Message{
		Destination: dest,
		Source:      id.AddressHash(),
		Timestamp:   1_700_000_000,
		Title:       []byte("hi"),
		Content:     []byte("hello"),
	}
	require.NoError(t, msg.Sign(id))
	return msg, dest
}

func TestDecodeInboundPayloadFullWire(t *testing.T) {
	msg, dest := buildTestMessage(t)
	wire, err := msg.Pack()
	require.NoError(t, err)

	delivery, err := DecodeInboundPayload(FullWire, dest, wire)
	require.NoError(t, err)
	require.Equal(t, "hello", string(delivery.Message.Content))
	require.Equal(t, dest, delivery.Destination)
}

func TestDecodeInboundPayloadFullWireRejectsMismatchedDestination(t *testing.T) {
	msg, dest := buildTestMessage(t)
	wire, err := msg.Pack()
	require.NoError(t, err)

	var otherDest [identity.AddressHashSize]byte
	otherDest[0] = 0x99
	_, err = DecodeInboundPayload(FullWire, otherDest, wire)
	require.Error(t, err)
}

func TestDecodeInboundPayloadDestinationStripped(t *testing.T) {
	msg, dest := buildTestMessage(t)
	wire, err := msg.Pack()
	require.NoError(t, err)
	stripped := wire[identity.AddressHashSize:]

	delivery, err := DecodeInboundPayload(DestinationStripped, dest, stripped)
	require.NoError(t, err)
	require.Equal(t, "hello", string(delivery.Message.Content))
}

func TestInboundWorkerDeliverInvokesAccept(t *testing.T) {
	msg, dest := buildTestMessage(t)
	wire, err := msg.Pack()
	require.NoError(t, err)

	var acceptedSource string
	worker := NewInboundWorker(FullWire, func(delivery *InboundDelivery) error {
		acceptedSource = delivery.SourceHex
		return nil
	})

	require.NoError(t, worker.Deliver(dest, wire))
	require.NotEmpty(t, acceptedSource)
}

func TestInboundWorkerDeliverReturnsErrorOnBadPayload(t *testing.T) {
	var dest [identity.AddressHashSize]byte
	worker := NewInboundWorker(FullWire, func(*InboundDelivery) error {
		t.Fatal("accept should not be called for undecodable payload")
		return nil
	})
	err := worker.Deliver(dest, []byte("short"))
	require.Error(t, err)
}
