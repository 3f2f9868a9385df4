// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package packet implements the wire packet header and payload framing:
// the bit-packed two-byte header, destination hashing, and the packet hash
// used for replay detection and receipt correlation.
package packet

import "fmt"

// PacketType identifies the purpose of a packet's payload.
type PacketType uint8

const (
	TypeData         PacketType = 0
	TypeAnnounce     PacketType = 1
	TypeLinkRequest  PacketType = 2
	TypeProof        PacketType = 3
)

// DestinationType identifies the addressing mode of a packet's destination.
type DestinationType uint8

const (
	DestSingle DestinationType = 0
	DestGroup  DestinationType = 1
	DestPlain  DestinationType = 2
	DestLink   DestinationType = 3
)

// PropagationType indicates whether a packet is locally broadcast or
// forwarded via an explicit next-hop (transport) address.
type PropagationType uint8

const (
	PropBroadcast  PropagationType = 0
	PropTransport  PropagationType = 1
)

// Context further qualifies a Data packet's payload.
type Context uint8

const (
	CtxNone                  Context = 0x00
	CtxResource              Context = 0x01
	CtxResourceAdvertisement Context = 0x02
	CtxResourceRequest       Context = 0x03
	CtxResourceHashmap       Context = 0x04
	CtxResourceProof         Context = 0x05
	CtxCacheRequest          Context = 0x06
	CtxRequest               Context = 0x07
	CtxResponse              Context = 0x08
	CtxPathResponse          Context = 0x09
	CtxCommand               Context = 0x0A
	CtxCommandStatus         Context = 0x0B
	CtxChannel               Context = 0x0C
	CtxKeepAlive             Context = 0xFA
	CtxLinkIdentify          Context = 0xFB
	CtxLinkClose             Context = 0xFC
	CtxLinkProof             Context = 0xFD
	CtxLrRTT                 Context = 0xFE
	CtxLrProof               Context = 0xFF
)

// HeaderType distinguishes a single-address header (Type-1) from a header
// that also carries a transport/next-hop address (Type-2).
type HeaderType uint8

const (
	HeaderType1 HeaderType = 0
	HeaderType2 HeaderType = 1
)

// MaxHops is the hard ceiling on a packet's hop count (§3 invariant).
const MaxHops = 128

// AddressHashSize is the size in bytes of a destination/transport address hash.
const AddressHashSize = 16

// Header is the decoded form of the packet's fixed two-byte header: a flags
// byte followed by the one-byte hop count.
type Header struct {
	IfacFlag        bool
	HeaderType      HeaderType
	ContextFlag     bool
	PropagationType PropagationType
	DestinationType DestinationType
	PacketType      PacketType
	Hops            uint8
}

// Encode packs the header into its two-byte wire form.
func (h Header) Encode() [2]byte {
	var b0 byte
	if h.IfacFlag {
		b0 |= 1 << 7
	}
	if h.HeaderType == HeaderType2 {
		b0 |= 1 << 6
	}
	if h.ContextFlag {
		b0 |= 1 << 5
	}
	b0 |= byte(h.PropagationType&0x01) << 4
	b0 |= byte(h.DestinationType&0x03) << 2
	b0 |= byte(h.PacketType & 0x03)
	return [2]byte{b0, h.Hops}
}

// DecodeHeader unpacks the two-byte wire header.
func DecodeHeader(b [2]byte) Header {
	b0 := b[0]
	return Header{
		IfacFlag:        b0&(1<<7) != 0,
		HeaderType:      HeaderType((b0 >> 6) & 0x01),
		ContextFlag:     b0&(1<<5) != 0,
		PropagationType: PropagationType((b0 >> 4) & 0x01),
		DestinationType: DestinationType((b0 >> 2) & 0x03),
		PacketType:      PacketType(b0 & 0x03),
		Hops:            b[1],
	}
}

// MetaMasked returns byte0 with only the destination-type and packet-type
// bits retained (mask 0x0F). Used as the stable component of the packet
// hash and link id preimages, so that ifac/header-type/context-flag framing
// choices at a given hop never change packet identity.
func (h Header) MetaMasked() byte {
	return h.Encode()[0] & 0x0F
}

// MinHeaderLen returns the minimum on-wire length of the header section
// (two header bytes, destination hash, and optional transport hash for
// Type-2), not counting an optional ifac or the context/data that follow.
func (h Header) MinHeaderLen() int {
	n := 2 + AddressHashSize
	if h.HeaderType == HeaderType2 {
		n += AddressHashSize
	}
	return n
}

func (t PacketType) String() string {
	switch t {
	case TypeData:
		return "Data"
	case TypeAnnounce:
		return "Announce"
	case TypeLinkRequest:
		return "LinkRequest"
	case TypeProof:
		return "Proof"
	default:
		return fmt.Sprintf("PacketType(%d)", uint8(t))
	}
}

func (t DestinationType) String() string {
	switch t {
	case DestSingle:
		return "Single"
	case DestGroup:
		return "Group"
	case DestPlain:
		return "Plain"
	case DestLink:
		return "Link"
	default:
		return fmt.Sprintf("DestinationType(%d)", uint8(t))
	}
}
