// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package packet

import (
	"crypto/sha256"
	"errors"
	"fmt"
)

// ErrTruncated is returned when a byte slice is too short to decode a packet.
var ErrTruncated = errors.New("packet: truncated input")

// ErrHopsExceeded is returned when a packet's hop count exceeds MaxHops.
var ErrHopsExceeded = errors.New("packet: hop count exceeds maximum")

// Packet is the decoded wire packet: header, destination (and optional
// transport/next-hop address for Type-2), context, data, and an optional
// interface-access-code prefix.
type Packet struct {
	Header      Header
	IFAC        []byte // present iff Header.IfacFlag
	Destination [AddressHashSize]byte
	Transport   [AddressHashSize]byte // present iff Header.HeaderType == HeaderType2
	Context     Context
	Data        []byte
}

// ToBytes serializes the packet to its wire representation.
func (p Packet) ToBytes() ([]byte, error) {
	if p.Header.Hops > MaxHops {
		return nil, ErrHopsExceeded
	}
	hdr := p.Header.Encode()
	out := make([]byte, 0, 2+len(p.IFAC)+AddressHashSize*2+1+len(p.Data))
	out = append(out, hdr[:]...)
	if p.Header.IfacFlag {
		out = append(out, p.IFAC...)
	}
	out = append(out, p.Destination[:]...)
	if p.Header.HeaderType == HeaderType2 {
		out = append(out, p.Transport[:]...)
	}
	out = append(out, byte(p.Context))
	out = append(out, p.Data...)
	return out, nil
}

// FromBytes parses a packet from its wire representation. ifacLen gives the
// length of the optional interface-access-code prefix to consume when the
// header's ifac flag is set; interfaces that don't use an ifac pass 0.
func FromBytes(b []byte, ifacLen int) (Packet, error) {
	if len(b) < 2 {
		return Packet{}, ErrTruncated
	}
	hdr := DecodeHeader([2]byte{b[0], b[1]})
	off := 2

	var p Packet
	p.Header = hdr

	if hdr.IfacFlag {
		if len(b) < off+ifacLen {
			return Packet{}, ErrTruncated
		}
		p.IFAC = append([]byte{}, b[off:off+ifacLen]...)
		off += ifacLen
	}

	if len(b) < off+AddressHashSize {
		return Packet{}, ErrTruncated
	}
	copy(p.Destination[:], b[off:off+AddressHashSize])
	off += AddressHashSize

	if hdr.HeaderType == HeaderType2 {
		if len(b) < off+AddressHashSize {
			return Packet{}, ErrTruncated
		}
		copy(p.Transport[:], b[off:off+AddressHashSize])
		off += AddressHashSize
	}

	if len(b) < off+1 {
		return Packet{}, ErrTruncated
	}
	p.Context = Context(b[off])
	off++

	p.Data = append([]byte{}, b[off:]...)

	if hdr.Hops > MaxHops {
		return Packet{}, ErrHopsExceeded
	}
	return p, nil
}

// Hash computes the packet hash used for replay detection, resource
// advertisements, and receipt correlation: SHA-256 over the masked header
// meta byte, the destination, the context byte, and the data.
func (p Packet) Hash() [32]byte {
	h := sha256.New()
	h.Write([]byte{p.Header.MetaMasked()})
	h.Write(p.Destination[:])
	h.Write([]byte{byte(p.Context)})
	h.Write(p.Data)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func (p Packet) String() string {
	return fmt.Sprintf("Packet{type=%s dest=%s ctx=%#x hops=%d len(data)=%d}",
		p.Header.PacketType, p.Header.DestinationType, p.Context, p.Header.Hops, len(p.Data))
}
