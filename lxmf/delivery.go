// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lxmf

import (
	"fmt"

	"github.com/lxmf-mesh/reticulumd/crypto"
)

// Method is the caller-desired or effective delivery method (§4.8).
type Method uint8

const (
	MethodAuto Method = iota
	MethodOpportunistic
	MethodDirect
	MethodPropagated
	MethodPaper
)

func (m Method) String() string {
	switch m {
	case MethodAuto:
		return "auto"
	case MethodOpportunistic:
		return "opportunistic"
	case MethodDirect:
		return "direct"
	case MethodPropagated:
		return "propagated"
	case MethodPaper:
		return "paper"
	default:
		return fmt.Sprintf("Method(%d)", uint8(m))
	}
}

// Representation is the concrete wire shape chosen for a delivery.
type Representation uint8

const (
	RepPacket Representation = iota
	RepResource
	RepPaper
)

func (r Representation) String() string {
	switch r {
	case RepPacket:
		return "packet"
	case RepResource:
		return "resource"
	case RepPaper:
		return "paper"
	default:
		return fmt.Sprintf("Representation(%d)", uint8(r))
	}
}

// ErrDirectPacketTooLarge names the case of a direct-packet send whose
// content does not fit in a single link data packet. Decide does not return
// it: DecideRequest has no way to pin a representation, and a direct send
// over the direct packet limit is chosen as RepResource instead.
var ErrDirectPacketTooLarge = fmt.Errorf("lxmf: content exceeds the link packet MDU for a pinned direct-packet send")

// ENCRYPTED_PACKET_MAX_CONTENT and LINK_PACKET_MAX_CONTENT are both derived
// from crypto.MaxLinkPlaintext: the opportunistic path additionally prepends
// an ephemeral X25519 public key ahead of the Fernet-like token (§4.1),
// so its budget is crypto.X25519KeySize bytes narrower than a packet
// already flowing over an established link.
func encryptedPacketMaxContent(mtu, ifacMin, headerMin int) int {
	return crypto.MaxLinkPlaintext(mtu, ifacMin+crypto.X25519KeySize, headerMin)
}

func linkPacketMaxContent(mtu, ifacMin, headerMin int) int {
	return crypto.MaxLinkPlaintext(mtu, ifacMin, headerMin)
}

// DecideRequest captures the inputs to the delivery decision (§4.8's
// table): the caller's desired method, whether the destination is a plain
// (non-link-capable) single destination, the content size, and the MTU
// budget figures needed to evaluate the size thresholds.
type DecideRequest struct {
	Desired           Method
	DestinationSingle bool
	ContentSize       int
	HasAttachment     bool
	MTU               int
	IfacMin           int
	HeaderMin         int
	PaperMDU          int
}

// Decide applies §4.8's delivery-method table, returning the effective
// method and wire representation. A direct send goes as a single packet only
// when its content fits the smaller of the opportunistic and link packet
// budgets. It returns an error for paper content
// over PaperMDU, for a direct send to a destination that is not a single
// destination, and for an unknown method.
func Decide(req DecideRequest) (Method, Representation, error) {
	encMax := encryptedPacketMaxContent(req.MTU, req.IfacMin, req.HeaderMin)
	linkMax := linkPacketMaxContent(req.MTU, req.IfacMin, req.HeaderMin)
	directMax := min(encMax, linkMax)

	switch req.Desired {
	case MethodPropagated:
		return MethodPropagated, RepResource, nil

	case MethodPaper:
		if req.ContentSize > req.PaperMDU {
			return 0, 0, fmt.Errorf("lxmf: content exceeds paper MDU (%d > %d)", req.ContentSize, req.PaperMDU)
		}
		return MethodPaper, RepPaper, nil

	case MethodDirect:
		if !req.DestinationSingle {
			return 0, 0, fmt.Errorf("lxmf: direct delivery requires a single destination")
		}
		if req.ContentSize <= directMax {
			return MethodDirect, RepPacket, nil
		}
		return MethodDirect, RepResource, nil

	case MethodOpportunistic, MethodAuto:
		if !req.HasAttachment && req.ContentSize <= encMax {
			return MethodOpportunistic, RepPacket, nil
		}
		if req.DestinationSingle {
			if req.ContentSize <= directMax {
				return MethodDirect, RepPacket, nil
			}
			return MethodDirect, RepResource, nil
		}
		return MethodPropagated, RepResource, nil

	default:
		return 0, 0, fmt.Errorf("lxmf: unknown desired method %v", req.Desired)
	}
}
