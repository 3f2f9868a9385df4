// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iface

import "context"

// InboundFunc is called once per fully-framed inbound packet an interface
// receives.
type InboundFunc func(data []byte)

// Interface is the capability contract every transport adapter
// (TCP/UDP/serial/LoRa/BLE) implements. A node runs one goroutine per
// configured interface via Spawn, which blocks until ctx is cancelled or an
// unrecoverable error occurs.
type Interface interface {
	// Name identifies this interface instance (as configured, e.g.
	// "tcp0").
	Name() string
	// MTU returns the maximum packet payload this interface can carry
	// in one frame.
	MTU() int
	// Send transmits data as a single framed packet.
	Send(ctx context.Context, data []byte) error
	// Spawn runs the interface's receive loop, invoking onReceive for
	// every inbound frame, until ctx is done.
	Spawn(ctx context.Context, onReceive InboundFunc) error
}

// DefaultMTU is used by interfaces that do not have a narrower hardware
// constraint (TCP, UDP over a local network).
const DefaultMTU = 500
