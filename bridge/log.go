// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package bridge wires the transport, propagation, and RPC layers
// together: it turns raw announces and inbound packets into the
// peer-table updates, message records, and delivery events the RPC
// daemon surfaces to clients.
package bridge

import "github.com/btcsuite/btclog"

var log btclog.Logger

// UseLogger sets the package-wide logger used by the bridge package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	log = btclog.Disabled
}
