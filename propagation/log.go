// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package propagation implements the store-and-forward propagation node:
// proof-of-work stamp validation, the content-addressed transient store,
// peer sync batching, and the ticket cache (§4.9).
package propagation

import "github.com/btcsuite/btclog"

var log btclog.Logger

// UseLogger sets the package-wide logger used by the propagation package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	log = btclog.Disabled
}
