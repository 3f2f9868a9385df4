// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package lxmf implements the application messaging layer: the LXM wire
// envelope, the delivery-method decision, the well-known fields map, and
// paper-message URIs (§4.8).
package lxmf

import "github.com/btcsuite/btclog"

var log btclog.Logger

// UseLogger sets the package-wide logger used by the lxmf package.
func UseLogger(logger btclog.Logger) {
	log = logger
}

func init() {
	log = btclog.Disabled
}
