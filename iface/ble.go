// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iface

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
)

// DefaultBLEMTU reflects a typical BLE GATT characteristic's usable
// payload after ATT overhead.
const DefaultBLEMTU = 185

// bleSyntheticProbeEnv gates construction of a BLEInterface: real BLE GATT
// central/peripheral support requires a platform-specific driver this
// package does not have, so a BLEInterface only runs as a synthetic
// loopback probe over a caller-supplied io.ReadWriteCloser, and only when
// explicitly opted into.
const bleSyntheticProbeEnv = "LXMF_BLE_SYNTHETIC_PROBE"

// ErrBLESyntheticProbeDisabled is returned by NewBLEInterface when
// LXMF_BLE_SYNTHETIC_PROBE is not set.
var ErrBLESyntheticProbeDisabled = errors.New("iface: ble: set LXMF_BLE_SYNTHETIC_PROBE=1 to enable the synthetic BLE probe interface")

// BLEInterface is a synthetic stand-in for a BLE GATT link, framed
// identically to the serial interface. It exists so higher layers
// (transport, lxmf) can be exercised against a BLE-shaped interface without
// a real Bluetooth stack; it is not a substitute for one.
type BLEInterface struct {
	name string
	mtu  int
	port io.ReadWriteCloser

	writer *bufio.Writer
}

// NewBLEInterface wraps port as a synthetic BLE interface. Returns
// ErrBLESyntheticProbeDisabled unless LXMF_BLE_SYNTHETIC_PROBE is set to a
// non-empty value.
func NewBLEInterface(name string, port io.ReadWriteCloser) (*BLEInterface, error) {
	if os.Getenv(bleSyntheticProbeEnv) == "" {
		return nil, ErrBLESyntheticProbeDisabled
	}
	return &BLEInterface{name: name, mtu: DefaultBLEMTU, port: port, writer: bufio.NewWriter(port)}, nil
}

// Name implements Interface.
func (b *BLEInterface) Name() string { return b.name }

// MTU implements Interface.
func (b *BLEInterface) MTU() int { return b.mtu }

// Send implements Interface.
func (b *BLEInterface) Send(ctx context.Context, data []byte) error {
	if _, err := b.writer.Write(encodeFrame(data)); err != nil {
		return err
	}
	return b.writer.Flush()
}

// Spawn implements Interface.
func (b *BLEInterface) Spawn(ctx context.Context, onReceive InboundFunc) error {
	go func() {
		<-ctx.Done()
		b.port.Close()
	}()

	reader := bufio.NewReader(b.port)
	for {
		frame, err := readFrame(reader)
		if err != nil {
			if ctx.Err() != nil || err == io.EOF {
				return nil
			}
			return err
		}
		onReceive(frame)
	}
}
