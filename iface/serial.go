// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iface

import (
	"bufio"
	"context"
	"io"
)

// SerialInterface carries HDLC-framed packets over any io.ReadWriteCloser,
// typically a serial port. The port itself is supplied by the caller (this
// package has no platform-specific serial driver dependency) so that tests
// can substitute an in-memory pipe.
type SerialInterface struct {
	name string
	mtu  int
	port io.ReadWriteCloser

	writer *bufio.Writer
}

// NewSerialInterface wraps port as a framed packet interface named name.
// mtu should reflect the link's actual maximum useful frame size (serial
// links are typically narrower than TCP/UDP).
func NewSerialInterface(name string, port io.ReadWriteCloser, mtu int) *SerialInterface {
	if mtu <= 0 {
		mtu = DefaultMTU
	}
	return &SerialInterface{name: name, mtu: mtu, port: port, writer: bufio.NewWriter(port)}
}

// Name implements Interface.
func (s *SerialInterface) Name() string { return s.name }

// MTU implements Interface.
func (s *SerialInterface) MTU() int { return s.mtu }

// Send implements Interface.
func (s *SerialInterface) Send(ctx context.Context, data []byte) error {
	if _, err := s.writer.Write(encodeFrame(data)); err != nil {
		return err
	}
	return s.writer.Flush()
}

// Spawn implements Interface.
func (s *SerialInterface) Spawn(ctx context.Context, onReceive InboundFunc) error {
	go func() {
		<-ctx.Done()
		s.port.Close()
	}()

	reader := bufio.NewReader(s.port)
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
