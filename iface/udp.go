// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iface

import (
	"context"
	"errors"
	"net"
)

var errNoRemotePeer = errors.New("iface: udp: no remote peer configured")

// UDPInterface sends and receives whole datagrams, one per packet — no
// framing is needed since UDP already preserves message boundaries.
type UDPInterface struct {
	name       string
	mtu        int
	localAddr  string
	remoteAddr string // empty: broadcast/any-peer receive mode

	conn *net.UDPConn
}

// NewUDPInterface creates a UDPInterface bound to localAddr. If remoteAddr
// is non-empty, Send targets that single peer; otherwise the interface only
// receives, and Send returns an error (inbound sender addresses are not
// tracked).
func NewUDPInterface(name, localAddr, remoteAddr string) *UDPInterface {
	return &UDPInterface{name: name, mtu: DefaultMTU, localAddr: localAddr, remoteAddr: remoteAddr}
}

// Name implements Interface.
func (u *UDPInterface) Name() string { return u.name }

// MTU implements Interface.
func (u *UDPInterface) MTU() int { return u.mtu }

// Send implements Interface.
func (u *UDPInterface) Send(ctx context.Context, data []byte) error {
	if u.conn == nil {
		return net.ErrClosed
	}
	if u.remoteAddr == "" {
		return errNoRemotePeer
	}
	raddr, err := net.ResolveUDPAddr("udp", u.remoteAddr)
	if err != nil {
		return err
	}
	_, err = u.conn.WriteToUDP(data, raddr)
	return err
}

// Spawn implements Interface.
func (u *UDPInterface) Spawn(ctx context.Context, onReceive InboundFunc) error {
	laddr, err := net.ResolveUDPAddr("udp", u.localAddr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return err
	}
	u.conn = conn

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	buf := make([]byte, 64*1024)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		frame := make([]byte, n)
		copy(frame, buf[:n])
		onReceive(frame)
	}
}
