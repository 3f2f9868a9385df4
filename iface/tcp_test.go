// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iface

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestTCPClientServerRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	ln.Close()

	server := NewTCPServer("tcp-server", addr)
	client := NewTCPClient("tcp-client", addr)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	serverRecv := make(chan []byte, 1)
	clientRecv := make(chan []byte, 1)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		server.Spawn(ctx, func(data []byte) { serverRecv <- data })
	}()
	go func() {
		defer wg.Done()
		client.Spawn(ctx, func(data []byte) { clientRecv <- data })
	}()

	require.Eventually(t, func() bool {
		return client.Send(ctx, []byte("hello-from-client")) == nil
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case got := <-serverRecv:
		require.Equal(t, []byte("hello-from-client"), got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for server to receive")
	}

	require.Eventually(t, func() bool {
		return server.Send(ctx, []byte("hello-from-server")) == nil
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case got := <-clientRecv:
		require.Equal(t, []byte("hello-from-server"), got)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for client to receive")
	}

	cancel()
	wg.Wait()
}
