// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/lxmf-mesh/reticulumd/config"
	"github.com/lxmf-mesh/reticulumd/rpcd"
	"github.com/vmihailenco/msgpack/v5"
)

const dialTimeout = 5 * time.Second

// rpcAddress resolves the daemon address to dial: the --rpc flag if
// given, else the unix socket rpc.sock under the profile root.
func rpcAddress() (string, error) {
	if opts.RPC != "" {
		return opts.RPC, nil
	}
	root, err := config.ProfileRoot(opts.Profile)
	if err != nil {
		return "", fmt.Errorf("resolve profile root: %w", err)
	}
	return "unix://" + root + "/rpc.sock", nil
}

// dial connects to the daemon's RPC socket, accepting either a bare
// host:port (TCP) or a unix:// path.
func dial(addr string) (net.Conn, error) {
	if strings.HasPrefix(addr, "unix://") {
		return net.DialTimeout("unix", strings.TrimPrefix(addr, "unix://"), dialTimeout)
	}
	return net.DialTimeout("tcp", addr, dialTimeout)
}

// callRPC dials the daemon, sends one request frame, and returns its
// decoded response.
func callRPC(method string, params interface{}) (rpcd.Response, error) {
	addr, err := rpcAddress()
	if err != nil {
		return rpcd.Response{}, err
	}
	conn, err := dial(addr)
	if err != nil {
		return rpcd.Response{}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	req := rpcd.Request{Method: method}
	if params != nil {
		b, err := msgpack.Marshal(params)
		if err != nil {
			return rpcd.Response{}, fmt.Errorf("encode params: %w", err)
		}
		req.Params = b
	}
	frame, err := rpcd.EncodeFrame(req)
	if err != nil {
		return rpcd.Response{}, fmt.Errorf("encode request: %w", err)
	}
	if _, err := conn.Write(frame); err != nil {
		return rpcd.Response{}, fmt.Errorf("send request: %w", err)
	}

	buf := make([]byte, 0, 4096)
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			var resp rpcd.Response
			if consumed, decErr := rpcd.DecodeFrame(buf, &resp); decErr == nil {
				_ = consumed
				return resp, nil
			}
		}
		if err != nil {
			return rpcd.Response{}, fmt.Errorf("read response: %w", err)
		}
	}
}

// printResult renders an RPC result per the --json/--quiet flags.
func printResult(method string, result interface{}) {
	if opts.Quiet {
		return
	}
	if opts.JSON {
		b, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			fmt.Println(result)
			return
		}
		fmt.Println(string(b))
		return
	}
	fmt.Printf("%s: %+v\n", method, result)
}
