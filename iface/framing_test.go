// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iface

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestFrameRoundTrip(t *testing.T) {
	payload := []byte{0x01, 0x7E, 0x02, 0x7D, 0x03, 0x7E, 0x7D}
	encoded := encodeFrame(payload)

	got, err := readFrame(bufio.NewReader(bytes.NewReader(encoded)))
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestFrameRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		payload := rapid.SliceOf(rapid.Byte()).Draw(rt, "payload")
		encoded := encodeFrame(payload)
		got, err := readFrame(bufio.NewReader(bytes.NewReader(encoded)))
		if err != nil {
			rt.Fatalf("readFrame: %v", err)
		}
		if !bytes.Equal(payload, got) && !(len(payload) == 0 && len(got) == 0) {
			rt.Fatalf("round trip mismatch: got %v want %v", got, payload)
		}
	})
}

func TestMultipleFramesBackToBack(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeFrame([]byte("first")))
	buf.Write(encodeFrame([]byte("second")))

	r := bufio.NewReader(&buf)
	f1, err := readFrame(r)
	require.NoError(t, err)
	require.Equal(t, []byte("first"), f1)

	f2, err := readFrame(r)
	require.NoError(t, err)
	require.Equal(t, []byte("second"), f2)
}
