// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package iface

import (
	"bufio"
	"errors"
	"io"
)

// HDLC-style byte framing for stream interfaces (TCP, serial), where a
// packet boundary is not otherwise implied by the transport. A frame is
// delimited by flagByte on both ends; any literal occurrence of flagByte or
// escByte within the payload is escaped as escByte, (byte ^ escXOR).
const (
	flagByte byte = 0x7E
	escByte  byte = 0x7D
	escXOR   byte = 0x20
)

// ErrFrameTooLarge is returned when decoding a frame whose unescaped length
// would exceed maxFrameSize.
var ErrFrameTooLarge = errors.New("iface: frame exceeds maximum size")

// maxFrameSize bounds a single decoded frame to guard against a runaway
// peer that never sends a closing flag byte.
const maxFrameSize = 1 << 20

// encodeFrame wraps data in flag bytes, escaping any literal flag/esc bytes
// within it.
func encodeFrame(data []byte) []byte {
	out := make([]byte, 0, len(data)+4)
	out = append(out, flagByte)
	for _, b := range data {
		if b == flagByte || b == escByte {
			out = append(out, escByte, b^escXOR)
		} else {
			out = append(out, b)
		}
	}
	out = append(out, flagByte)
	return out
}

// readFrame reads one flag-delimited, escape-decoded frame from r, skipping
// any leading flag bytes (which may be keep-alive padding between frames).
func readFrame(r *bufio.Reader) ([]byte, error) {
	sawRepeatedFlag := false
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b != flagByte {
			return nil, errors.New("iface: expected frame start")
		}
		// Consume any repeated leading flag bytes as inter-frame padding.
		peeked, err := r.Peek(1)
		if err == nil && peeked[0] == flagByte {
			sawRepeatedFlag = true
			continue
		}
		break
	}

	var out []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			// A flag pair with nothing after it is an encoded empty frame.
			if errors.Is(err, io.EOF) && sawRepeatedFlag && len(out) == 0 {
				return out, nil
			}
			return nil, err
		}
		if b == flagByte {
			return out, nil
		}
		if b == escByte {
			next, err := r.ReadByte()
			if err != nil {
				return nil, err
			}
			b = next ^ escXOR
		}
		if len(out) >= maxFrameSize {
			return nil, ErrFrameTooLarge
		}
		out = append(out, b)
	}
}
