// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package rpcd implements the node's transport-neutral RPC daemon: a
// length-prefixed msgpack frame dispatcher, the method taxonomy an SDK
// or CLI drives the node through, a FIFO event queue, and a thin HTTP
// façade over the same frame codec.
package rpcd

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// ErrIncompleteFrame is returned by DecodeFrame when buf does not yet
// contain a complete frame.
var ErrIncompleteFrame = errors.New("rpcd: incomplete frame")

const frameHeaderSize = 4

// Request is an RPC call: {id, method, params}.
type Request struct {
	ID     uint64          `msgpack:"id"`
	Method string          `msgpack:"method"`
	Params msgpack.RawMessage `msgpack:"params"`
}

// ErrorDetail is the error member of a Response.
type ErrorDetail struct {
	Code    string `msgpack:"code"`
	Message string `msgpack:"message"`
}

// Response is the reply to a Request. Error is set when the call failed;
// a failed call may still carry a Result (send_message returns the stored
// record alongside DELIVERY_FAILED).
type Response struct {
	ID     uint64      `msgpack:"id"`
	Result interface{} `msgpack:"result"`
	Error  *ErrorDetail `msgpack:"error"`
}

// Event kinds, as produced by RPC write methods, transport callbacks,
// and the announce scheduler (§4.10).
const (
	EventInbound                  = "inbound"
	EventOutbound                 = "outbound"
	EventReceipt                  = "receipt"
	EventAnnounceSent             = "announce_sent"
	EventAnnounceReceived         = "announce_received"
	EventLinkActivated            = "link_activated"
	EventLinkClosed               = "link_closed"
	EventAlternativeRelayRequest  = "alternative_relay_request"
	EventRuntimeStopped           = "runtime_stopped"
)

// Event is one entry in the FIFO event stream.
type Event struct {
	EventType string      `msgpack:"event_type"`
	Payload   interface{} `msgpack:"payload"`
}

// Error codes used across the method taxonomy.
const (
	CodeNotImplemented   = "NOT_IMPLEMENTED"
	CodeInvalidArgument  = "INVALID_ARGUMENT"
	CodeDeliveryFailed   = "DELIVERY_FAILED"
	CodeNotFound         = "NOT_FOUND"
	CodeInternal         = "INTERNAL"
)

// NewError builds an ErrorDetail.
func NewError(code, message string) *ErrorDetail {
	return &ErrorDetail{Code: code, Message: message}
}

// EncodeFrame packs v as msgpack and prefixes it with its big-endian
// u32 length, per §4.10/§6.2's wire format.
func EncodeFrame(v interface{}) ([]byte, error) {
	payload, err := msgpack.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("rpcd: marshal frame: %w", err)
	}
	if uint64(len(payload)) > uint64(^uint32(0)) {
		return nil, fmt.Errorf("rpcd: frame payload too large: %d bytes", len(payload))
	}
	framed := make([]byte, frameHeaderSize+len(payload))
	binary.BigEndian.PutUint32(framed, uint32(len(payload)))
	copy(framed[frameHeaderSize:], payload)
	return framed, nil
}

// DecodeFrame reads exactly one frame from the front of buf, returning
// the decoded value into out, the number of bytes consumed, and
// ErrIncompleteFrame if buf does not yet hold a whole frame.
func DecodeFrame(buf []byte, out interface{}) (consumed int, err error) {
	if len(buf) < frameHeaderSize {
		return 0, ErrIncompleteFrame
	}
	length := binary.BigEndian.Uint32(buf)
	total := frameHeaderSize + int(length)
	if len(buf) < total {
		return 0, ErrIncompleteFrame
	}
	if err := msgpack.Unmarshal(buf[frameHeaderSize:total], out); err != nil {
		return 0, fmt.Errorf("rpcd: unmarshal frame: %w", err)
	}
	return total, nil
}
