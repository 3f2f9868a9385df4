// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lxmf

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/lxmf-mesh/reticulumd/identity"
)

// AddressHashSize is the size in bytes of a source/destination address hash.
const AddressHashSize = 16

// SignatureSize is the size in bytes of the Ed25519 signature over the wire
// pre-image.
const SignatureSize = 64

// ErrTruncated is returned when decoding a byte slice too short to be a
// wire message.
var ErrTruncated = errors.New("lxmf: truncated wire message")

// ErrBadSignature is returned when a wire message's signature does not
// verify against the claimed source identity.
var ErrBadSignature = errors.New("lxmf: signature verification failed")

// Message is the decoded form of one LXM application message.
type Message struct {
	Destination [AddressHashSize]byte
	Source      [AddressHashSize]byte
	Signature   [SignatureSize]byte

	Timestamp float64
	Title     []byte
	Content   []byte
	Fields    map[uint8]interface{}
	Stamp     []byte // nil if unstamped
}

// payloadWithoutStamp returns the msgpack-encoded
// `[timestamp, title, content, fields]` list used both as the message id
// input and the signature pre-image payload component.
func (m *Message) payloadWithoutStamp() ([]byte, error) {
	var titleVal, contentVal interface{}
	if m.Title != nil {
		titleVal = m.Title
	}
	if m.Content != nil {
		contentVal = m.Content
	}
	var fieldsVal interface{}
	if m.Fields != nil {
		fieldsVal = m.Fields
	}
	return msgpack.Marshal([]interface{}{m.Timestamp, titleVal, contentVal, fieldsVal})
}

func (m *Message) payload() ([]byte, error) {
	without, err := m.payloadWithoutStamp()
	if err != nil {
		return nil, err
	}
	if m.Stamp == nil {
		return without, nil
	}
	var titleVal, contentVal interface{}
	if m.Title != nil {
		titleVal = m.Title
	}
	if m.Content != nil {
		contentVal = m.Content
	}
	var fieldsVal interface{}
	if m.Fields != nil {
		fieldsVal = m.Fields
	}
	return msgpack.Marshal([]interface{}{m.Timestamp, titleVal, contentVal, fieldsVal, m.Stamp})
}

// signaturePreimage builds `destination || source || payload_without_stamp`.
func (m *Message) signaturePreimage() ([]byte, error) {
	without, err := m.payloadWithoutStamp()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 0, AddressHashSize*2+len(without))
	buf = append(buf, m.Destination[:]...)
	buf = append(buf, m.Source[:]...)
	buf = append(buf, without...)
	return buf, nil
}

// MessageID computes `SHA-256(destination || source || payload_without_stamp)`,
// which is by construction independent of the stamp field.
func (m *Message) MessageID() ([32]byte, error) {
	preimage, err := m.signaturePreimage()
	if err != nil {
		return [32]byte{}, err
	}
	return sha256.Sum256(preimage), nil
}

// Sign computes and sets m.Signature using signer's Ed25519 key. signer's
// identity must match m.Source.
func (m *Message) Sign(signer *identity.Private) error {
	preimage, err := m.signaturePreimage()
	if err != nil {
		return err
	}
	sig := signer.Sign(preimage)
	if len(sig) != SignatureSize {
		return fmt.Errorf("lxmf: unexpected signature length %d", len(sig))
	}
	copy(m.Signature[:], sig)
	return nil
}

// Verify checks m.Signature against sourceVerifying.
func (m *Message) Verify(sourceVerifying ed25519.PublicKey) bool {
	preimage, err := m.signaturePreimage()
	if err != nil {
		return false
	}
	return ed25519.Verify(sourceVerifying, preimage, m.Signature[:])
}

// Pack serializes m to its wire form:
// `destination(16) || source(16) || signature(64) || msgpack(payload)`.
// Pack always includes whatever Signature is currently set (all zero if
// Sign has not been called).
func (m *Message) Pack() ([]byte, error) {
	payload, err := m.payload()
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, AddressHashSize*2+SignatureSize+len(payload))
	out = append(out, m.Destination[:]...)
	out = append(out, m.Source[:]...)
	out = append(out, m.Signature[:]...)
	out = append(out, payload...)
	return out, nil
}

// Unpack parses a wire message. It does not verify the signature; callers
// that require authenticity must also call Verify with the claimed
// source's verifying key, obtained out of band (e.g. from the transport
// layer's cached announce/ratchet state).
func Unpack(data []byte) (*Message, error) {
	if len(data) < 2*AddressHashSize+SignatureSize {
		return nil, ErrTruncated
	}
	m := &Message{}
	off := 0
	copy(m.Destination[:], data[off:off+AddressHashSize])
	off += AddressHashSize
	copy(m.Source[:], data[off:off+AddressHashSize])
	off += AddressHashSize
	copy(m.Signature[:], data[off:off+SignatureSize])
	off += SignatureSize

	var elems []msgpack.RawMessage
	if err := msgpack.Unmarshal(data[off:], &elems); err != nil {
		return nil, fmt.Errorf("lxmf: decode payload: %w", err)
	}
	if len(elems) != 4 && len(elems) != 5 {
		return nil, fmt.Errorf("lxmf: payload has %d elements, want 4 or 5", len(elems))
	}

	if err := msgpack.Unmarshal(elems[0], &m.Timestamp); err != nil {
		var iv int64
		if err2 := msgpack.Unmarshal(elems[0], &iv); err2 != nil {
			return nil, fmt.Errorf("lxmf: decode timestamp: %w", err)
		}
		m.Timestamp = float64(iv)
	}
	if err := unmarshalOptionalBytes(elems[1], &m.Title); err != nil {
		return nil, fmt.Errorf("lxmf: decode title: %w", err)
	}
	if err := unmarshalOptionalBytes(elems[2], &m.Content); err != nil {
		return nil, fmt.Errorf("lxmf: decode content: %w", err)
	}
	if err := unmarshalOptionalFields(elems[3], &m.Fields); err != nil {
		return nil, fmt.Errorf("lxmf: decode fields: %w", err)
	}
	if len(elems) == 5 {
		if err := unmarshalOptionalBytes(elems[4], &m.Stamp); err != nil {
			return nil, fmt.Errorf("lxmf: decode stamp: %w", err)
		}
	}
	return m, nil
}

func unmarshalOptionalBytes(raw msgpack.RawMessage, out *[]byte) error {
	var v interface{}
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v == nil {
		*out = nil
		return nil
	}
	b, ok := v.([]byte)
	if !ok {
		return fmt.Errorf("expected bin or nil, got %T", v)
	}
	*out = b
	return nil
}

func unmarshalOptionalFields(raw msgpack.RawMessage, out *map[uint8]interface{}) error {
	var v interface{}
	if err := msgpack.Unmarshal(raw, &v); err != nil {
		return err
	}
	if v == nil {
		*out = nil
		return nil
	}
	m, ok := v.(map[interface{}]interface{})
	if !ok {
		return fmt.Errorf("expected map or nil, got %T", v)
	}
	fields := make(map[uint8]interface{}, len(m))
	for k, val := range m {
		var key uint8
		switch kv := k.(type) {
		case int8:
			key = uint8(kv)
		case uint8:
			key = kv
		case int64:
			key = uint8(kv)
		case uint64:
			key = uint8(kv)
		default:
			return fmt.Errorf("unexpected field key type %T", k)
		}
		fields[key] = val
	}
	*out = fields
	return nil
}
