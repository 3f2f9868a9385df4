// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package resource implements chunked transfer of payloads larger than a
// single link data packet (§4.6): advertisement, per-part hashmap, and
// selective retransmit.
package resource

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"time"
)

// MapHashSize is the size in bytes of a per-part map hash.
const MapHashSize = 4

// RandomHashSize is the size in bytes of a transfer's random hash.
const RandomHashSize = 8

const (
	// DefaultRetryInterval is the default wait between selective
	// retransmit rounds.
	DefaultRetryInterval = 2 * time.Second
	// DefaultRetryLimit is the default number of retransmit attempts
	// before the sender gives up.
	DefaultRetryLimit = 5
)

// ErrSplitUnsupported is returned (by receivers) for an advertisement whose
// split flag is set: multi-segment hashmaps are not implemented in this
// version and such advertisements must be ignored (§4.6).
var ErrSplitUnsupported = errors.New("resource: split advertisements are not supported")

// Advertisement is the first packet of a resource transfer.
type Advertisement struct {
	TransferSize  uint64
	DataSize      uint64
	Parts         uint16
	Hash          [32]byte // hash of the full payload
	RandomHash    [RandomHashSize]byte
	OriginalHash  [32]byte
	SegmentIndex  uint16
	TotalSegments uint16
	RequestID     *[16]byte
	Split         bool
	Hashmap       [][MapHashSize]byte // one entry per part, in order
}

// Part is one chunk of a resource transfer as carried on the wire, tagged
// with the context-Resource packet type.
type Part struct {
	Index uint16
	Data  []byte
}

func mapHash(partData []byte, randomHash [RandomHashSize]byte) [MapHashSize]byte {
	h := sha256.New()
	h.Write(partData)
	h.Write(randomHash[:])
	sum := h.Sum(nil)
	var out [MapHashSize]byte
	copy(out[:], sum[:MapHashSize])
	return out
}

// Sender drives the sending half of a resource transfer.
type Sender struct {
	parts        [][]byte
	randomHash   [RandomHashSize]byte
	payloadHash  [32]byte
	hashmap      [][MapHashSize]byte
	RetryInterval time.Duration
	RetryLimit    int
	attempts      int
	done          bool
	failed        bool
}

// NewSender splits payload into parts of partSize bytes (the last part may
// be shorter) and computes the advertisement hashmap. partSize must be the
// caller-computed per-part budget (e.g. crypto.MaxLinkPlaintext).
func NewSender(payload []byte, partSize int) (*Sender, Advertisement, error) {
	if partSize <= 0 {
		return nil, Advertisement{}, errors.New("resource: partSize must be positive")
	}
	var randomHash [RandomHashSize]byte
	if _, err := rand.Read(randomHash[:]); err != nil {
		return nil, Advertisement{}, err
	}

	numParts := (len(payload) + partSize - 1) / partSize
	if numParts == 0 {
		numParts = 1
	}
	parts := make([][]byte, 0, numParts)
	hashmap := make([][MapHashSize]byte, 0, numParts)
	for i := 0; i < numParts; i++ {
		start := i * partSize
		end := start + partSize
		if end > len(payload) {
			end = len(payload)
		}
		part := payload[start:end]
		parts = append(parts, part)
		hashmap = append(hashmap, mapHash(part, randomHash))
	}

	payloadHash := sha256.Sum256(payload)

	s := &Sender{
		parts:         parts,
		randomHash:    randomHash,
		payloadHash:   payloadHash,
		hashmap:       hashmap,
		RetryInterval: DefaultRetryInterval,
		RetryLimit:    DefaultRetryLimit,
	}

	adv := Advertisement{
		TransferSize:  uint64(len(payload)),
		DataSize:      uint64(len(payload)),
		Parts:         uint16(numParts),
		Hash:          payloadHash,
		RandomHash:    randomHash,
		OriginalHash:  payloadHash,
		SegmentIndex:  0,
		TotalSegments: 1,
		Split:         false,
		Hashmap:       hashmap,
	}
	return s, adv, nil
}

// AllParts returns every part, used on the initial send before any
// ResourceRequest narrows the set.
func (s *Sender) AllParts() []Part {
	out := make([]Part, len(s.parts))
	for i, p := range s.parts {
		out[i] = Part{Index: uint16(i), Data: p}
	}
	return out
}

// HandleRequest returns the parts matching the requested map hashes. If
// hashmapExhausted is true and no parts remain outstanding, the transfer is
// marked done. Once more than RetryLimit requests have been handled, it
// returns nil and Failed() reports true.
func (s *Sender) HandleRequest(requested [][MapHashSize]byte, hashmapExhausted bool) []Part {
	s.attempts++
	if s.attempts > s.RetryLimit {
		s.failed = true
		return nil
	}
	wanted := make(map[[MapHashSize]byte]bool, len(requested))
	for _, h := range requested {
		wanted[h] = true
	}
	var out []Part
	for i, h := range s.hashmap {
		if wanted[h] {
			out = append(out, Part{Index: uint16(i), Data: s.parts[i]})
		}
	}
	if len(requested) == 0 && hashmapExhausted {
		s.done = true
	}
	return out
}

// MarkComplete records that a ResourceProof was received acknowledging
// successful completion.
func (s *Sender) MarkComplete() { s.done = true }

// Done reports whether the transfer completed successfully.
func (s *Sender) Done() bool { return s.done }

// Failed reports whether the sender gave up after exceeding RetryLimit.
func (s *Sender) Failed() bool { return s.failed }

// Receiver assembles parts into the original payload and tracks which map
// hashes are still missing.
type Receiver struct {
	adv        Advertisement
	haveParts  map[uint16][]byte
}

// NewReceiver begins receiving a resource transfer described by adv. If
// adv.Split is set, the advertisement is rejected outright (§4.6).
func NewReceiver(adv Advertisement) (*Receiver, error) {
	if adv.Split {
		return nil, ErrSplitUnsupported
	}
	return &Receiver{adv: adv, haveParts: make(map[uint16][]byte, adv.Parts)}, nil
}

// AcceptPart records an inbound part if its content matches the
// advertisement's hashmap entry for its index; returns false on mismatch.
func (r *Receiver) AcceptPart(p Part) bool {
	if int(p.Index) >= len(r.adv.Hashmap) {
		return false
	}
	want := r.adv.Hashmap[p.Index]
	if mapHash(p.Data, r.adv.RandomHash) != want {
		return false
	}
	r.haveParts[p.Index] = p.Data
	return true
}

// Missing returns the map hashes of parts not yet received, in order.
func (r *Receiver) Missing() [][MapHashSize]byte {
	var out [][MapHashSize]byte
	for i := uint16(0); i < r.adv.Parts; i++ {
		if _, ok := r.haveParts[i]; !ok {
			out = append(out, r.adv.Hashmap[i])
		}
	}
	return out
}

// Complete reports whether every part has been received.
func (r *Receiver) Complete() bool {
	return len(r.haveParts) == int(r.adv.Parts)
}

// Assemble concatenates the received parts in order and verifies the result
// against the advertisement's payload hash. Must only be called once
// Complete() is true.
func (r *Receiver) Assemble() ([]byte, error) {
	if !r.Complete() {
		return nil, errors.New("resource: transfer not complete")
	}
	out := make([]byte, 0, r.adv.DataSize)
	for i := uint16(0); i < r.adv.Parts; i++ {
		out = append(out, r.haveParts[i]...)
	}
	if sha256.Sum256(out) != r.adv.Hash {
		return nil, errors.New("resource: assembled payload hash mismatch")
	}
	return out, nil
}
