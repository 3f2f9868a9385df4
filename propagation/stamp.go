// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package propagation

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/crypto/hkdf"
)

// StampSize is the size in bytes of a propagation stamp.
const StampSize = 32

// DefaultStampRounds is the number of 256-byte blocks making up a stamp
// workblock.
const DefaultStampRounds = 1000

// StampBlockSize is the size in bytes of one workblock round.
const StampBlockSize = 256

// ErrStampTooShort is returned when splitting transient data shorter than
// StampSize.
var ErrStampTooShort = errors.New("propagation: transient data shorter than a stamp")

// SplitTransientData separates transient_data into its lxmf_bytes and
// trailing 32-byte stamp.
func SplitTransientData(transientData []byte) (lxmfBytes, stamp []byte, err error) {
	if len(transientData) < StampSize {
		return nil, nil, ErrStampTooShort
	}
	split := len(transientData) - StampSize
	return transientData[:split], transientData[split:], nil
}

// TransientID returns SHA-256(lxmfBytes), the content address a stamp is
// computed against.
func TransientID(lxmfBytes []byte) [32]byte {
	return sha256.Sum256(lxmfBytes)
}

// stampWorkblock produces rounds 256-byte blocks derived from HKDF-SHA-256
// keyed by material, one block per round index, each block's salt bound to
// SHA-256(material || msgpack(round_index)) so successive blocks are
// cryptographically independent of one another.
func stampWorkblock(material []byte, rounds int) ([]byte, error) {
	out := make([]byte, 0, rounds*StampBlockSize)
	for i := uint64(0); i < uint64(rounds); i++ {
		idxBytes, err := msgpack.Marshal(i)
		if err != nil {
			return nil, fmt.Errorf("propagation: marshal round index: %w", err)
		}
		h := sha256.New()
		h.Write(material)
		h.Write(idxBytes)
		salt := h.Sum(nil)

		block := make([]byte, StampBlockSize)
		r := hkdf.New(sha256.New, material, salt, nil)
		if _, err := io.ReadFull(r, block); err != nil {
			return nil, fmt.Errorf("propagation: derive workblock round %d: %w", i, err)
		}
		out = append(out, block...)
	}
	return out, nil
}

// leadingZeroBits counts the number of leading zero bits in h.
func leadingZeroBits(h [32]byte) int {
	n := 0
	for _, b := range h {
		if b == 0 {
			n += 8
			continue
		}
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if b&mask != 0 {
				return n
			}
			n++
		}
	}
	return n
}

// ValidateStamp reports whether transientData's trailing stamp satisfies
// targetCost against its workblock, per §4.9 steps 1-4.
func ValidateStamp(transientData []byte, targetCost int) (bool, error) {
	lxmfBytes, stamp, err := SplitTransientData(transientData)
	if err != nil {
		return false, err
	}
	transientID := TransientID(lxmfBytes)
	workblock, err := stampWorkblock(transientID[:], DefaultStampRounds)
	if err != nil {
		return false, err
	}
	h := sha256.New()
	h.Write(workblock)
	h.Write(stamp)
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return leadingZeroBits(sum) >= targetCost, nil
}

// GenerateStamp searches for a 32-byte stamp over transientID satisfying
// targetCost, bounded by ctx. Each candidate is drawn from crypto/rand;
// callers that need cancellation bind ctx to a one-shot
// cancel token keyed by the transient id material (§6's cancel_work).
func GenerateStamp(ctx context.Context, transientID [32]byte, targetCost int) ([]byte, error) {
	workblock, err := stampWorkblock(transientID[:], DefaultStampRounds)
	if err != nil {
		return nil, err
	}
	stamp := make([]byte, StampSize)
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if _, err := rand.Read(stamp); err != nil {
			return nil, err
		}
		h := sha256.New()
		h.Write(workblock)
		h.Write(stamp)
		var sum [32]byte
		copy(sum[:], h.Sum(nil))
		if leadingZeroBits(sum) >= targetCost {
			out := make([]byte, StampSize)
			copy(out, stamp)
			return out, nil
		}
	}
}
