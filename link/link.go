// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package link implements the authenticated link state machine: the
// request/proof handshake, per-link session key schedule, and encrypted
// data packets (§4.5).
package link

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lxmf-mesh/reticulumd/crypto"
)

// State is a link's position in the Pending -> Active -> Closed machine.
type State int

const (
	Pending State = iota
	Active
	Closed
)

func (s State) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Active:
		return "Active"
	case Closed:
		return "Closed"
	default:
		return "Unknown"
	}
}

// Role distinguishes the link initiator (who sends the request and waits
// for a proof) from the responder (who answers with a proof immediately).
type Role int

const (
	RoleInitiator Role = iota
	RoleResponder
)

const (
	// IDSize is the size in bytes of a link id.
	IDSize = 16
	// DefaultProofTimeout is the default time an initiator waits for a
	// proof before the link transitions to Closed (§3).
	DefaultProofTimeout = 600 * time.Second
	// DefaultIdleTimeout is the default inactivity window before an
	// Active link transitions to Closed (§3).
	DefaultIdleTimeout = 900 * time.Second
)

var (
	// ErrInvalidProof is returned when a proof's signature fails to verify.
	ErrInvalidProof = errors.New("link: invalid proof signature")
	// ErrWrongState is returned when an operation is attempted in a state
	// that does not permit it (e.g. encrypting data on a Closed link).
	ErrWrongState = errors.New("link: operation not valid in current state")
	// ErrDuplicateProof marks a proof that was already accepted; callers
	// should treat this as a no-op, not a failure.
	ErrDuplicateProof = errors.New("link: duplicate proof ignored")
)

// ComputeID derives a link id: SHA-256(headerMetaMasked || destination ||
// context || requestPayload)[:16], where requestPayload excludes any
// trailing key material appended after the canonical request fields.
func ComputeID(headerMetaMasked byte, destination [16]byte, context byte, requestPayload []byte) [IDSize]byte {
	h := sha256.New()
	h.Write([]byte{headerMetaMasked})
	h.Write(destination[:])
	h.Write([]byte{context})
	h.Write(requestPayload)
	sum := h.Sum(nil)
	var out [IDSize]byte
	copy(out[:], sum[:IDSize])
	return out
}

// Link is one end of an authenticated logical channel between two
// destinations, keyed by a 16-byte link id. Exactly one Link value owns
// each end; the two ends are distinct Link instances even when co-located
// in tests.
type Link struct {
	mu sync.Mutex

	ID   [IDSize]byte
	Role Role

	state State

	localEph       *crypto.X25519KeyPair
	peerEphPub     [crypto.X25519KeySize]byte
	localVerifying ed25519.PublicKey
	localSigning   *crypto.SigningKeyPair
	peerVerifying  ed25519.PublicKey

	mtu uint16

	sessionKeys *crypto.TokenKeys

	proofTimeout time.Time
	lastActivity time.Time
	idleTimeout  time.Duration
}

func proofPreimage(id [IDSize]byte, peerEphPub [crypto.X25519KeySize]byte, verifying ed25519.PublicKey, mtu uint16) []byte {
	buf := make([]byte, 0, IDSize+crypto.X25519KeySize+len(verifying)+2)
	buf = append(buf, id[:]...)
	buf = append(buf, peerEphPub[:]...)
	buf = append(buf, verifying...)
	var mtuBE [2]byte
	binary.BigEndian.PutUint16(mtuBE[:], mtu)
	buf = append(buf, mtuBE[:]...)
	return buf
}

// NewRequest begins a link as its initiator: it generates an ephemeral
// X25519 key pair and returns the Pending link plus the wire payload of the
// LinkRequest packet (the ephemeral public key). destinationHash and
// context are the values used to compute the link id and must match what
// the responder computes from the same packet.
func NewRequest(signing *crypto.SigningKeyPair, destinationHash [16]byte, headerMetaMasked byte, context byte, now time.Time) (*Link, []byte, error) {
	eph, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return nil, nil, err
	}
	payload := append([]byte{}, eph.Public[:]...)
	id := ComputeID(headerMetaMasked, destinationHash, context, payload)

	l := &Link{
		ID:             id,
		Role:           RoleInitiator,
		state:          Pending,
		localEph:       eph,
		localVerifying: signing.Public,
		localSigning:   signing,
		proofTimeout:   now.Add(DefaultProofTimeout),
		lastActivity:   now,
		idleTimeout:    DefaultIdleTimeout,
	}
	return l, payload, nil
}

// ReceiveRequest handles an inbound LinkRequest as the responder: it parses
// the initiator's ephemeral public key from requestPayload, generates its
// own ephemeral key pair, derives the session keys immediately (the
// responder knows both halves as soon as it answers), and returns the
// now-Active link plus the wire payload of the Proof packet.
func ReceiveRequest(signing *crypto.SigningKeyPair, destinationHash [16]byte, headerMetaMasked byte, context byte, requestPayload []byte, mtu uint16, now time.Time) (*Link, []byte, error) {
	if len(requestPayload) < crypto.X25519KeySize {
		return nil, nil, fmt.Errorf("link: request payload too short")
	}
	id := ComputeID(headerMetaMasked, destinationHash, context, requestPayload[:crypto.X25519KeySize])

	var peerEphPub [crypto.X25519KeySize]byte
	copy(peerEphPub[:], requestPayload[:crypto.X25519KeySize])

	eph, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return nil, nil, err
	}

	shared, err := crypto.ECDH(eph.Private[:], peerEphPub[:])
	if err != nil {
		return nil, nil, err
	}
	sessionKeys, err := crypto.DeriveTokenKeys(shared, id[:], nil)
	if err != nil {
		return nil, nil, err
	}

	sig := signing.Sign(proofPreimage(id, eph.Public, signing.Public, mtu))

	l := &Link{
		ID:             id,
		Role:           RoleResponder,
		state:          Active,
		localEph:       eph,
		peerEphPub:     peerEphPub,
		localVerifying: signing.Public,
		localSigning:   signing,
		mtu:            mtu,
		sessionKeys:    sessionKeys,
		lastActivity:   now,
		idleTimeout:    DefaultIdleTimeout,
	}

	proofPayload := make([]byte, 0, crypto.X25519KeySize+2+crypto.SignatureSize)
	proofPayload = append(proofPayload, eph.Public[:]...)
	var mtuBE [2]byte
	binary.BigEndian.PutUint16(mtuBE[:], mtu)
	proofPayload = append(proofPayload, mtuBE[:]...)
	proofPayload = append(proofPayload, sig...)

	return l, proofPayload, nil
}

// HandleProof processes an inbound Proof packet on a Pending (initiator)
// link. It verifies the proof signature against peerVerifying, derives the
// session keys, and transitions the link to Active. A second call after
// the link is already Active returns ErrDuplicateProof and makes no change.
func (l *Link) HandleProof(peerVerifying ed25519.PublicKey, proofPayload []byte, now time.Time) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == Closed {
		return ErrWrongState
	}
	if l.state == Active {
		return ErrDuplicateProof
	}
	if len(proofPayload) < crypto.X25519KeySize+2+crypto.SignatureSize {
		l.state = Closed
		return fmt.Errorf("link: proof payload too short")
	}

	var peerEphPub [crypto.X25519KeySize]byte
	copy(peerEphPub[:], proofPayload[:crypto.X25519KeySize])
	mtu := binary.BigEndian.Uint16(proofPayload[crypto.X25519KeySize : crypto.X25519KeySize+2])
	sig := proofPayload[crypto.X25519KeySize+2:]

	preimage := proofPreimage(l.ID, peerEphPub, peerVerifying, mtu)
	if !crypto.Verify(peerVerifying, preimage, sig) {
		l.state = Closed
		return ErrInvalidProof
	}

	shared, err := crypto.ECDH(l.localEph.Private[:], peerEphPub[:])
	if err != nil {
		l.state = Closed
		return err
	}
	sessionKeys, err := crypto.DeriveTokenKeys(shared, l.ID[:], nil)
	if err != nil {
		l.state = Closed
		return err
	}

	l.peerEphPub = peerEphPub
	l.peerVerifying = peerVerifying
	l.mtu = mtu
	l.sessionKeys = sessionKeys
	l.state = Active
	l.lastActivity = now
	return nil
}

// EncryptData wraps plaintext in the per-link Fernet-like token. The link
// must be Active.
func (l *Link) EncryptData(plaintext []byte) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Active {
		return nil, ErrWrongState
	}
	return crypto.Encrypt(l.sessionKeys, plaintext)
}

// DecryptData unwraps a data packet's token. Data on a Closed link is
// dropped per §4.5.
func (l *Link) DecryptData(token []byte, now time.Time) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state != Active {
		return nil, ErrWrongState
	}
	pt, err := crypto.Decrypt(l.sessionKeys, token)
	if err != nil {
		return nil, err
	}
	l.lastActivity = now
	return pt, nil
}

// State returns the link's current state.
func (l *Link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Close transitions the link to Closed, idempotently.
func (l *Link) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Closed
}

// Touch records activity (e.g. a KeepAlive) at now, resetting the idle
// timeout window.
func (l *Link) Touch(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == Active {
		l.lastActivity = now
	}
}

// CheckTimeout evaluates the proof/idle deadlines against now and
// transitions to Closed if exceeded. Returns true if the link was closed
// as a result of this call.
func (l *Link) CheckTimeout(now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	switch l.state {
	case Pending:
		if now.After(l.proofTimeout) {
			l.state = Closed
			return true
		}
	case Active:
		if now.Sub(l.lastActivity) > l.idleTimeout {
			l.state = Closed
			return true
		}
	}
	return false
}

// MTU returns the negotiated link MTU, valid once Active.
func (l *Link) MTU() uint16 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mtu
}
