// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package crypto implements the wire-layer cryptographic primitives:
// Ed25519 signatures, X25519 key agreement, HKDF-SHA-256 key derivation,
// and the Fernet-like authenticated-encryption token carried by every
// encrypted packet.
package crypto

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
)

const (
	// SigningKeySize is the size in bytes of an Ed25519 signing (private) key.
	SigningKeySize = ed25519.PrivateKeySize
	// VerifyingKeySize is the size in bytes of an Ed25519 verifying (public) key.
	VerifyingKeySize = ed25519.PublicKeySize
	// SignatureSize is the size in bytes of an Ed25519 signature.
	SignatureSize = ed25519.SignatureSize
	// X25519KeySize is the size in bytes of an X25519 public or private key.
	X25519KeySize = 32
)

// SigningKeyPair holds an Ed25519 key pair used to sign announces, link
// proofs and LXM envelopes.
type SigningKeyPair struct {
	Private ed25519.PrivateKey
	Public  ed25519.PublicKey
}

// GenerateSigningKeyPair creates a new random Ed25519 key pair.
func GenerateSigningKeyPair() (*SigningKeyPair, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("crypto: generate ed25519 key: %w", err)
	}
	return &SigningKeyPair{Private: priv, Public: pub}, nil
}

// SigningKeyPairFromSeed deterministically derives a key pair from a 32-byte
// seed. Used to reload a persisted identity.
func SigningKeyPairFromSeed(seed []byte) (*SigningKeyPair, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("crypto: ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &SigningKeyPair{Private: priv, Public: priv.Public().(ed25519.PublicKey)}, nil
}

// Sign produces an Ed25519 signature over msg.
func (kp *SigningKeyPair) Sign(msg []byte) []byte {
	return ed25519.Sign(kp.Private, msg)
}

// Verify checks an Ed25519 signature over msg made by the holder of pub.
// Any failure (wrong length key, bad signature) returns false; callers must
// never surface the distinction to the network (§4.1).
func Verify(pub ed25519.PublicKey, msg, sig []byte) bool {
	if len(pub) != ed25519.PublicKeySize || len(sig) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(pub, msg, sig)
}
