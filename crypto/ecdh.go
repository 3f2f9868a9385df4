// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"crypto/rand"
	"fmt"

	"golang.org/x/crypto/curve25519"
)

// X25519KeyPair holds a static or ephemeral X25519 key pair used for
// Diffie-Hellman key agreement.
type X25519KeyPair struct {
	Private [X25519KeySize]byte
	Public  [X25519KeySize]byte
}

// GenerateX25519KeyPair creates a new random X25519 key pair.
func GenerateX25519KeyPair() (*X25519KeyPair, error) {
	var priv [X25519KeySize]byte
	if _, err := rand.Read(priv[:]); err != nil {
		return nil, fmt.Errorf("crypto: generate x25519 key: %w", err)
	}
	kp, err := x25519KeyPairFromPrivate(priv)
	if err != nil {
		return nil, err
	}
	return kp, nil
}

// X25519KeyPairFromSeed deterministically derives a key pair from a 32-byte
// private scalar. Used to reload a persisted identity.
func X25519KeyPairFromSeed(seed []byte) (*X25519KeyPair, error) {
	if len(seed) != X25519KeySize {
		return nil, fmt.Errorf("crypto: x25519 seed must be %d bytes, got %d", X25519KeySize, len(seed))
	}
	var priv [X25519KeySize]byte
	copy(priv[:], seed)
	return x25519KeyPairFromPrivate(priv)
}

func x25519KeyPairFromPrivate(priv [X25519KeySize]byte) (*X25519KeyPair, error) {
	pub, err := curve25519.X25519(priv[:], curve25519.Basepoint)
	if err != nil {
		return nil, fmt.Errorf("crypto: derive x25519 public key: %w", err)
	}
	kp := &X25519KeyPair{Private: priv}
	copy(kp.Public[:], pub)
	return kp, nil
}

// ECDH computes the X25519 shared secret between a local private key and a
// remote public key.
func ECDH(priv, peerPub []byte) ([]byte, error) {
	if len(priv) != X25519KeySize {
		return nil, fmt.Errorf("crypto: x25519 private key must be %d bytes", X25519KeySize)
	}
	if len(peerPub) != X25519KeySize {
		return nil, fmt.Errorf("crypto: x25519 public key must be %d bytes", X25519KeySize)
	}
	secret, err := curve25519.X25519(priv, peerPub)
	if err != nil {
		return nil, fmt.Errorf("crypto: x25519 ecdh: %w", err)
	}
	return secret, nil
}
