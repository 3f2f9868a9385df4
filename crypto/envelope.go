// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"fmt"
	"io"
)

// EnvelopeEncrypt encrypts plaintext to recipientPub: an ephemeral X25519
// key pair is generated with rng, a shared secret is derived with the
// recipient's public key, HKDF is salted with salt (the destination address
// hash for opportunistic sends, or the link id for link data), and the
// Fernet-like token is built over the derived keys. The ephemeral public key
// is prepended to the returned ciphertext.
func EnvelopeEncrypt(rng io.Reader, recipientPub, salt, plaintext []byte) ([]byte, error) {
	var ephPriv [X25519KeySize]byte
	if _, err := io.ReadFull(rng, ephPriv[:]); err != nil {
		return nil, fmt.Errorf("crypto: read ephemeral key: %w", err)
	}
	ephKP, err := x25519KeyPairFromPrivate(ephPriv)
	if err != nil {
		return nil, err
	}
	return envelopeEncryptWithEphemeral(ephKP, recipientPub, salt, plaintext)
}

func envelopeEncryptWithEphemeral(eph *X25519KeyPair, recipientPub, salt, plaintext []byte) ([]byte, error) {
	shared, err := ECDH(eph.Private[:], recipientPub)
	if err != nil {
		return nil, err
	}
	keys, err := DeriveTokenKeys(shared, salt, nil)
	if err != nil {
		return nil, err
	}
	token, err := Encrypt(keys, plaintext)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, X25519KeySize+len(token))
	out = append(out, eph.Public[:]...)
	out = append(out, token...)
	return out, nil
}

// EnvelopeDecrypt reverses EnvelopeEncrypt: it splits off the sender's
// ephemeral public key, derives the shared secret with the local static
// private key, and decrypts the remaining token.
func EnvelopeDecrypt(priv, salt, envelope []byte) ([]byte, error) {
	if len(envelope) < X25519KeySize+TokenOverhead {
		return nil, ErrTokenAuth
	}
	ephPub := envelope[:X25519KeySize]
	token := envelope[X25519KeySize:]

	shared, err := ECDH(priv, ephPub)
	if err != nil {
		return nil, ErrTokenAuth
	}
	keys, err := DeriveTokenKeys(shared, salt, nil)
	if err != nil {
		return nil, ErrTokenAuth
	}
	return Decrypt(keys, token)
}
