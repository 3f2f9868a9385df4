// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package identity implements node identities, address hashing, and named
// destinations (§3, §4.3).
package identity

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"github.com/lxmf-mesh/reticulumd/crypto"
)

// AddressHashSize is the size in bytes of an address hash.
const AddressHashSize = 16

// NameHashSize is the size in bytes of a destination name hash.
const NameHashSize = 10

// AddressHash truncates SHA-256(seed) to AddressHashSize bytes.
func AddressHash(seed []byte) [AddressHashSize]byte {
	sum := sha256.Sum256(seed)
	var out [AddressHashSize]byte
	copy(out[:], sum[:AddressHashSize])
	return out
}

// NameHash truncates SHA-256("<app>.<aspect>") to NameHashSize bytes.
func NameHash(appAspect string) [NameHashSize]byte {
	sum := sha256.Sum256([]byte(appAspect))
	var out [NameHashSize]byte
	copy(out[:], sum[:NameHashSize])
	return out
}

// Public is an identity's public key material: an X25519 public key for
// envelope encryption and an Ed25519 verifying key for signatures.
type Public struct {
	X25519Public [crypto.X25519KeySize]byte
	Verifying    ed25519.PublicKey
}

// AddressHash returns the identity address hash: SHA-256(x25519_pub ||
// ed25519_verify)[:16].
func (p Public) AddressHash() [AddressHashSize]byte {
	seed := make([]byte, 0, crypto.X25519KeySize+crypto.VerifyingKeySize)
	seed = append(seed, p.X25519Public[:]...)
	seed = append(seed, p.Verifying...)
	return AddressHash(seed)
}

// Private is a node's own identity: the static X25519 secret and the
// Ed25519 signing key. It is persisted to disk (§6.4) with 0600 permissions
// and is only mutated at generation.
type Private struct {
	X25519 *crypto.X25519KeyPair
	Signing *crypto.SigningKeyPair
}

// Generate creates a brand-new random identity.
func Generate() (*Private, error) {
	x25519, err := crypto.GenerateX25519KeyPair()
	if err != nil {
		return nil, err
	}
	signing, err := crypto.GenerateSigningKeyPair()
	if err != nil {
		return nil, err
	}
	return &Private{X25519: x25519, Signing: signing}, nil
}

// Public returns the identity's public key material.
func (id *Private) Public() Public {
	return Public{X25519Public: id.X25519.Public, Verifying: id.Signing.Public}
}

// AddressHash returns this identity's address hash.
func (id *Private) AddressHash() [AddressHashSize]byte {
	return id.Public().AddressHash()
}

// Sign signs msg with the identity's Ed25519 key.
func (id *Private) Sign(msg []byte) []byte {
	return id.Signing.Sign(msg)
}

// Destination is a named addressable endpoint: an owning identity, its
// address hash, and an application/aspect name hash (§3).
type Destination struct {
	Identity    Public
	AddressHash [AddressHashSize]byte
	AppAspect   string
	NameHash    [NameHashSize]byte
}

// NewIn builds a destination for identity under "<app>.<aspect>". The
// destination's address hash is SHA-256(identity_address_hash ||
// name_hash)[:16], distinct from the bare identity address hash.
func NewIn(id Public, appAspect string) Destination {
	nh := NameHash(appAspect)
	idHash := id.AddressHash()
	seed := make([]byte, 0, AddressHashSize+NameHashSize)
	seed = append(seed, idHash[:]...)
	seed = append(seed, nh[:]...)
	return Destination{
		Identity:    id,
		AddressHash: AddressHash(seed),
		AppAspect:   appAspect,
		NameHash:    nh,
	}
}

// AnnouncePayload is the appended data of an Announce packet (§3).
type AnnouncePayload struct {
	Verifying    ed25519.PublicKey
	X25519Public [crypto.X25519KeySize]byte
	NameHash     [NameHashSize]byte
	RandomHash   [10]byte
	RatchetPub   *[crypto.X25519KeySize]byte // optional
	Signature    []byte
	AppData      []byte
}

// signaturePreimage builds `address_hash || public || verifying || name_hash
// || random_hash || [ratchet] || app_data`, the canonical bytes signed (and
// verified) for an announce.
func signaturePreimage(addressHash [AddressHashSize]byte, p AnnouncePayload) []byte {
	buf := make([]byte, 0, 128+len(p.AppData))
	buf = append(buf, addressHash[:]...)
	buf = append(buf, p.X25519Public[:]...)
	buf = append(buf, p.Verifying...)
	buf = append(buf, p.NameHash[:]...)
	buf = append(buf, p.RandomHash[:]...)
	if p.RatchetPub != nil {
		buf = append(buf, p.RatchetPub[:]...)
	}
	buf = append(buf, p.AppData...)
	return buf
}

// BuildAnnounce constructs and signs an announce payload for dest, owned by
// id, optionally carrying a ratchet public key and arbitrary app data. rng
// supplies the random-hash bytes (use crypto/rand in production, a fixed
// source in fixture tests).
func BuildAnnounce(rng io.Reader, id *Private, dest Destination, ratchetPub *[crypto.X25519KeySize]byte, appData []byte) (AnnouncePayload, error) {
	p := AnnouncePayload{
		Verifying:    id.Signing.Public,
		X25519Public: id.X25519.Public,
		NameHash:     dest.NameHash,
		RatchetPub:   ratchetPub,
		AppData:      appData,
	}
	if _, err := io.ReadFull(rng, p.RandomHash[:]); err != nil {
		return AnnouncePayload{}, fmt.Errorf("identity: read random hash: %w", err)
	}
	preimage := signaturePreimage(dest.AddressHash, p)
	p.Signature = id.Sign(preimage)
	return p, nil
}

// GenerateAnnounce is BuildAnnounce using crypto/rand for the random hash.
func GenerateAnnounce(id *Private, dest Destination, ratchetPub *[crypto.X25519KeySize]byte, appData []byte) (AnnouncePayload, error) {
	return BuildAnnounce(rand.Reader, id, dest, ratchetPub, appData)
}

// VerifyAnnounce checks an announce payload's signature against the
// destination's address hash and the claimed verifying key.
func VerifyAnnounce(addressHash [AddressHashSize]byte, p AnnouncePayload) bool {
	preimage := signaturePreimage(addressHash, p)
	return crypto.Verify(p.Verifying, preimage, p.Signature)
}
