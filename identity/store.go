// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"crypto/ed25519"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lxmf-mesh/reticulumd/crypto"
)

// fileSize is the on-disk identity file layout: a 32-byte X25519 private
// scalar followed by a 32-byte Ed25519 seed (§6.4).
const fileSize = crypto.X25519KeySize + ed25519.SeedSize

// Save atomically persists id to path with 0600 permissions: write to a
// temp file in the same directory, fsync, then rename over the destination.
func Save(id *Private, path string) error {
	buf := make([]byte, 0, fileSize)
	buf = append(buf, id.X25519.Private[:]...)
	buf = append(buf, id.Signing.Private.Seed()...)

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".identity-*.tmp")
	if err != nil {
		return fmt.Errorf("identity: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(0600); err != nil {
		tmp.Close()
		return fmt.Errorf("identity: chmod temp file: %w", err)
	}
	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("identity: write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("identity: fsync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("identity: close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("identity: rename into place: %w", err)
	}
	return nil
}

// FromBytes decodes the same 64-byte layout Save writes (32-byte X25519
// private scalar followed by a 32-byte Ed25519 seed) without touching the
// filesystem, for callers that hold key material in memory (e.g. the RPC
// daemon's send_message source_private_key parameter).
func FromBytes(data []byte) (*Private, error) {
	if len(data) != fileSize {
		return nil, fmt.Errorf("identity: key material has wrong length %d, want %d", len(data), fileSize)
	}
	x25519, err := crypto.X25519KeyPairFromSeed(data[:crypto.X25519KeySize])
	if err != nil {
		return nil, err
	}
	signing, err := crypto.SigningKeyPairFromSeed(data[crypto.X25519KeySize:])
	if err != nil {
		return nil, err
	}
	return &Private{X25519: x25519, Signing: signing}, nil
}

// Load reads a persisted identity file.
func Load(path string) (*Private, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("identity: read %s: %w", path, err)
	}
	return FromBytes(data)
}

// LoadOrGenerate loads the identity at path, generating and saving a new one
// if the file does not exist.
func LoadOrGenerate(path string) (*Private, error) {
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("identity: stat %s: %w", path, err)
	}
	id, err := Generate()
	if err != nil {
		return nil, err
	}
	if err := Save(id, path); err != nil {
		return nil, err
	}
	return id, nil
}
