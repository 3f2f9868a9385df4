// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lxmf

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/lxmf-mesh/reticulumd/crypto"
)

// PaperURIScheme is the URI scheme prefix for a paper message.
const PaperURIScheme = "lxm://"

// ErrInvalidPaperURI is returned when decoding a string that does not carry
// the lxm:// scheme or is not validly base64url-encoded.
var ErrInvalidPaperURI = errors.New("lxmf: invalid paper URI")

// PackPaper envelope-encrypts m's wire bytes to recipientPub (destination
// identity), for offline/out-of-band transfer (§6.3's Paper URI format).
// rng supplies the ephemeral key material; callers needing deterministic
// fixtures supply a fixed-output reader.
func PackPaper(rng io.Reader, recipientPub, salt []byte, m *Message) ([]byte, error) {
	wire, err := m.Pack()
	if err != nil {
		return nil, err
	}
	return crypto.EnvelopeEncrypt(rng, recipientPub, salt, wire)
}

// UnpackPaper reverses PackPaper: decrypts envelope with the recipient's
// static private key and salt, then decodes the resulting wire message.
func UnpackPaper(priv, salt, envelope []byte) (*Message, error) {
	wire, err := crypto.EnvelopeDecrypt(priv, salt, envelope)
	if err != nil {
		return nil, err
	}
	return Unpack(wire)
}

// EncodeLXMURI renders paper bytes as `lxm://<base64url, no padding>`.
func EncodeLXMURI(paper []byte) string {
	return PaperURIScheme + base64.RawURLEncoding.EncodeToString(paper)
}

// DecodeLXMURI parses a paper URI back into its raw bytes.
func DecodeLXMURI(uri string) ([]byte, error) {
	if !strings.HasPrefix(uri, PaperURIScheme) {
		return nil, ErrInvalidPaperURI
	}
	b, err := base64.RawURLEncoding.DecodeString(strings.TrimPrefix(uri, PaperURIScheme))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPaperURI, err)
	}
	return b, nil
}
