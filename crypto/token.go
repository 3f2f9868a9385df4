// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const (
	// IVSize is the AES-CBC initialization vector size.
	IVSize = 16
	// HMACSize is the truncated-to-full HMAC-SHA-256 tag size carried in a token.
	HMACSize = 32
	// TokenOverhead is IV + HMAC, the fixed non-ciphertext part of a token.
	TokenOverhead = IVSize + HMACSize
	// tokenKeyMaterialSize is the HKDF output length: two 16-byte halves.
	tokenKeyMaterialSize = 32
)

// ErrTokenAuth is returned when a token's HMAC fails to verify. Per §4.1,
// callers must drop the packet silently (log at trace) rather than surface
// this to the peer.
var ErrTokenAuth = errors.New("crypto: token authentication failed")

// TokenKeys holds the split signing/encryption key halves derived from an
// HKDF expansion, as used for both envelope encryption (salt = destination
// address hash) and link session keys (salt = link id).
type TokenKeys struct {
	SigningKey    [16]byte
	EncryptionKey [16]byte
}

// DeriveTokenKeys runs HKDF-SHA-256 over ikm with the given salt and info,
// producing the two 16-byte halves used by the Fernet-like token: the first
// half signs (HMACs), the second half encrypts.
func DeriveTokenKeys(ikm, salt, info []byte) (*TokenKeys, error) {
	r := hkdf.New(sha256.New, ikm, salt, info)
	buf := make([]byte, tokenKeyMaterialSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("crypto: hkdf expand: %w", err)
	}
	keys := &TokenKeys{}
	copy(keys.SigningKey[:], buf[:16])
	copy(keys.EncryptionKey[:], buf[16:])
	return keys, nil
}

// Encrypt produces a Fernet-like token: IV(16) || ciphertext || HMAC(32).
// Plaintext is PKCS7-padded before AES-128-CBC encryption.
func Encrypt(keys *TokenKeys, plaintext []byte) ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("crypto: generate iv: %w", err)
	}
	return EncryptWithIV(keys, iv, plaintext)
}

// EncryptWithIV is Encrypt with a caller-supplied IV, used by fixture-driven
// tests and deterministic paper-packing (§6.2).
func EncryptWithIV(keys *TokenKeys, iv, plaintext []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, fmt.Errorf("crypto: iv must be %d bytes", IVSize)
	}
	block, err := aes.NewCipher(keys.EncryptionKey[:])
	if err != nil {
		return nil, fmt.Errorf("crypto: new aes cipher: %w", err)
	}
	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cbc := cipher.NewCBCEncrypter(block, iv)
	cbc.CryptBlocks(ciphertext, padded)

	out := make([]byte, 0, IVSize+len(ciphertext)+HMACSize)
	out = append(out, iv...)
	out = append(out, ciphertext...)

	mac := hmac.New(sha256.New, keys.SigningKey[:])
	mac.Write(out)
	out = mac.Sum(out)
	return out, nil
}

// Decrypt verifies the HMAC (constant time) before decrypting. On any
// failure it returns ErrTokenAuth; the caller must drop the packet without
// surfacing plaintext.
func Decrypt(keys *TokenKeys, token []byte) ([]byte, error) {
	if len(token) < TokenOverhead {
		return nil, ErrTokenAuth
	}
	body := token[:len(token)-HMACSize]
	tag := token[len(token)-HMACSize:]

	mac := hmac.New(sha256.New, keys.SigningKey[:])
	mac.Write(body)
	expected := mac.Sum(nil)
	if !hmac.Equal(expected, tag) {
		return nil, ErrTokenAuth
	}

	iv := body[:IVSize]
	ciphertext := body[IVSize:]
	if len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, ErrTokenAuth
	}

	block, err := aes.NewCipher(keys.EncryptionKey[:])
	if err != nil {
		return nil, ErrTokenAuth
	}
	plaintextPadded := make([]byte, len(ciphertext))
	cbc := cipher.NewCBCDecrypter(block, iv)
	cbc.CryptBlocks(plaintextPadded, ciphertext)

	plaintext, err := pkcs7Unpad(plaintextPadded, aes.BlockSize)
	if err != nil {
		return nil, ErrTokenAuth
	}
	return plaintext, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - (len(data) % blockSize)
	padding := bytes.Repeat([]byte{byte(padLen)}, padLen)
	return append(append([]byte{}, data...), padding...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("crypto: invalid padded length")
	}
	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, errors.New("crypto: invalid padding")
	}
	padding := data[len(data)-padLen:]
	for _, b := range padding {
		if int(b) != padLen {
			return nil, errors.New("crypto: invalid padding")
		}
	}
	return data[:len(data)-padLen], nil
}

// MaxLinkPlaintext returns the largest plaintext (in bytes, one less than a
// multiple of 16) that fits in a single link data packet of the given MTU,
// per §4.1:
//
//	((MTU - ifacMin - headerMin - 48) / 16) * 16 - 1
func MaxLinkPlaintext(mtu, ifacMin, headerMin int) int {
	budget := mtu - ifacMin - headerMin - TokenOverhead
	if budget <= 0 {
		return 0
	}
	blocks := (budget / aes.BlockSize) * aes.BlockSize
	max := blocks - 1
	if max < 0 {
		return 0
	}
	return max
}
