// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestTokenRoundTrip(t *testing.T) {
	var ikm [32]byte
	_, err := rand.Read(ikm[:])
	require.NoError(t, err)

	keys, err := DeriveTokenKeys(ikm[:], []byte("salt"), nil)
	require.NoError(t, err)

	plaintext := []byte("hello mesh network")
	token, err := Encrypt(keys, plaintext)
	require.NoError(t, err)

	got, err := Decrypt(keys, token)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestTokenRejectsTamperedMAC(t *testing.T) {
	var ikm [32]byte
	keys, err := DeriveTokenKeys(ikm[:], []byte("salt"), nil)
	require.NoError(t, err)

	token, err := Encrypt(keys, []byte("payload"))
	require.NoError(t, err)

	token[len(token)-1] ^= 0xFF
	_, err = Decrypt(keys, token)
	require.ErrorIs(t, err, ErrTokenAuth)
}

func TestTokenRejectsShortInput(t *testing.T) {
	var ikm [32]byte
	keys, err := DeriveTokenKeys(ikm[:], []byte("salt"), nil)
	require.NoError(t, err)

	_, err = Decrypt(keys, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrTokenAuth)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		recipient, err := GenerateX25519KeyPair()
		require.NoError(rt, err)

		salt := rapid.SliceOfN(rapid.Byte(), 16, 16).Draw(rt, "salt")
		plaintext := rapid.SliceOfN(rapid.Byte(), 0, 512).Draw(rt, "plaintext")

		envelope, err := EnvelopeEncrypt(rand.Reader, recipient.Public[:], salt, plaintext)
		require.NoError(rt, err)

		got, err := EnvelopeDecrypt(recipient.Private[:], salt, envelope)
		require.NoError(rt, err)
		require.True(rt, bytes.Equal(plaintext, got))
	})
}

func TestEnvelopeWrongRecipientFails(t *testing.T) {
	a, err := GenerateX25519KeyPair()
	require.NoError(t, err)
	b, err := GenerateX25519KeyPair()
	require.NoError(t, err)

	salt := []byte("destination-hash")
	envelope, err := EnvelopeEncrypt(rand.Reader, a.Public[:], salt, []byte("secret"))
	require.NoError(t, err)

	_, err = EnvelopeDecrypt(b.Private[:], salt, envelope)
	require.ErrorIs(t, err, ErrTokenAuth)
}

func TestSignVerify(t *testing.T) {
	kp, err := GenerateSigningKeyPair()
	require.NoError(t, err)

	msg := []byte("address||public||verifying||name_hash||random_hash")
	sig := kp.Sign(msg)
	require.True(t, Verify(kp.Public, msg, sig))

	flipped := append([]byte{}, msg...)
	flipped[0] ^= 0x01
	require.False(t, Verify(kp.Public, flipped, sig))
}

func TestMaxLinkPlaintext(t *testing.T) {
	// MTU 500, ifacMin 0, headerMin 19 (Type-1 minimum): budget=500-0-19-48=433
	// blocks = 432, max = 431.
	require.Equal(t, 431, MaxLinkPlaintext(500, 0, 19))
	require.Equal(t, 0, MaxLinkPlaintext(10, 0, 19))
}
