// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package link

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lxmf-mesh/reticulumd/crypto"
)

func TestHandshakeReachesActiveOnBothEnds(t *testing.T) {
	now := time.Now()
	initiatorSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	responderSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	var destHash [16]byte
	destHash[0] = 0x42

	initiator, requestPayload, err := NewRequest(initiatorSigning, destHash, 0x05, 0, now)
	require.NoError(t, err)
	require.Equal(t, Pending, initiator.State())

	responder, proofPayload, err := ReceiveRequest(responderSigning, destHash, 0x05, 0, requestPayload, 500, now)
	require.NoError(t, err)
	require.Equal(t, Active, responder.State())
	require.Equal(t, initiator.ID, responder.ID)

	err = initiator.HandleProof(responderSigning.Public, proofPayload, now)
	require.NoError(t, err)
	require.Equal(t, Active, initiator.State())

	plaintext := []byte("hello over the link")
	token, err := initiator.EncryptData(plaintext)
	require.NoError(t, err)

	got, err := responder.DecryptData(token, now)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
}

func TestInvalidProofClosesLink(t *testing.T) {
	now := time.Now()
	initiatorSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	wrongSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	responderSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	var destHash [16]byte
	initiator, requestPayload, err := NewRequest(initiatorSigning, destHash, 0, 0, now)
	require.NoError(t, err)

	_, proofPayload, err := ReceiveRequest(responderSigning, destHash, 0, 0, requestPayload, 500, now)
	require.NoError(t, err)

	err = initiator.HandleProof(wrongSigning.Public, proofPayload, now)
	require.ErrorIs(t, err, ErrInvalidProof)
	require.Equal(t, Closed, initiator.State())
}

func TestDuplicateProofIgnored(t *testing.T) {
	now := time.Now()
	initiatorSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	responderSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)

	var destHash [16]byte
	initiator, requestPayload, err := NewRequest(initiatorSigning, destHash, 0, 0, now)
	require.NoError(t, err)
	_, proofPayload, err := ReceiveRequest(responderSigning, destHash, 0, 0, requestPayload, 500, now)
	require.NoError(t, err)

	require.NoError(t, initiator.HandleProof(responderSigning.Public, proofPayload, now))
	err = initiator.HandleProof(responderSigning.Public, proofPayload, now)
	require.ErrorIs(t, err, ErrDuplicateProof)
	require.Equal(t, Active, initiator.State())
}

func TestDataOnClosedLinkDropped(t *testing.T) {
	now := time.Now()
	signing, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	var destHash [16]byte
	l, _, err := NewRequest(signing, destHash, 0, 0, now)
	require.NoError(t, err)
	l.Close()

	_, err = l.EncryptData([]byte("x"))
	require.ErrorIs(t, err, ErrWrongState)
}

func TestProofTimeoutClosesPendingLink(t *testing.T) {
	now := time.Now()
	signing, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	var destHash [16]byte
	l, _, err := NewRequest(signing, destHash, 0, 0, now)
	require.NoError(t, err)

	closed := l.CheckTimeout(now.Add(DefaultProofTimeout + time.Second))
	require.True(t, closed)
	require.Equal(t, Closed, l.State())
}

func TestIdleTimeoutClosesActiveLink(t *testing.T) {
	now := time.Now()
	initiatorSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	responderSigning, err := crypto.GenerateSigningKeyPair()
	require.NoError(t, err)
	var destHash [16]byte
	_, requestPayload, err := NewRequest(initiatorSigning, destHash, 0, 0, now)
	require.NoError(t, err)
	responder, _, err := ReceiveRequest(responderSigning, destHash, 0, 0, requestPayload, 500, now)
	require.NoError(t, err)

	closed := responder.CheckTimeout(now.Add(DefaultIdleTimeout + time.Second))
	require.True(t, closed)
}
