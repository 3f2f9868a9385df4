// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lxmf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lxmf-mesh/reticulumd/identity"
)

func newTestMessage(t *testing.T) (*Message, *identity.Private) {
	t.Helper()
	src, err := identity.Generate()
	require.NoError(t, err)

	m := &Message{
		Timestamp: 1700000000,
		Title:     []byte("hello"),
		Content:   []byte("world"),
		Fields:    map[uint8]interface{}{FieldThread: []byte("t1")},
	}
	m.Source = src.AddressHash()
	return m, src
}

func TestWireMessagePackUnpackRoundTrip(t *testing.T) {
	m, src := newTestMessage(t)
	require.NoError(t, m.Sign(src))

	wire, err := m.Pack()
	require.NoError(t, err)

	got, err := Unpack(wire)
	require.NoError(t, err)
	require.Equal(t, m.Destination, got.Destination)
	require.Equal(t, m.Source, got.Source)
	require.Equal(t, m.Signature, got.Signature)
	require.Equal(t, m.Title, got.Title)
	require.Equal(t, m.Content, got.Content)
	require.True(t, got.Verify(src.Public().Verifying))
}

func TestMessageIDIndependentOfStamp(t *testing.T) {
	m, src := newTestMessage(t)
	require.NoError(t, m.Sign(src))

	id1, err := m.MessageID()
	require.NoError(t, err)

	m.Stamp = []byte("0123456789abcdef0123456789abcdef")
	id2, err := m.MessageID()
	require.NoError(t, err)

	require.Equal(t, id1, id2)
}

func TestWireMessageWithStampRoundTrip(t *testing.T) {
	m, src := newTestMessage(t)
	m.Stamp = make([]byte, 32)
	for i := range m.Stamp {
		m.Stamp[i] = byte(i)
	}
	require.NoError(t, m.Sign(src))

	wire, err := m.Pack()
	require.NoError(t, err)

	got, err := Unpack(wire)
	require.NoError(t, err)
	require.Equal(t, m.Stamp, got.Stamp)
}

func TestVerifyRejectsTamperedContent(t *testing.T) {
	m, src := newTestMessage(t)
	require.NoError(t, m.Sign(src))

	wire, err := m.Pack()
	require.NoError(t, err)
	got, err := Unpack(wire)
	require.NoError(t, err)

	got.Content = []byte("tampered")
	require.False(t, got.Verify(src.Public().Verifying))
}

func TestUnpackRejectsTruncated(t *testing.T) {
	_, err := Unpack(make([]byte, 10))
	require.ErrorIs(t, err, ErrTruncated)
}
