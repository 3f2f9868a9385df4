// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package propagation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewTicketDefaultLifetime(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ticket := NewTicket(now, 0, []byte("token"))
	require.Equal(t, now, ticket.Issued)
	require.Equal(t, now.Add(TicketFullLifetime), ticket.Expires)
}

func TestTicketIsValid(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ticket := NewTicket(now, time.Hour, []byte("token"))

	require.True(t, ticket.IsValid(now))
	require.True(t, ticket.IsValid(now.Add(59*time.Minute)))
	require.False(t, ticket.IsValid(now.Add(time.Hour+time.Second)))
}

func TestTicketIsValidWithGrace(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ticket := NewTicket(now, time.Hour, []byte("token"))

	afterExpiry := now.Add(time.Hour + time.Minute)
	require.False(t, ticket.IsValid(afterExpiry))
	require.True(t, ticket.IsValidWithGrace(afterExpiry))

	beyondGrace := now.Add(time.Hour + TicketGrace + time.Second)
	require.False(t, ticket.IsValidWithGrace(beyondGrace))
}

func TestTicketNeedsRenewal(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	ticket := NewTicket(now, TicketFullLifetime, []byte("token"))

	require.False(t, ticket.NeedsRenewal(now.Add(TicketRenewalWindow-time.Hour)))
	require.True(t, ticket.NeedsRenewal(now.Add(TicketRenewalWindow+time.Hour)))
}

func TestTicketCacheSetGet(t *testing.T) {
	c := NewTicketCache()
	dest := []byte{0x01, 0x02, 0x03}
	now := time.Unix(1_700_000_000, 0)
	ticket := NewTicket(now, time.Hour, []byte("token"))

	_, ok := c.Get(dest)
	require.False(t, ok)

	c.Set(dest, ticket)
	got, ok := c.Get(dest)
	require.True(t, ok)
	require.Equal(t, ticket, got)
	require.Equal(t, 1, c.Len())
}

func TestTicketCachePrune(t *testing.T) {
	c := NewTicketCache()
	now := time.Unix(1_700_000_000, 0)

	fresh := []byte{0x01}
	stale := []byte{0x02}
	c.Set(fresh, NewTicket(now, time.Hour, nil))
	c.Set(stale, NewTicket(now.Add(-TicketGrace-48*time.Hour), time.Hour, nil))

	pruned := c.Prune(now)
	require.Equal(t, 1, pruned)
	require.Equal(t, 1, c.Len())

	_, ok := c.Get(fresh)
	require.True(t, ok)
	_, ok = c.Get(stale)
	require.False(t, ok)
}
