// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseFailedReason(t *testing.T) {
	reason, ok := ParseFailedReason("failed:no_path")
	require.True(t, ok)
	require.Equal(t, "no_path", reason)

	_, ok = ParseFailedReason("delivered")
	require.False(t, ok)
}

func TestBuildAlternativeRelayRequest(t *testing.T) {
	req := BuildAlternativeRelayRequest("msg-1", "relay-a", "failed:timeout", []string{"relay-z"})
	require.Equal(t, "msg-1", req.MessageID)
	require.Equal(t, "relay-a", req.FailedRelay)
	require.Equal(t, "timeout", req.Reason)
	require.Equal(t, []string{"relay-z", "relay-a"}, req.ExcludeRelays)
}

func TestBuildAlternativeRelayRequestDedupsExclusions(t *testing.T) {
	req := BuildAlternativeRelayRequest("msg-1", "relay-a", "failed:timeout", []string{"relay-a", "relay-b"})
	require.Equal(t, []string{"relay-a", "relay-b"}, req.ExcludeRelays)
}

func TestBuildAlternativeRelayRequestNonFailedStatus(t *testing.T) {
	req := BuildAlternativeRelayRequest("msg-1", "relay-a", "delivered", nil)
	require.Empty(t, req.Reason)
	require.Equal(t, []string{"relay-a"}, req.ExcludeRelays)
}

func TestSelectRelay(t *testing.T) {
	candidates := []string{"a", "b", "c"}
	chosen, ok := SelectRelay(candidates, []string{"a"})
	require.True(t, ok)
	require.Equal(t, "b", chosen)

	_, ok = SelectRelay(candidates, candidates)
	require.False(t, ok)
}
