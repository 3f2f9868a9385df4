// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package router

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPolicyDefaultAllowsEverything(t *testing.T) {
	p := NewPolicy()
	require.Equal(t, DecisionAllow, p.Evaluate("deadbeef"))
}

func TestPolicyDeniedTakesPrecedence(t *testing.T) {
	p := NewPolicy()
	authRequired := false
	p.Set(&authRequired, []string{"deadbeef"}, []string{"deadbeef"}, nil, []string{"deadbeef"})
	require.Equal(t, DecisionDeny, p.Evaluate("deadbeef"))
}

func TestPolicyIgnoredTakesPrecedenceOverPrioritised(t *testing.T) {
	p := NewPolicy()
	authRequired := false
	p.Set(&authRequired, nil, nil, []string{"cafebabe"}, []string{"cafebabe"})
	require.Equal(t, DecisionIgnore, p.Evaluate("cafebabe"))
}

func TestPolicyAuthRequiredDeniesUnlisted(t *testing.T) {
	p := NewPolicy()
	authRequired := true
	p.Set(&authRequired, []string{"00"}, nil, nil, nil)

	require.Equal(t, DecisionDeny, p.Evaluate("01"))
	require.Equal(t, DecisionAllow, p.Evaluate("00"))
}

func TestPolicyPrioritised(t *testing.T) {
	p := NewPolicy()
	authRequired := false
	p.Set(&authRequired, nil, nil, nil, []string{"ff"})
	require.Equal(t, DecisionPrioritise, p.Evaluate("ff"))
}

func TestPolicySetNilLeavesListUnchanged(t *testing.T) {
	p := NewPolicy()
	authRequired := true
	p.Set(&authRequired, []string{"00"}, nil, nil, nil)

	// A second Set call with nil for `allowed` must not clear it.
	otherAuth := true
	p.Set(&otherAuth, nil, []string{"ee"}, nil, nil)

	snap := p.Get()
	require.True(t, snap.AuthRequired)
	require.ElementsMatch(t, []string{"00"}, snap.Allowed)
	require.ElementsMatch(t, []string{"ee"}, snap.Denied)
}

func TestPolicyGetRoundTrip(t *testing.T) {
	p := NewPolicy()
	authRequired := true
	p.Set(&authRequired, []string{"a"}, []string{"b"}, []string{"c"}, []string{"d"})

	snap := p.Get()
	require.True(t, snap.AuthRequired)
	require.ElementsMatch(t, []string{"a"}, snap.Allowed)
	require.ElementsMatch(t, []string{"b"}, snap.Denied)
	require.ElementsMatch(t, []string{"c"}, snap.Ignored)
	require.ElementsMatch(t, []string{"d"}, snap.Prioritised)
}
