// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bridge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestExtractDisplayNameFromPropagationMeta(t *testing.T) {
	meta := map[int]interface{}{pnMetaName: "relay-1"}
	elems := []interface{}{1, true, 0, 0, []int{0, 0, 0}, nil, meta}
	raw, err := msgpack.Marshal(elems)
	require.NoError(t, err)

	name, source := ExtractDisplayName(raw)
	require.Equal(t, "relay-1", name)
	require.Equal(t, NameSourcePropagationMeta, source)
}

func TestExtractDisplayNameFromArray(t *testing.T) {
	raw, err := msgpack.Marshal([]interface{}{"alice", 42})
	require.NoError(t, err)

	name, source := ExtractDisplayName(raw)
	require.Equal(t, "alice", name)
	require.Equal(t, NameSourceArray, source)
}

func TestExtractDisplayNameFromRawUTF8(t *testing.T) {
	name, source := ExtractDisplayName([]byte("bob"))
	require.Equal(t, "bob", name)
	require.Equal(t, NameSourceRaw, source)
}

func TestExtractDisplayNameEmptyAppData(t *testing.T) {
	name, source := ExtractDisplayName(nil)
	require.Empty(t, name)
	require.Equal(t, NameSourceNone, source)
}

func TestExtractDisplayNameRejectsControlCharacters(t *testing.T) {
	name, source := ExtractDisplayName([]byte("bad\x00name"))
	require.Empty(t, name)
	require.Equal(t, NameSourceNone, source)
}

func TestNormalizeDisplayNameClipsToMax(t *testing.T) {
	long := strings.Repeat("x", maxDisplayNameChars+20)
	normalized, ok := normalizeDisplayName(long)
	require.True(t, ok)
	require.Len(t, []rune(normalized), maxDisplayNameChars)
}

func TestNormalizeDisplayNameRejectsEmpty(t *testing.T) {
	_, ok := normalizeDisplayName("   ")
	require.False(t, ok)
}
