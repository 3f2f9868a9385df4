// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package bridge

import (
	"strings"
	"unicode"

	"github.com/vmihailenco/msgpack/v5"
)

// Display-name extraction sources, surfaced to RPC clients as a peer's
// NameSource so they can judge how much to trust it.
const (
	NameSourcePropagationMeta = "propagation_meta"
	NameSourceArray           = "array"
	NameSourceRaw             = "raw"
	NameSourceNone            = ""
)

// pnMetaName is the propagation-node announce app-data map key carrying a
// peer's advertised display name.
const pnMetaName = 0x01

// maxDisplayNameChars bounds a display name after normalization; anything
// longer is clipped rather than rejected.
const maxDisplayNameChars = 64

// ExtractDisplayName derives a peer's display name from the app-data bytes
// carried on an announce, trying in order:
//
//  1. a propagation-node announce array whose trailing element is a map
//     with key pnMetaName;
//  2. a plain msgpack array whose first element is the name;
//  3. the raw bytes as UTF-8.
//
// It returns ("", NameSourceNone) if no candidate survives normalization.
func ExtractDisplayName(appData []byte) (string, string) {
	if len(appData) == 0 {
		return "", NameSourceNone
	}

	if name, ok := pnNameFromAppData(appData); ok {
		if normalized, ok := normalizeDisplayName(name); ok {
			return normalized, NameSourcePropagationMeta
		}
	}

	if name, ok := arrayNameFromAppData(appData); ok {
		if normalized, ok := normalizeDisplayName(name); ok {
			return normalized, NameSourceArray
		}
	}

	if normalized, ok := normalizeDisplayName(string(appData)); ok {
		return normalized, NameSourceRaw
	}
	return "", NameSourceNone
}

// isMsgpackArrayPrefix reports whether b is the first byte of a msgpack
// fixarray (0x90-0x9f), array16 (0xdc), or array32 (0xdd) encoding.
func isMsgpackArrayPrefix(b byte) bool {
	return (b >= 0x90 && b <= 0x9f) || b == 0xdc || b == 0xdd
}

// pnAnnounceDataIsValid reports whether elems looks like a propagation-node
// announce body: at least 7 elements, the last of which is a msgpack map.
// The types of the other elements are not checked.
func pnAnnounceDataIsValid(elems []msgpack.RawMessage) bool {
	if len(elems) < 7 {
		return false
	}
	last := elems[len(elems)-1]
	if len(last) == 0 {
		return false
	}
	b := last[0]
	isFixMap := b >= 0x80 && b <= 0x8f
	isMap16 := b == 0xde
	isMap32 := b == 0xdf
	return isFixMap || isMap16 || isMap32
}

// pnNameFromAppData extracts the PN_META_NAME entry from a propagation-node
// announce's trailing map, if appData decodes as one.
func pnNameFromAppData(appData []byte) (string, bool) {
	if len(appData) == 0 || !isMsgpackArrayPrefix(appData[0]) {
		return "", false
	}
	var elems []msgpack.RawMessage
	if err := msgpack.Unmarshal(appData, &elems); err != nil {
		return "", false
	}
	if !pnAnnounceDataIsValid(elems) {
		return "", false
	}
	var meta map[int]msgpack.RawMessage
	if err := msgpack.Unmarshal(elems[len(elems)-1], &meta); err != nil {
		return "", false
	}
	raw, ok := meta[pnMetaName]
	if !ok {
		return "", false
	}
	var asString string
	if err := msgpack.Unmarshal(raw, &asString); err == nil {
		return asString, true
	}
	var asBytes []byte
	if err := msgpack.Unmarshal(raw, &asBytes); err == nil {
		return string(asBytes), true
	}
	return "", false
}

// arrayNameFromAppData treats appData as a plain msgpack array and returns
// its first element as a name, if that element is string- or byte-typed.
func arrayNameFromAppData(appData []byte) (string, bool) {
	if len(appData) == 0 || !isMsgpackArrayPrefix(appData[0]) {
		return "", false
	}
	var elems []msgpack.RawMessage
	if err := msgpack.Unmarshal(appData, &elems); err != nil || len(elems) == 0 {
		return "", false
	}
	var asString string
	if err := msgpack.Unmarshal(elems[0], &asString); err == nil {
		return asString, true
	}
	var asBytes []byte
	if err := msgpack.Unmarshal(elems[0], &asBytes); err == nil {
		return string(asBytes), true
	}
	return "", false
}

// normalizeDisplayName trims name, rejects the empty string and any name
// containing a control character, and clips what remains to
// maxDisplayNameChars runes.
func normalizeDisplayName(name string) (string, bool) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", false
	}
	for _, r := range trimmed {
		if unicode.IsControl(r) {
			return "", false
		}
	}
	runes := []rune(trimmed)
	if len(runes) > maxDisplayNameChars {
		runes = runes[:maxDisplayNameChars]
	}
	return string(runes), true
}
