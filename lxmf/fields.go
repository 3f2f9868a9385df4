// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package lxmf

// Well-known fields-map keys (§4.8).
const (
	FieldTelemetry      uint8 = 0x02
	FieldFileAttachments uint8 = 0x05
	FieldImage          uint8 = 0x06
	FieldAudio          uint8 = 0x07
	FieldThread         uint8 = 0x08
	FieldCommands       uint8 = 0x09
	FieldTicket         uint8 = 0x0C
	FieldRenderer       uint8 = 0x0F
	FieldColumbaMeta    uint8 = 0x70
	FieldCustomType     uint8 = 0xFB
	FieldCustomData     uint8 = 0xFC
	FieldCustomMeta     uint8 = 0xFD
	FieldNonSpecific    uint8 = 0xFE
	FieldDebug          uint8 = 0xFF
)

// attachmentFields are the fields whose presence forces demotion away from
// an opportunistic single-packet delivery, regardless of content size.
var attachmentFields = map[uint8]bool{
	FieldFileAttachments: true,
	FieldImage:           true,
	FieldAudio:           true,
}

// HasAttachment reports whether fields carries any attachment-bearing key
// (file, image, or audio), which forces demotion away from Opportunistic
// delivery (§4.8).
func HasAttachment(fields map[uint8]interface{}) bool {
	for k := range fields {
		if attachmentFields[k] {
			return true
		}
	}
	return false
}
