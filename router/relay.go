// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package router

import "strings"

// FailedStatusPrefix is the receipt_status prefix a failed outbound
// delivery carries, e.g. "failed:no_path".
const FailedStatusPrefix = "failed:"

// ParseFailedReason extracts the reason from a "failed:<reason>" status
// string. ok is false if status does not carry the failed prefix.
func ParseFailedReason(status string) (reason string, ok bool) {
	if !strings.HasPrefix(status, FailedStatusPrefix) {
		return "", false
	}
	return strings.TrimPrefix(status, FailedStatusPrefix), true
}

// AlternativeRelayRequest is the payload of an alternative_relay_request
// event: a message that failed delivery via FailedRelay should be retried
// over some other relay, avoiding every address in ExcludeRelays.
type AlternativeRelayRequest struct {
	MessageID     string
	FailedRelay   string
	Reason        string
	ExcludeRelays []string
}

// BuildAlternativeRelayRequest constructs the relay-retry request for a
// message whose delivery via failedRelay ended in status, folding
// failedRelay and every relay already tried (priorExcluded) into the
// ExcludeRelays list.
func BuildAlternativeRelayRequest(messageID, failedRelay, status string, priorExcluded []string) AlternativeRelayRequest {
	reason, _ := ParseFailedReason(status)

	seen := make(map[string]struct{}, len(priorExcluded)+1)
	exclude := make([]string, 0, len(priorExcluded)+1)
	add := func(relay string) {
		if relay == "" {
			return
		}
		if _, ok := seen[relay]; ok {
			return
		}
		seen[relay] = struct{}{}
		exclude = append(exclude, relay)
	}
	for _, r := range priorExcluded {
		add(r)
	}
	add(failedRelay)

	return AlternativeRelayRequest{
		MessageID:     messageID,
		FailedRelay:   failedRelay,
		Reason:        reason,
		ExcludeRelays: exclude,
	}
}

// SelectRelay returns the first candidate not present in excluded, or
// false if every candidate has been tried already.
func SelectRelay(candidates, excluded []string) (string, bool) {
	excludedSet := make(map[string]struct{}, len(excluded))
	for _, r := range excluded {
		excludedSet[r] = struct{}{}
	}
	for _, c := range candidates {
		if _, ok := excludedSet[c]; !ok {
			return c, true
		}
	}
	return "", false
}
