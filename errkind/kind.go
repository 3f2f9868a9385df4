// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package errkind centralizes the node's error taxonomy so that
// callers can classify a failure with errors.As instead of matching
// on sentinel values or substrings. It mirrors the kind-not-type-name
// taxonomy every component in this tree is expected to report
// failures under.
package errkind

import "fmt"

// Kind is one of the six failure classes a component reports.
type Kind int

const (
	// Crypto covers MAC mismatches, invalid signatures, and malformed
	// shared secrets. Never surfaced to a peer; logged and dropped.
	Crypto Kind = iota

	// Codec covers truncated headers, unknown enum values, and
	// msgpack shape mismatches. Dropped at the decode boundary.
	Codec

	// Policy covers a denied, ignored, or unauthenticated destination.
	// Surfaces as an RPC error (INVALID_ARGUMENT or DELIVERY_FAILED)
	// rather than being silently dropped.
	Policy

	// TransientIO covers a full tx queue, no known route, or a timed
	// out path request — retryable, and surfaced as
	// `failed:<reason>` on the affected outbound record.
	TransientIO

	// Permanent covers a missing destination identity, a required but
	// absent signature, or propagation being disabled — never
	// retried.
	Permanent

	// Protocol covers a duplicate link proof, a replayed announce, or
	// an over-MTU frame. Dropped at the transport boundary.
	Protocol
)

func (k Kind) String() string {
	switch k {
	case Crypto:
		return "crypto"
	case Codec:
		return "codec"
	case Policy:
		return "policy"
	case TransientIO:
		return "transient_io"
	case Permanent:
		return "permanent"
	case Protocol:
		return "protocol"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Retryable reports whether a failure of this kind may succeed on a
// later attempt. Only TransientIO is.
func (k Kind) Retryable() bool {
	return k == TransientIO
}

// Error is a classified failure: a Kind plus the underlying cause.
// Components construct one with New or Wrap and callers recover the
// Kind with errors.As.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New builds an Error of kind with message and no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds an Error of kind with message, wrapping cause so that
// errors.Is/errors.As and %w-style unwrapping still reach it.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether the first *Error in err's unwrap chain has kind; an
// *Error wrapped inside another *Error is not consulted.
func Is(err error, kind Kind) bool {
	for err != nil {
		if ke, ok := err.(*Error); ok {
			return ke.Kind == kind
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}
