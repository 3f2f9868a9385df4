// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package errkind

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStringAndRetryable(t *testing.T) {
	require.Equal(t, "crypto", Crypto.String())
	require.Equal(t, "transient_io", TransientIO.String())
	require.True(t, TransientIO.Retryable())
	require.False(t, Permanent.Retryable())
}

func TestNewAndError(t *testing.T) {
	err := New(Policy, "destination denied")
	require.Equal(t, "policy: destination denied", err.Error())
}

func TestWrapUnwrapsWithErrorsAs(t *testing.T) {
	cause := errors.New("boom")
	err := Wrap(Codec, "truncated header", cause)

	var ke *Error
	require.True(t, errors.As(err, &ke))
	require.Equal(t, Codec, ke.Kind)
	require.ErrorIs(t, err, cause)
}

func TestIsClassifiesWrappedErrors(t *testing.T) {
	base := New(TransientIO, "tx queue full")
	wrapped := fmt.Errorf("router: %w", base)
	require.True(t, Is(wrapped, TransientIO))
	require.False(t, Is(wrapped, Permanent))
	require.False(t, Is(errors.New("plain"), Permanent))
}
