// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiffInterfacesAddedRemovedChanged(t *testing.T) {
	prev := []InterfaceConfig{
		{Name: "uplink", Type: "tcp_client", Enabled: true, Host: "10.0.0.1", Port: 4242},
		{Name: "radio0", Type: "lora", Enabled: true},
	}
	next := []InterfaceConfig{
		{Name: "uplink", Type: "tcp_client", Enabled: true, Host: "10.0.0.2", Port: 4242},
		{Name: "ble0", Type: "ble_gatt", Enabled: true},
	}

	diff := DiffInterfaces(prev, next)
	require.Len(t, diff.Added, 1)
	require.Equal(t, "ble0", diff.Added[0].Name)
	require.Len(t, diff.Removed, 1)
	require.Equal(t, "radio0", diff.Removed[0].Name)
	require.Len(t, diff.Changed, 1)
	require.Equal(t, "uplink", diff.Changed[0].Name)
	require.False(t, diff.Empty())
}

func TestDiffInterfacesNoChanges(t *testing.T) {
	ifaces := []InterfaceConfig{{Name: "uplink", Type: "tcp_client", Enabled: true}}
	diff := DiffInterfaces(ifaces, ifaces)
	require.True(t, diff.Empty())
}
