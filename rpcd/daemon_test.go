// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcd

import (
	"bytes"
	"context"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/lxmf-mesh/reticulumd/config"
	"github.com/lxmf-mesh/reticulumd/identity"
	"github.com/lxmf-mesh/reticulumd/lxmf"
	"github.com/lxmf-mesh/reticulumd/propagation"
	"github.com/lxmf-mesh/reticulumd/router"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func newTestDaemon(t *testing.T) *Daemon {
	t.Helper()
	id, err := identity.Generate()
	require.NoError(t, err)
	store, err := propagation.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return NewDaemon(Config{
		Identity:    id,
		Profile:     "test",
		RPCEndpoint: "unix:///tmp/test.sock",
		Router:      router.New(store),
		Clock:       fixedClock(time.Unix(1_700_000_000, 0)),
	})
}

func call(t *testing.T, d *Daemon, method string, params interface{}) Response {
	t.Helper()
	var raw msgpack.RawMessage
	if params != nil {
		b, err := msgpack.Marshal(params)
		require.NoError(t, err)
		raw = b
	}
	return d.Dispatch(Request{ID: 1, Method: method, Params: raw})
}

func TestDaemonStatus(t *testing.T) {
	d := newTestDaemon(t)
	resp := call(t, d, "status", nil)
	require.Nil(t, resp.Error)
	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	require.NotEmpty(t, result["identity_hash"])
}

func TestDaemonUnknownMethod(t *testing.T) {
	d := newTestDaemon(t)
	resp := call(t, d, "not_a_real_method", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeNotImplemented, resp.Error.Code)
}

func TestDaemonSendMessageSuccess(t *testing.T) {
	d := newTestDaemon(t)
	dest := hex.EncodeToString(make([]byte, lxmf.AddressHashSize))
	srcHash := d.Identity.AddressHash()
	src := hex.EncodeToString(srcHash[:])

	resp := call(t, d, "send_message", map[string]interface{}{
		"id":          "msg-1",
		"source":      src,
		"destination": dest,
		"title":       "hi",
		"content":     "hello there",
	})
	require.Nil(t, resp.Error)

	listResp := call(t, d, "list_messages", nil)
	require.Nil(t, listResp.Error)
}

func TestDaemonSendMessageMissingFields(t *testing.T) {
	d := newTestDaemon(t)
	resp := call(t, d, "send_message", map[string]interface{}{})
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeInvalidArgument, resp.Error.Code)
}

func TestDaemonSendMessageFailsWithoutIdentityPersistsRecord(t *testing.T) {
	d := NewDaemon(Config{Clock: fixedClock(time.Unix(1_700_000_000, 0))})
	dest := hex.EncodeToString(make([]byte, lxmf.AddressHashSize))
	src := hex.EncodeToString(make([]byte, lxmf.AddressHashSize))

	resp := call(t, d, "send_message", map[string]interface{}{
		"source":      src,
		"destination": dest,
		"content":     "x",
	})
	require.NotNil(t, resp.Error)
	require.Equal(t, CodeDeliveryFailed, resp.Error.Code)

	rec, ok := resp.Result.(MessageRecord)
	require.True(t, ok)
	require.Equal(t, "failed:no_identity", rec.ReceiptStatus)

	all := d.Messages.List()
	require.Len(t, all, 1)
}

func TestDaemonRecordReceiptAndTrace(t *testing.T) {
	d := newTestDaemon(t)
	d.Messages.Put(MessageRecord{ID: "m1", ReceiptStatus: "sent"})

	resp := call(t, d, "record_receipt", map[string]interface{}{"message_id": "m1", "status": "delivered"})
	require.Nil(t, resp.Error)

	traceResp := call(t, d, "message_delivery_trace", map[string]interface{}{"message_id": "m1"})
	require.Nil(t, traceResp.Error)

	missingResp := call(t, d, "record_receipt", map[string]interface{}{"message_id": "unknown", "status": "delivered"})
	require.NotNil(t, missingResp.Error)
	require.Equal(t, CodeNotFound, missingResp.Error.Code)
}

func TestDaemonPeerLifecycle(t *testing.T) {
	d := newTestDaemon(t)
	peerHex := "aabbccdd"

	resp := call(t, d, "announce_received", map[string]interface{}{"peer": peerHex, "name": "alice"})
	require.Nil(t, resp.Error)

	listResp := call(t, d, "list_peers", nil)
	require.Nil(t, listResp.Error)

	syncResp := call(t, d, "peer_sync", map[string]interface{}{"peer": peerHex})
	require.Nil(t, syncResp.Error)

	unpeerResp := call(t, d, "peer_unpeer", map[string]interface{}{"peer": peerHex})
	require.Nil(t, unpeerResp.Error)
}

func TestDaemonDeliveryPolicy(t *testing.T) {
	d := newTestDaemon(t)
	authRequired := false
	resp := call(t, d, "set_delivery_policy", map[string]interface{}{
		"auth_required":       authRequired,
		"denied_destinations": []string{"deadbeef"},
	})
	require.Nil(t, resp.Error)

	getResp := call(t, d, "get_delivery_policy", nil)
	require.Nil(t, getResp.Error)
	result := getResp.Result.(map[string]interface{})
	require.Contains(t, result["denied_destinations"], "deadbeef")
}

func TestDaemonPropagationIngestAndFetch(t *testing.T) {
	d := newTestDaemon(t)
	call(t, d, "propagation_enable", map[string]interface{}{"enabled": true})
	call(t, d, "stamp_policy_set", map[string]interface{}{"target_cost": 4})

	lxmfBytes := []byte("a propagated message")
	id := propagation.TransientID(lxmfBytes)
	stamp, err := propagation.GenerateStamp(context.Background(), id, 4)
	require.NoError(t, err)
	transientData := append(append([]byte{}, lxmfBytes...), stamp...)

	ingestResp := call(t, d, "propagation_ingest", map[string]interface{}{
		"payload_hex": hex.EncodeToString(transientData),
	})
	require.Nil(t, ingestResp.Error)

	fetchResp := call(t, d, "propagation_fetch", map[string]interface{}{
		"transient_id": hex.EncodeToString(id[:]),
	})
	require.Nil(t, fetchResp.Error)
}

func TestDaemonTicketGenerate(t *testing.T) {
	d := newTestDaemon(t)
	resp := call(t, d, "ticket_generate", map[string]interface{}{
		"destination": "aabb",
		"ttl_secs":    3600,
	})
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	require.NotEmpty(t, result["token"])
}

func TestDaemonPaperIngestURI(t *testing.T) {
	d := newTestDaemon(t)
	uri := lxmf.EncodeLXMURI([]byte("paper bytes"))

	resp := call(t, d, "paper_ingest_uri", map[string]interface{}{"uri": uri})
	require.Nil(t, resp.Error)

	badResp := call(t, d, "paper_ingest_uri", map[string]interface{}{"uri": "not-a-uri"})
	require.NotNil(t, badResp.Error)
}

func TestDaemonClearAll(t *testing.T) {
	d := newTestDaemon(t)
	d.Messages.Put(MessageRecord{ID: "m1"})
	d.Events.Push(EventInbound, "x")

	resp := call(t, d, "clear_all", nil)
	require.Nil(t, resp.Error)
	require.Empty(t, d.Messages.List())
	require.Equal(t, 0, d.Events.Len())
}

func TestDaemonEventPollingDrainsQueue(t *testing.T) {
	d := newTestDaemon(t)
	d.Events.Push(EventInbound, "a")
	d.Events.Push(EventOutbound, "b")

	resp := call(t, d, "sdk_poll_events_v2", nil)
	require.Nil(t, resp.Error)
	require.Equal(t, 0, d.Events.Len())

	d.Events.Push(EventReceipt, "c")
	takeResp := call(t, d, "take_event", nil)
	require.Nil(t, takeResp.Error)
	require.NotNil(t, takeResp.Result)
}

func TestDaemonReloadConfigAppliesInterfaceDiff(t *testing.T) {
	d := newTestDaemon(t)
	d.ConfigRoot = t.TempDir()
	d.interfaces["radio0"] = InterfaceInfo{Name: "radio0", Kind: "lora"}

	contents := `
[[interfaces]]
type = "tcp_client"
enabled = true
name = "uplink"
`
	require.NoError(t, os.WriteFile(filepath.Join(d.ConfigRoot, config.ConfigFileName), []byte(contents), 0o600))

	resp := call(t, d, "reload_config", nil)
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	require.Equal(t, true, result["applied"])
	require.Equal(t, 1, result["added"])
	require.Equal(t, 1, result["removed"])

	listResp := call(t, d, "list_interfaces", nil)
	require.Nil(t, listResp.Error)
}

func TestDaemonReloadConfigNoopWithoutConfigRoot(t *testing.T) {
	d := newTestDaemon(t)
	resp := call(t, d, "reload_config", nil)
	require.Nil(t, resp.Error)
	result := resp.Result.(map[string]interface{})
	require.Equal(t, false, result["applied"])
}

func TestHTTPHandlerRPCAndEvents(t *testing.T) {
	d := newTestDaemon(t)
	srv := httptest.NewServer(HTTPHandler(d))
	defer srv.Close()

	statusReq := Request{ID: 1, Method: "status"}
	frame, err := EncodeFrame(statusReq)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+"/rpc", "application/octet-stream", bytes.NewReader(frame))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	eventsResp, err := http.Get(srv.URL + "/events")
	require.NoError(t, err)
	defer eventsResp.Body.Close()
	require.Equal(t, http.StatusNoContent, eventsResp.StatusCode)
}
