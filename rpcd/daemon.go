// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcd

import (
	"sync"
	"time"

	"github.com/lxmf-mesh/reticulumd/identity"
	"github.com/lxmf-mesh/reticulumd/router"
	"github.com/vmihailenco/msgpack/v5"
)

// ContractVersion is the daemon's RPC contract version, surfaced in
// status's meta field.
const ContractVersion = "v2"

// Handler is one RPC method implementation.
type Handler func(d *Daemon, params msgpack.RawMessage) (interface{}, *ErrorDetail)

// InterfaceInfo is the daemon's record of one configured interface, as
// returned by list_interfaces.
type InterfaceInfo struct {
	Name string `msgpack:"name"`
	Kind string `msgpack:"kind"`
	MTU  int    `msgpack:"mtu"`
}

// AnnounceRecord is one entry in the announce history, as returned by
// list_announces.
type AnnounceRecord struct {
	Peer        string  `msgpack:"peer"`
	Timestamp   float64 `msgpack:"timestamp"`
	Name        string  `msgpack:"name,omitempty"`
	NameSource  string  `msgpack:"name_source,omitempty"`
	AppDataHex  string  `msgpack:"app_data_hex,omitempty"`
}

// Daemon is the RPC daemon's full in-process state: message/peer/policy
// bookkeeping, the event queue, and propagation/stamp configuration. A
// single Daemon instance backs both the frame dispatcher and the HTTP
// façade.
type Daemon struct {
	mu sync.Mutex

	Identity    *identity.Private
	Profile     string
	RPCEndpoint string
	ConfigRoot  string
	Clock       func() time.Time

	Router   *router.Router
	Messages MessageStore
	Events   *EventQueue

	handlers map[string]Handler

	interfaces map[string]InterfaceInfo
	announces  []AnnounceRecord

	propagationEnabled  bool
	propagationStoreDir string
	outboundPropNode    string
	propagationNodes    []string

	stampTargetCost  int
	stampFlexibility int
}

// Config carries the construction-time parameters for a Daemon.
type Config struct {
	Identity    *identity.Private
	Profile     string
	RPCEndpoint string
	ConfigRoot  string
	Router      *router.Router
	Messages    MessageStore
	Clock       func() time.Time
}

// NewDaemon builds a Daemon and registers every method in the taxonomy.
func NewDaemon(cfg Config) *Daemon {
	messages := cfg.Messages
	if messages == nil {
		messages = NewMemoryMessageStore()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	r := cfg.Router
	if r == nil {
		r = router.New(nil)
	}
	d := &Daemon{
		Identity:         cfg.Identity,
		Profile:          cfg.Profile,
		RPCEndpoint:      cfg.RPCEndpoint,
		ConfigRoot:       cfg.ConfigRoot,
		Clock:            clock,
		Router:           r,
		Messages:         messages,
		Events:           NewEventQueue(),
		interfaces:       make(map[string]InterfaceInfo),
		stampTargetCost:  DefaultStampTargetCost,
		stampFlexibility: DefaultStampFlexibility,
	}
	d.handlers = defaultHandlers()
	return d
}

// DefaultStampTargetCost and DefaultStampFlexibility are the daemon's
// starting proof-of-work stamp policy (stamp_policy_get/set).
const (
	DefaultStampTargetCost  = 8
	DefaultStampFlexibility = 2
)

// Dispatch runs req against the registered handler table and always
// returns a Response carrying req's ID, even on error.
func (d *Daemon) Dispatch(req Request) Response {
	h, ok := d.handlers[req.Method]
	if !ok {
		return Response{ID: req.ID, Error: NewError(CodeNotImplemented, "unknown method: "+req.Method)}
	}
	result, errDetail := h(d, req.Params)
	if errDetail != nil {
		return Response{ID: req.ID, Result: result, Error: errDetail}
	}
	return Response{ID: req.ID, Result: result}
}

// HandleFrame decodes one Request frame, dispatches it, and re-encodes
// the Response as a frame.
func (d *Daemon) HandleFrame(frame []byte) ([]byte, error) {
	var req Request
	if _, err := DecodeFrame(frame, &req); err != nil {
		return nil, err
	}
	resp := d.Dispatch(req)
	return EncodeFrame(resp)
}

func decodeParams(raw msgpack.RawMessage, out interface{}) *ErrorDetail {
	if len(raw) == 0 {
		return nil
	}
	if err := msgpack.Unmarshal(raw, out); err != nil {
		return NewError(CodeInvalidArgument, "invalid params: "+err.Error())
	}
	return nil
}

func propagationStoreState(d *Daemon) (bool, string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.propagationEnabled, d.propagationStoreDir
}
