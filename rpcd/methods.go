// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package rpcd

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/lxmf-mesh/reticulumd/config"
	"github.com/lxmf-mesh/reticulumd/identity"
	"github.com/lxmf-mesh/reticulumd/lxmf"
	"github.com/lxmf-mesh/reticulumd/propagation"
	"github.com/lxmf-mesh/reticulumd/router"
	"github.com/vmihailenco/msgpack/v5"
)

func defaultHandlers() map[string]Handler {
	return map[string]Handler{
		"status":                         handleStatus,
		"send_message":                   handleSendMessage,
		"receive_message":                handleReceiveMessage,
		"list_messages":                  handleListMessages,
		"record_receipt":                 handleRecordReceipt,
		"message_delivery_trace":         handleMessageDeliveryTrace,
		"list_peers":                     handleListPeers,
		"peer_sync":                      handlePeerSync,
		"peer_unpeer":                    handlePeerUnpeer,
		"list_announces":                 handleListAnnounces,
		"announce_received":              handleAnnounceReceived,
		"announce_now":                   handleAnnounceNow,
		"list_interfaces":                handleListInterfaces,
		"set_interfaces":                 handleSetInterfaces,
		"reload_config":                  handleReloadConfig,
		"propagation_status":             handlePropagationStatus,
		"propagation_enable":             handlePropagationEnable,
		"propagation_ingest":             handlePropagationIngest,
		"propagation_fetch":              handlePropagationFetch,
		"get_outbound_propagation_node":  handleGetOutboundPropagationNode,
		"set_outbound_propagation_node":  handleSetOutboundPropagationNode,
		"list_propagation_nodes":         handleListPropagationNodes,
		"stamp_policy_get":               handleStampPolicyGet,
		"stamp_policy_set":               handleStampPolicySet,
		"ticket_generate":                handleTicketGenerate,
		"get_delivery_policy":            handleGetDeliveryPolicy,
		"set_delivery_policy":            handleSetDeliveryPolicy,
		"paper_ingest_uri":               handlePaperIngestURI,
		"clear_messages":                 handleClearMessages,
		"clear_resources":                handleClearResources,
		"clear_peers":                    handleClearPeers,
		"clear_all":                      handleClearAll,
		"sdk_poll_events_v2":             handleSDKPollEventsV2,
		"take_event":                     handleTakeEvent,
	}
}

// --- status ---

func handleStatus(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var identityHash, deliveryDestHash string
	if d.Identity != nil {
		h := d.Identity.AddressHash()
		identityHash = hex.EncodeToString(h[:])
		deliveryDestHash = identityHash
	}
	return map[string]interface{}{
		"identity_hash":              identityHash,
		"delivery_destination_hash":  deliveryDestHash,
		"meta": map[string]interface{}{
			"contract_version": ContractVersion,
			"profile":          d.Profile,
			"rpc_endpoint":     d.RPCEndpoint,
		},
	}, nil
}

// --- messages ---

type sendMessageParams struct {
	ID                   string                `msgpack:"id"`
	Source               string                `msgpack:"source"`
	Destination          string                `msgpack:"destination"`
	Title                string                `msgpack:"title"`
	Content              string                `msgpack:"content"`
	Fields               map[uint8]interface{} `msgpack:"fields"`
	Method               string                `msgpack:"method"`
	StampCost            *int                  `msgpack:"stamp_cost"`
	IncludeTicket        *bool                 `msgpack:"include_ticket"`
	TryPropagationOnFail *bool                 `msgpack:"try_propagation_on_fail"`
	SourcePrivateKeyHex  string                `msgpack:"source_private_key"`
}

func handleSendMessage(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	return buildAndStoreMessage(d, raw, "outbound")
}

func handleReceiveMessage(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	return buildAndStoreMessage(d, raw, "inbound")
}

func buildAndStoreMessage(d *Daemon, raw msgpack.RawMessage, direction string) (interface{}, *ErrorDetail) {
	var p sendMessageParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	if p.Source == "" || p.Destination == "" {
		return nil, NewError(CodeInvalidArgument, "source and destination are required")
	}
	destBytes, err := hex.DecodeString(p.Destination)
	if err != nil || len(destBytes) != lxmf.AddressHashSize {
		return nil, NewError(CodeInvalidArgument, "destination must be a 16-byte hex address")
	}
	srcBytes, err := hex.DecodeString(p.Source)
	if err != nil || len(srcBytes) != lxmf.AddressHashSize {
		return nil, NewError(CodeInvalidArgument, "source must be a 16-byte hex address")
	}

	msg := &lxmf.Message{
		Timestamp: nowUnix(d.Clock()),
		Title:     []byte(p.Title),
		Content:   []byte(p.Content),
		Fields:    p.Fields,
	}
	copy(msg.Destination[:], destBytes)
	copy(msg.Source[:], srcBytes)

	status := "sent"
	if direction == "inbound" {
		status = "delivered"
	}

	if direction == "outbound" {
		signer := d.Identity
		if p.SourcePrivateKeyHex != "" {
			keyBytes, err := hex.DecodeString(p.SourcePrivateKeyHex)
			if err != nil {
				return nil, NewError(CodeInvalidArgument, "source_private_key must be hex")
			}
			signer, err = identity.FromBytes(keyBytes)
			if err != nil {
				return nil, NewError(CodeInvalidArgument, "invalid source_private_key: "+err.Error())
			}
		}
		if signer == nil {
			status = "failed:no_identity"
		} else if err := msg.Sign(signer); err != nil {
			status = "failed:" + err.Error()
		}
	}

	id, err := msg.MessageID()
	if err != nil {
		return nil, NewError(CodeInternal, err.Error())
	}
	msgID := p.ID
	if msgID == "" {
		msgID = hex.EncodeToString(id[:])
	}

	rec := MessageRecord{
		ID:            msgID,
		Source:        p.Source,
		Destination:   p.Destination,
		Title:         p.Title,
		Content:       p.Content,
		Fields:        p.Fields,
		Method:        p.Method,
		Direction:     direction,
		ReceiptStatus: status,
		Timestamp:     msg.Timestamp,
	}
	d.Messages.Put(rec)

	eventType := EventOutbound
	if direction == "inbound" {
		eventType = EventInbound
	}
	d.Events.Push(eventType, rec)

	if reason, ok := router.ParseFailedReason(status); ok {
		if p.TryPropagationOnFail != nil && *p.TryPropagationOnFail {
			log.Debugf("message %s failed (%s), propagation retry requested", rec.ID, reason)
		}
		return rec, NewError(CodeDeliveryFailed, reason)
	}
	return rec, nil
}

type idParams struct {
	MessageID string `msgpack:"message_id"`
}

func handleListMessages(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	return map[string]interface{}{
		"messages": d.Messages.List(),
		"meta":     map[string]interface{}{"count": len(d.Messages.List())},
	}, nil
}

type recordReceiptParams struct {
	MessageID string `msgpack:"message_id"`
	Status    string `msgpack:"status"`
}

func handleRecordReceipt(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p recordReceiptParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	if p.MessageID == "" {
		return nil, NewError(CodeInvalidArgument, "message_id is required")
	}
	if !d.Messages.SetReceiptStatus(p.MessageID, p.Status) {
		return nil, NewError(CodeNotFound, "unknown message_id")
	}
	d.Messages.AppendTrace(p.MessageID, TraceEntry{Status: p.Status, Timestamp: nowUnix(d.Clock())})
	d.Events.Push(EventReceipt, map[string]interface{}{"message_id": p.MessageID, "status": p.Status})
	return map[string]interface{}{"ok": true}, nil
}

func handleMessageDeliveryTrace(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p idParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	rec, ok := d.Messages.Get(p.MessageID)
	if !ok {
		return nil, NewError(CodeNotFound, "unknown message_id")
	}
	return map[string]interface{}{"message_id": p.MessageID, "trace": rec.Trace}, nil
}

// --- peers ---

func handleListPeers(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	peers := d.Router.Peers.List()
	return map[string]interface{}{
		"peers": peers,
		"meta":  map[string]interface{}{"count": len(peers)},
	}, nil
}

type peerParams struct {
	Peer string `msgpack:"peer"`
}

func handlePeerSync(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p peerParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	if p.Peer == "" {
		return nil, NewError(CodeInvalidArgument, "peer is required")
	}
	addr, err := hex.DecodeString(p.Peer)
	if err != nil {
		return nil, NewError(CodeInvalidArgument, "peer must be hex")
	}
	d.Router.Peers.SetPeered(addr, true)
	return map[string]interface{}{"ok": true}, nil
}

func handlePeerUnpeer(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p peerParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	if p.Peer == "" {
		return nil, NewError(CodeInvalidArgument, "peer is required")
	}
	addr, err := hex.DecodeString(p.Peer)
	if err != nil {
		return nil, NewError(CodeInvalidArgument, "peer must be hex")
	}
	d.Router.Peers.Remove(addr)
	return map[string]interface{}{"ok": true}, nil
}

// --- announces ---

type listAnnouncesParams struct {
	Limit    *int     `msgpack:"limit"`
	BeforeTS *float64 `msgpack:"before_ts"`
	Cursor   *string  `msgpack:"cursor"`
}

func handleListAnnounces(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p listAnnouncesParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	d.mu.Lock()
	all := append([]AnnounceRecord{}, d.announces...)
	d.mu.Unlock()

	filtered := make([]AnnounceRecord, 0, len(all))
	for _, a := range all {
		if p.BeforeTS != nil && a.Timestamp >= *p.BeforeTS {
			continue
		}
		filtered = append(filtered, a)
	}
	if p.Limit != nil && *p.Limit >= 0 && *p.Limit < len(filtered) {
		filtered = filtered[:*p.Limit]
	}
	return map[string]interface{}{"announces": filtered, "meta": map[string]interface{}{"count": len(filtered)}}, nil
}

type announceReceivedParams struct {
	Peer       string   `msgpack:"peer"`
	Timestamp  *float64 `msgpack:"timestamp"`
	Name       *string  `msgpack:"name"`
	NameSource *string  `msgpack:"name_source"`
	AppDataHex *string  `msgpack:"app_data_hex"`
}

func handleAnnounceReceived(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p announceReceivedParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	if p.Peer == "" {
		return nil, NewError(CodeInvalidArgument, "peer is required")
	}
	ts := nowUnix(d.Clock())
	if p.Timestamp != nil {
		ts = *p.Timestamp
	}
	rec := AnnounceRecord{Peer: p.Peer, Timestamp: ts}
	if p.Name != nil {
		rec.Name = *p.Name
	}
	if p.NameSource != nil {
		rec.NameSource = *p.NameSource
	}
	if p.AppDataHex != nil {
		rec.AppDataHex = *p.AppDataHex
	}

	d.mu.Lock()
	d.announces = append(d.announces, rec)
	d.mu.Unlock()

	if addr, err := hex.DecodeString(p.Peer); err == nil {
		d.Router.Peers.Observe(addr, d.Clock(), 0)
		if rec.Name != "" {
			d.Router.Peers.SetName(addr, rec.Name, rec.NameSource)
		}
	}
	d.Events.Push(EventAnnounceReceived, rec)
	return map[string]interface{}{"ok": true}, nil
}

func handleAnnounceNow(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	ts := nowUnix(d.Clock())
	d.Events.Push(EventAnnounceSent, map[string]interface{}{"timestamp": ts})
	return map[string]interface{}{"ok": true, "timestamp": ts}, nil
}

// --- interfaces ---

func handleListInterfaces(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]InterfaceInfo, 0, len(d.interfaces))
	for _, info := range d.interfaces {
		out = append(out, info)
	}
	return map[string]interface{}{"interfaces": out}, nil
}

type setInterfacesParams struct {
	Interfaces []InterfaceInfo `msgpack:"interfaces"`
}

func handleSetInterfaces(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p setInterfacesParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	d.mu.Lock()
	d.interfaces = make(map[string]InterfaceInfo, len(p.Interfaces))
	for _, info := range p.Interfaces {
		d.interfaces[info.Name] = info
	}
	d.mu.Unlock()
	return map[string]interface{}{"ok": true}, nil
}

func handleReloadConfig(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	log.Infof("config reload requested over rpc")
	if d.ConfigRoot == "" {
		return map[string]interface{}{"ok": true, "applied": false}, nil
	}

	profile, err := config.LoadProfile(d.ConfigRoot)
	if err != nil {
		return nil, NewError(CodeInternal, "reload_config: "+err.Error())
	}
	next := profile.EnabledInterfaces()

	d.mu.Lock()
	prev := make([]config.InterfaceConfig, 0, len(d.interfaces))
	for _, info := range d.interfaces {
		prev = append(prev, config.InterfaceConfig{Name: info.Name, Type: info.Kind, Enabled: true})
	}
	diff := config.DiffInterfaces(prev, next)

	for _, iface := range diff.Added {
		d.interfaces[iface.Name] = InterfaceInfo{Name: iface.Name, Kind: iface.Type}
	}
	for _, iface := range diff.Changed {
		d.interfaces[iface.Name] = InterfaceInfo{Name: iface.Name, Kind: iface.Type}
	}
	for _, iface := range diff.Removed {
		delete(d.interfaces, iface.Name)
	}
	d.mu.Unlock()

	return map[string]interface{}{
		"ok":      true,
		"applied": !diff.Empty(),
		"added":   len(diff.Added),
		"removed": len(diff.Removed),
		"changed": len(diff.Changed),
	}, nil
}

// --- propagation ---

func handlePropagationStatus(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	enabled, storeDir := propagationStoreState(d)
	return map[string]interface{}{
		"enabled":    enabled,
		"store_root": storeDir,
	}, nil
}

type propagationEnableParams struct {
	Enabled    bool    `msgpack:"enabled"`
	StoreRoot  *string `msgpack:"store_root"`
	TargetCost *int    `msgpack:"target_cost"`
}

func handlePropagationEnable(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p propagationEnableParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	d.mu.Lock()
	d.propagationEnabled = p.Enabled
	if p.StoreRoot != nil {
		d.propagationStoreDir = *p.StoreRoot
	}
	if p.TargetCost != nil {
		d.stampTargetCost = *p.TargetCost
	}
	d.mu.Unlock()
	return map[string]interface{}{"ok": true}, nil
}

type propagationIngestParams struct {
	TransientID *string `msgpack:"transient_id"`
	PayloadHex  *string `msgpack:"payload_hex"`
}

func handlePropagationIngest(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p propagationIngestParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	if p.PayloadHex == nil {
		return nil, NewError(CodeInvalidArgument, "payload_hex is required")
	}
	payload, err := hex.DecodeString(*p.PayloadHex)
	if err != nil {
		return nil, NewError(CodeInvalidArgument, "payload_hex must be hex")
	}
	d.mu.Lock()
	targetCost := d.stampTargetCost
	d.mu.Unlock()

	if err := d.Router.IngestTransient(payload, targetCost, d.Clock()); err != nil {
		if err == router.ErrPropagationDisabled {
			return nil, NewError(CodeInvalidArgument, "propagation node not enabled")
		}
		return nil, NewError(CodeInvalidArgument, err.Error())
	}
	lxmfBytes, _, err := propagation.SplitTransientData(payload)
	if err != nil {
		return nil, NewError(CodeInvalidArgument, err.Error())
	}
	id := propagation.TransientID(lxmfBytes)
	return map[string]interface{}{"transient_id": hex.EncodeToString(id[:])}, nil
}

type propagationFetchParams struct {
	TransientID string `msgpack:"transient_id"`
}

func handlePropagationFetch(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p propagationFetchParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	idBytes, err := hex.DecodeString(p.TransientID)
	if err != nil || len(idBytes) != 32 {
		return nil, NewError(CodeInvalidArgument, "transient_id must be a 32-byte hex id")
	}
	var id [32]byte
	copy(id[:], idBytes)

	data, ok, err := d.Router.FetchTransient(id)
	if err != nil {
		if err == router.ErrPropagationDisabled {
			return nil, NewError(CodeInvalidArgument, "propagation node not enabled")
		}
		return nil, NewError(CodeInternal, err.Error())
	}
	if !ok {
		return nil, NewError(CodeNotFound, "unknown transient_id")
	}
	return map[string]interface{}{"payload_hex": hex.EncodeToString(data)}, nil
}

func handleGetOutboundPropagationNode(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]interface{}{"peer": d.outboundPropNode}, nil
}

type setOutboundPropagationNodeParams struct {
	Peer *string `msgpack:"peer"`
}

func handleSetOutboundPropagationNode(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p setOutboundPropagationNodeParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	d.mu.Lock()
	if p.Peer != nil {
		d.outboundPropNode = *p.Peer
	} else {
		d.outboundPropNode = ""
	}
	d.mu.Unlock()
	return map[string]interface{}{"ok": true}, nil
}

func handleListPropagationNodes(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]interface{}{"nodes": append([]string{}, d.propagationNodes...)}, nil
}

// --- stamps & tickets ---

func handleStampPolicyGet(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return map[string]interface{}{
		"target_cost": d.stampTargetCost,
		"flexibility": d.stampFlexibility,
	}, nil
}

type stampPolicySetParams struct {
	TargetCost  *int `msgpack:"target_cost"`
	Flexibility *int `msgpack:"flexibility"`
}

func handleStampPolicySet(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p stampPolicySetParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	d.mu.Lock()
	if p.TargetCost != nil {
		d.stampTargetCost = *p.TargetCost
	}
	if p.Flexibility != nil {
		d.stampFlexibility = *p.Flexibility
	}
	d.mu.Unlock()
	return map[string]interface{}{"ok": true}, nil
}

type ticketGenerateParams struct {
	Destination string `msgpack:"destination"`
	TTLSecs     *int64 `msgpack:"ttl_secs"`
}

func handleTicketGenerate(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p ticketGenerateParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	addr, err := hex.DecodeString(p.Destination)
	if err != nil {
		return nil, NewError(CodeInvalidArgument, "destination must be hex")
	}
	var ttl int64
	if p.TTLSecs != nil {
		ttl = *p.TTLSecs
	}
	ticket, err := d.Router.IssueTicket(addr, time.Duration(ttl)*time.Second, d.Clock())
	if err != nil {
		return nil, NewError(CodeInternal, err.Error())
	}
	return map[string]interface{}{
		"token":   hex.EncodeToString(ticket.Token),
		"issued":  nowUnix(ticket.Issued),
		"expires": nowUnix(ticket.Expires),
	}, nil
}

// --- delivery policy ---

func handleGetDeliveryPolicy(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	snap := d.Router.Policy.Get()
	return map[string]interface{}{
		"auth_required":            snap.AuthRequired,
		"allowed_destinations":     snap.Allowed,
		"denied_destinations":      snap.Denied,
		"ignored_destinations":     snap.Ignored,
		"prioritised_destinations": snap.Prioritised,
	}, nil
}

type setDeliveryPolicyParams struct {
	AuthRequired            *bool    `msgpack:"auth_required"`
	AllowedDestinations     []string `msgpack:"allowed_destinations"`
	DeniedDestinations      []string `msgpack:"denied_destinations"`
	IgnoredDestinations     []string `msgpack:"ignored_destinations"`
	PrioritisedDestinations []string `msgpack:"prioritised_destinations"`
}

func handleSetDeliveryPolicy(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p setDeliveryPolicyParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	d.Router.Policy.Set(p.AuthRequired, p.AllowedDestinations, p.DeniedDestinations, p.IgnoredDestinations, p.PrioritisedDestinations)
	return map[string]interface{}{"ok": true}, nil
}

// --- paper ---

type paperIngestURIParams struct {
	URI string `msgpack:"uri"`
}

func handlePaperIngestURI(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p paperIngestURIParams
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	payload, err := lxmf.DecodeLXMURI(p.URI)
	if err != nil {
		return nil, NewError(CodeInvalidArgument, err.Error())
	}
	return map[string]interface{}{"payload_hex": hex.EncodeToString(payload)}, nil
}

// --- clear ---

func handleClearMessages(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	d.Messages.Clear()
	return map[string]interface{}{"ok": true}, nil
}

func handleClearResources(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	// Resource transfers are tracked by the transport layer, outside the
	// daemon's own state; nothing to clear here today.
	return map[string]interface{}{"ok": true}, nil
}

func handleClearPeers(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	for _, p := range d.Router.Peers.List() {
		addr, err := hex.DecodeString(p.Address)
		if err != nil {
			continue
		}
		d.Router.Peers.Remove(addr)
	}
	return map[string]interface{}{"ok": true}, nil
}

func handleClearAll(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	handleClearMessages(d, nil)
	handleClearPeers(d, nil)
	d.mu.Lock()
	d.announces = nil
	d.mu.Unlock()
	d.Events.Clear()
	return map[string]interface{}{"ok": true}, nil
}

// --- events ---

type sdkPollEventsV2Params struct {
	Cursor *string `msgpack:"cursor"`
}

func handleSDKPollEventsV2(d *Daemon, raw msgpack.RawMessage) (interface{}, *ErrorDetail) {
	var p sdkPollEventsV2Params
	if errDetail := decodeParams(raw, &p); errDetail != nil {
		return nil, errDetail
	}
	var events []Event
	for {
		e, ok := d.Events.Take()
		if !ok {
			break
		}
		events = append(events, e)
	}
	return map[string]interface{}{"events": events, "cursor": fmt.Sprintf("%d", len(events))}, nil
}

func handleTakeEvent(d *Daemon, _ msgpack.RawMessage) (interface{}, *ErrorDetail) {
	e, ok := d.Events.Take()
	if !ok {
		return nil, nil
	}
	return e, nil
}
