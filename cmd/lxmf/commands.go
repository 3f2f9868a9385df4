// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"

	"github.com/lxmf-mesh/reticulumd/config"
)

// runAndPrint calls method over RPC and prints its result, turning an
// RPC-level error into a plain Go error so main can map it to the
// "user or RPC error" exit code.
func runAndPrint(method string, params interface{}) error {
	resp, err := callRPC(method, params)
	if err != nil {
		return err
	}
	if resp.Error != nil {
		return fmt.Errorf("%s: %s (code %s)", method, resp.Error.Message, resp.Error.Code)
	}
	printResult(method, resp.Result)
	return nil
}

// --- contact ---

type contactCmd struct{}

func (c *contactCmd) Execute(_ []string) error {
	return runAndPrint("list_peers", nil)
}

// --- daemon ---

type daemonCmd struct {
	Status  bool `long:"status" description:"query the daemon's status, skipping the managed-profile check"`
	Managed bool `long:"managed" description:"confirm this profile is meant to run under an external supervisor"`
}

// Execute refuses a managed profile unless --managed is given, then
// queries the daemon's status. It does not launch a daemon process.
func (c *daemonCmd) Execute(_ []string) error {
	if c.Status {
		return runAndPrint("status", nil)
	}
	root, err := config.ProfileRoot(opts.Profile)
	if err != nil {
		return err
	}
	profile, err := config.LoadProfile(root)
	if err == nil && profile.Managed && !c.Managed {
		return fmt.Errorf("profile %q is managed; pass --managed to confirm an external supervisor owns its lifecycle", opts.Profile)
	}
	return runAndPrint("status", nil)
}

// --- iface ---

type ifaceCmd struct {
	Reload bool `long:"reload" description:"re-read the profile's config file and apply interface changes"`
}

func (c *ifaceCmd) Execute(_ []string) error {
	if c.Reload {
		return runAndPrint("reload_config", nil)
	}
	return runAndPrint("list_interfaces", nil)
}

// --- message ---

type messageCmd struct {
	Source      string `long:"source" description:"hex source address, for --send"`
	Destination string `long:"destination" description:"hex destination address, for --send"`
	Title       string `long:"title" description:"message title, for --send"`
	Content     string `long:"send" description:"send a message with this body"`
	Trace       string `long:"trace" description:"show the delivery trace for this message id"`
}

func (c *messageCmd) Execute(_ []string) error {
	switch {
	case c.Content != "":
		return runAndPrint("send_message", map[string]interface{}{
			"source":      c.Source,
			"destination": c.Destination,
			"title":       c.Title,
			"content":     c.Content,
		})
	case c.Trace != "":
		return runAndPrint("message_delivery_trace", map[string]interface{}{"message_id": c.Trace})
	default:
		return runAndPrint("list_messages", nil)
	}
}

// --- paper ---

type paperCmd struct {
	Ingest string `long:"ingest" description:"ingest a paper message from this lxm:// URI"`
}

func (c *paperCmd) Execute(_ []string) error {
	if c.Ingest == "" {
		return fmt.Errorf("paper: --ingest <uri> is required")
	}
	return runAndPrint("paper_ingest_uri", map[string]interface{}{"uri": c.Ingest})
}

// --- peer ---

type peerCmd struct {
	Sync   string `long:"sync" description:"request a propagation sync with this hex peer address"`
	Unpeer string `long:"unpeer" description:"stop treating this hex peer address as an active peer"`
}

func (c *peerCmd) Execute(_ []string) error {
	switch {
	case c.Sync != "":
		return runAndPrint("peer_sync", map[string]interface{}{"peer": c.Sync})
	case c.Unpeer != "":
		return runAndPrint("peer_unpeer", map[string]interface{}{"peer": c.Unpeer})
	default:
		return runAndPrint("list_peers", nil)
	}
}

// --- profile ---

type profileCmd struct{}

func (c *profileCmd) Execute(_ []string) error {
	root, err := config.ProfileRoot(opts.Profile)
	if err != nil {
		return err
	}
	printResult("profile", map[string]string{
		"name": opts.Profile,
		"root": root,
		"path": root + "/" + config.ConfigFileName,
	})
	return nil
}

// --- propagation ---

type propagationCmd struct {
	Enable      *bool  `long:"enable" description:"enable (true) or disable (false) the propagation node role"`
	Fetch       string `long:"fetch" description:"fetch the transient message with this hex transient id"`
}

func (c *propagationCmd) Execute(_ []string) error {
	switch {
	case c.Enable != nil:
		return runAndPrint("propagation_enable", map[string]interface{}{"enabled": *c.Enable})
	case c.Fetch != "":
		return runAndPrint("propagation_fetch", map[string]interface{}{"transient_id": c.Fetch})
	default:
		return runAndPrint("propagation_status", nil)
	}
}

// --- stamp ---

type stampCmd struct {
	TargetCost *int `long:"target-cost" description:"set the required leading-zero-bit count"`
}

func (c *stampCmd) Execute(_ []string) error {
	if c.TargetCost != nil {
		return runAndPrint("stamp_policy_set", map[string]interface{}{"target_cost": *c.TargetCost})
	}
	return runAndPrint("stamp_policy_get", nil)
}
