// Copyright (c) 2025 The LXMF Mesh developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Command lxmf is the operator CLI for a mesh-messaging node: a thin
// front end over the node's RPC daemon. Business logic for each
// subcommand lives in the library packages (config, rpcd, lxmf); this
// binary only parses flags, dials the daemon, and prints its response.
package main

import (
	"fmt"
	"os"

	"github.com/jessevdk/go-flags"
)

// exit codes per the CLI's documented contract.
const (
	exitSuccess = 0
	exitError   = 1
	exitUsage   = 2
)

// options holds the flags shared by every subcommand.
type options struct {
	Profile string `long:"profile" default:"default" description:"named profile to operate against"`
	RPC     string `long:"rpc" description:"daemon RPC address (host:port), overrides the profile default"`
	JSON    bool   `long:"json" description:"print responses as JSON instead of a short human summary"`
	Quiet   bool   `long:"quiet" description:"suppress non-essential output"`
}

var opts options

func main() {
	parser := flags.NewParser(&opts, flags.Default)
	parser.LongDescription = "lxmf manages a local mesh-messaging node through its RPC daemon."

	registerCommands(parser)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(exitSuccess)
		}
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrCommandRequired {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitUsage)
		}
		if _, ok := err.(*flags.Error); ok {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(exitUsage)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
}

func registerCommands(parser *flags.Parser) {
	mustAdd := func(name, short, long string, data interface{}) {
		if _, err := parser.AddCommand(name, short, long, data); err != nil {
			panic(fmt.Sprintf("lxmf: register command %q: %v", name, err))
		}
	}

	mustAdd("contact", "Inspect known contacts", "List the peers the node knows of.", &contactCmd{})
	mustAdd("daemon", "Manage the local daemon", "Check the status of the node's RPC daemon; a managed profile requires --managed.", &daemonCmd{})
	mustAdd("iface", "Manage interfaces", "List or hot-reload the node's configured interfaces.", &ifaceCmd{})
	mustAdd("message", "Send and inspect messages", "Send an LXM, list known messages, or trace a delivery.", &messageCmd{})
	mustAdd("paper", "Work with paper messages", "Ingest a paper message from an lxm:// URI.", &paperCmd{})
	mustAdd("peer", "Manage peers", "List, sync, or unpeer a known destination.", &peerCmd{})
	mustAdd("profile", "Inspect the active profile", "Show the resolved profile root and config path.", &profileCmd{})
	mustAdd("propagation", "Manage propagation node state", "Check status, enable or disable the propagation role, or fetch a transient message.", &propagationCmd{})
	mustAdd("stamp", "Manage delivery stamp policy", "Get or set the proof-of-work stamp policy.", &stampCmd{})
}
