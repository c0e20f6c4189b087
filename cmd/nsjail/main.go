//go:build linux

// Command nsjail runs a target command inside a process jail: fresh
// namespaces, a pivoted/chrooted filesystem, dropped privileges, resource
// limits, and optionally a seccomp-bpf filter and a virtual network
// interface (spec OVERVIEW).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/Afvanjaffer/nsjail/jail"
	"github.com/Afvanjaffer/nsjail/logging"
	"github.com/Afvanjaffer/nsjail/supervisor"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == jail.InitSubcommand {
		os.Exit(runInitJail())
	}
	os.Exit(runSupervisor())
}

// runInitJail is the hidden re-exec entrypoint (spec §5): it reads its
// Params off ConfigFD, runs the Child builder, and never returns on
// success since jail.Run execs the target program directly.
func runInitJail() int {
	params, err := jail.ReadParams(jail.ConfigFD)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nsjail initjail: %v\n", err)
		return 1
	}
	if err := jail.Run(params, jail.LogFD); err != nil {
		fmt.Fprintf(os.Stderr, "nsjail initjail: %v\n", err)
		return 1
	}
	return 1
}

// runSupervisor is the ordinary CLI front-end: parse flags, build a
// JailConfig, and drive the Supervisor state machine for the chosen mode.
func runSupervisor() int {
	cfg, usage, err := parseArgs(os.Args[1:])
	if err != nil {
		if err == flag.ErrHelp {
			fmt.Fprint(os.Stdout, usage)
			return 0
		}
		fmt.Fprintf(os.Stderr, "nsjail: %v\n\n%s", err, usage)
		return 1
	}

	if cfg.Daemonize {
		if !daemonize() {
			return 0
		}
	}

	log, err := logging.New(cfg.LogPath, cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nsjail: open log: %v\n", err)
		return 1
	}

	sup, err := supervisor.New(cfg, log)
	if err != nil {
		log.Errorf("build supervisor: %v", err)
		return 1
	}

	if err := sup.Run(context.Background()); err != nil {
		log.Errorf("supervisor exited: %v", err)
		return 1
	}
	return 0
}
