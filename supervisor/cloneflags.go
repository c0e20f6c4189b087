//go:build linux

package supervisor

import (
	"syscall"

	"github.com/Afvanjaffer/nsjail/config"
)

// cloneFlags translates the per-namespace enable flags into the clone(2)
// flag union the Child builder's clone is created with (spec §4.3
// spawn step 2: "clone flags = SIGCHLD | union of requested namespace
// flags"). Go's os/exec always ORs in SIGCHLD itself when Cloneflags is
// set, so only the namespace bits are assembled here.
func cloneFlags(ns config.Namespaces) uintptr {
	var flags uintptr
	if ns.NewNet {
		flags |= syscall.CLONE_NEWNET
	}
	if ns.NewUser {
		flags |= syscall.CLONE_NEWUSER
	}
	if ns.NewNS {
		flags |= syscall.CLONE_NEWNS
	}
	if ns.NewPID {
		flags |= syscall.CLONE_NEWPID
	}
	if ns.NewIPC {
		flags |= syscall.CLONE_NEWIPC
	}
	if ns.NewUTS {
		flags |= syscall.CLONE_NEWUTS
	}
	return flags
}
