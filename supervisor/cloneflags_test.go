//go:build linux

package supervisor

import (
	"syscall"
	"testing"

	"github.com/Afvanjaffer/nsjail/config"
)

func TestCloneFlagsAllEnabled(t *testing.T) {
	ns := config.Namespaces{NewNet: true, NewUser: true, NewNS: true, NewPID: true, NewIPC: true, NewUTS: true}
	want := uintptr(syscall.CLONE_NEWNET | syscall.CLONE_NEWUSER | syscall.CLONE_NEWNS | syscall.CLONE_NEWPID | syscall.CLONE_NEWIPC | syscall.CLONE_NEWUTS)
	if got := cloneFlags(ns); got != want {
		t.Fatalf("cloneFlags(all enabled) = %#x, want %#x", got, want)
	}
}

func TestCloneFlagsNoneEnabled(t *testing.T) {
	if got := cloneFlags(config.Namespaces{}); got != 0 {
		t.Fatalf("cloneFlags(none) = %#x, want 0", got)
	}
}

func TestCloneFlagsSubset(t *testing.T) {
	ns := config.Namespaces{NewPID: true, NewUTS: true}
	want := uintptr(syscall.CLONE_NEWPID | syscall.CLONE_NEWUTS)
	if got := cloneFlags(ns); got != want {
		t.Fatalf("cloneFlags(pid+uts) = %#x, want %#x", got, want)
	}
}
