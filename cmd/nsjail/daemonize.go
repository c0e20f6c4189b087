//go:build linux

package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"
)

// nsjailDaemonizedEnv marks the re-exec'd copy of this process as already
// detached, so it does not try to daemonize itself again.
const nsjailDaemonizedEnv = "NSJAIL_DAEMONIZED=1"

// daemonize implements the --daemon flag (spec §6): detach from the
// controlling terminal by re-execing this binary with the same argv into a
// new session, with stdio redirected to /dev/null, then exiting the
// original foreground process. It returns true in the process that should
// continue running as the supervisor (the detached child or, if
// daemonizing itself failed, the original process as a fallback).
func daemonize() bool {
	if os.Getenv("NSJAIL_DAEMONIZED") == "1" {
		return true
	}
	exe, err := os.Executable()
	if err != nil {
		fmt.Fprintf(os.Stderr, "nsjail: daemonize: resolve self executable: %v\n", err)
		return true
	}
	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "nsjail: daemonize: open /dev/null: %v\n", err)
		return true
	}
	defer devNull.Close()

	cmd := exec.Command(exe, os.Args[1:]...)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = devNull, devNull, devNull
	cmd.Env = append(os.Environ(), nsjailDaemonizedEnv)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "nsjail: daemonize: %v\n", err)
		return true
	}
	return false
}
