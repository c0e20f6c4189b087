//go:build linux

// Package seccomp implements the Sandbox collaborator of spec §6 as
// Apply() -> bool, which installs a seccomp-bpf program. Apply takes no
// configuration: the filter is always the fixed denylist below. The exact filter
// program is explicitly out of scope for the core (spec §1); this package
// supplies a reasonable default denylist and the libseccomp-golang binding
// the examples' broader container-tooling corpus (apptainer, snapd,
// sysbox) standardizes on for this exact job.
package seccomp

import (
	seccomp "github.com/seccomp/libseccomp-golang"
)

// denylist is a small set of syscalls with no legitimate use inside a
// jailed child: they either re-gain privilege, escape containment, or
// affect the host outside the namespaces already applied.
var denylist = []string{
	"ptrace",
	"mount",
	"umount2",
	"reboot",
	"kexec_load",
	"kexec_file_load",
	"add_key",
	"request_key",
	"keyctl",
	"acct",
	"swapon",
	"swapoff",
	"pivot_root",
	"open_by_handle_at",
}

// Apply installs the default-allow-with-denylist seccomp-bpf program. It
// is invoked last among the containment steps (spec §4.4 step 7) so that
// every syscall the earlier steps themselves needed has already run.
func Apply() bool {
	filter, err := seccomp.NewFilter(seccomp.ActAllow)
	if err != nil {
		return false
	}
	defer filter.Release()

	if err := filter.SetBadArchAction(seccomp.ActKill); err != nil {
		return false
	}

	for _, name := range denylist {
		call, err := seccomp.GetSyscallFromName(name)
		if err != nil {
			// Not every syscall exists on every architecture/libseccomp
			// version; skip rather than fail the whole filter.
			continue
		}
		if err := filter.AddRule(call, seccomp.ActErrno); err != nil {
			return false
		}
	}

	if err := filter.Load(); err != nil {
		return false
	}
	return true
}
