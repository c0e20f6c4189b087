// Package config defines the immutable jail configuration resolved from the
// command line, and the error type used to report problems found while
// resolving it.
package config

import "fmt"

// Mode selects how the supervisor drives the jail lifecycle.
type Mode string

const (
	// ModeListenTCP spawns one jailed child per accepted TCP connection.
	ModeListenTCP Mode = "listen_tcp"
	// ModeStandaloneOnce spawns a single jailed child against the
	// controlling terminal and exits once it has been reaped.
	ModeStandaloneOnce Mode = "standalone_once"
	// ModeStandaloneRerun behaves like ModeStandaloneOnce but respawns
	// forever once the roster drains, until a terminating signal arrives.
	ModeStandaloneRerun Mode = "standalone_rerun"
)

// PersonaFlag is one bit of the Linux personality(2) bitmask that the CLI
// surface exposes individually; JailConfig stores their OR as Personality.
type PersonaFlag uint

// Values match include/uapi/linux/personality.h; they are ORed together to
// form JailConfig.Personality.
const (
	PersonaAddrCompatLayout PersonaFlag = 0x0200000
	PersonaMmapPageZero     PersonaFlag = 0x0100000
	PersonaReadImpliesExec  PersonaFlag = 0x0400000
	PersonaAddrLimit3GB     PersonaFlag = 0x8000000
	PersonaAddrNoRandomize  PersonaFlag = 0x0040000
)

// Namespaces holds the per-namespace enable flags from spec §3. All default
// to enabled; the CLI surface exposes them as disable_clone_* flags.
type Namespaces struct {
	NewNet  bool
	NewUser bool
	NewNS   bool
	NewPID  bool
	NewIPC  bool
	NewUTS  bool
}

// Rlimits holds the seven resolved rlimit values from spec §3.
type Rlimits struct {
	AS     Rlimit
	Core   Rlimit
	CPU    Rlimit
	FSize  Rlimit
	NoFile Rlimit
	NProc  Rlimit
	Stack  Rlimit
}

// NetAttach describes an optional virtual network interface to be created
// in the host and moved into the child's network namespace (spec §4.6).
type NetAttach struct {
	// Kind is "macvtap" or "macvlan". Empty means no attachment requested.
	Kind string
	// SrcIface is the host interface the virtual link is layered over.
	SrcIface string
}

// JailConfig is the immutable set of jail parameters resolved from the CLI.
// Once built by the CLI front-end it is never mutated; every component that
// consumes it receives a copy or a pointer it must treat as read-only.
type JailConfig struct {
	Mode Mode

	ChrootPath string
	Hostname   string

	// Argv is the target command and its arguments. Always non-empty once
	// resolved (spec §3 invariant).
	Argv []string

	KeepEnv bool

	// UID/GID are resolved from name or numeric form before any child is
	// spawned (spec §3 invariant).
	UID int
	GID int

	Port          uint16
	MaxConnsPerIP uint

	// TimeLimitSeconds is the per-child wall-clock bound. Zero means
	// unlimited.
	TimeLimitSeconds uint64

	Daemonize bool
	Verbose   bool
	KeepCaps  bool
	RootRW    bool
	Silent    bool

	Namespaces Namespaces

	SeccompEnabled bool
	Personality    uint

	Rlimits Rlimits

	Net NetAttach

	BindMounts  []string
	TmpfsMounts []string

	// LogPath is where the log sink writes; empty means stderr.
	LogPath string
}

// Validate checks the invariants listed in spec §3 that do not require
// external resolution (uid/gid lookup happens separately, see Resolve*).
func (c *JailConfig) Validate() error {
	if len(c.Argv) == 0 {
		return &ConfigError{Flag: "--", Err: fmt.Errorf("missing target command after --")}
	}
	if c.Mode == ModeListenTCP && c.Port == 0 {
		return &ConfigError{Flag: "port", Err: fmt.Errorf("port must be in 1-65535 in listen mode")}
	}
	return nil
}

// ConfigError is returned for any problem discovered while resolving the
// CLI surface into a JailConfig: bad flags, unknown user/group, bad rlimit
// syntax, out-of-range port. It always names the offending flag so the CLI
// front-end can print one consistent diagnostic and exit non-zero before
// any child is spawned.
type ConfigError struct {
	Flag string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.Flag, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
