//go:build linux

package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/Afvanjaffer/nsjail/config"
)

// parseArgs builds a JailConfig from argv, matching the option table in
// spec §6 exactly: every pinned long flag is registered together with its
// pinned short alias, bound to the same variable, and every default below
// matches the table's Default column. A "--" separates nsjail's own flags
// from the target command and its arguments; everything after it is taken
// verbatim as Argv.
func parseArgs(argv []string) (config.JailConfig, string, error) {
	fs := flag.NewFlagSet("nsjail", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}

	var (
		mode     string
		chroot   string
		hostname string
		user     string
		group    string
		port     uint
		maxConns uint
		logPath  string

		timeLimit uint64

		keepEnv   bool
		keepCaps  bool
		rootRW    bool
		silent    bool
		daemonize bool
		verbose   bool
		help      bool
	)
	strPair := func(dst *string, long, short, def, usage string) {
		fs.StringVar(dst, long, def, usage)
		if short != "" {
			fs.StringVar(dst, short, def, usage+" (shorthand)")
		}
	}
	boolPair := func(dst *bool, long, short string, def bool, usage string) {
		fs.BoolVar(dst, long, def, usage)
		if short != "" {
			fs.BoolVar(dst, short, def, usage+" (shorthand)")
		}
	}

	strPair(&mode, "mode", "M", "l", `execution mode: "l" listen_tcp, "o" standalone_once, "r" standalone_rerun`)
	strPair(&chroot, "chroot", "c", "/chroot", "path to pivot_root/chroot into")
	strPair(&hostname, "hostname", "H", "NSJAIL", "hostname to set inside the UTS namespace")
	strPair(&user, "user", "u", "nobody", "uid or user name to run the target command as")
	strPair(&group, "group", "g", "nobody", "gid or group name to run the target command as")
	strPair(&logPath, "log", "l", "", "path to the log file (default: stderr)")

	fs.UintVar(&port, "port", 31337, "TCP port to listen on (listen_tcp mode only)")
	fs.UintVar(&port, "p", 31337, "TCP port to listen on (listen_tcp mode only) (shorthand)")
	fs.UintVar(&maxConns, "max_conns_per_ip", 0, "maximum concurrent jailed children per remote address (0 = unlimited)")
	fs.UintVar(&maxConns, "i", 0, "maximum concurrent jailed children per remote address (0 = unlimited) (shorthand)")
	fs.Uint64Var(&timeLimit, "time_limit", 600, "per-child wall-clock limit in seconds (0 = unlimited)")
	fs.Uint64Var(&timeLimit, "t", 600, "per-child wall-clock limit in seconds (0 = unlimited) (shorthand)")

	boolPair(&keepEnv, "keep_env", "e", false, "pass the supervisor's environment through to the child")
	fs.BoolVar(&keepCaps, "keep_caps", false, "do not drop all capabilities after switching identity")
	fs.BoolVar(&rootRW, "rw", false, "leave the new root filesystem writable")
	fs.BoolVar(&silent, "silent", false, "redirect standalone mode's child stdio to /dev/null")
	boolPair(&daemonize, "daemon", "d", false, "detach from the controlling terminal")
	boolPair(&verbose, "verbose", "v", false, "enable debug-level logging")
	fs.BoolVar(&help, "?", false, "print usage and exit (shorthand for -h)")

	var (
		disableNet     = fs.Bool("disable_clone_newnet", false, "do not create a new network namespace")
		disableNetN    = fs.Bool("N", false, "do not create a new network namespace (shorthand)")
		disableUser    = fs.Bool("disable_clone_newuser", false, "do not create a new user namespace")
		disableNS      = fs.Bool("disable_clone_newns", false, "do not create a new mount namespace")
		disablePID     = fs.Bool("disable_clone_newpid", false, "do not create a new pid namespace")
		disableIPC     = fs.Bool("disable_clone_newipc", false, "do not create a new ipc namespace")
		disableUTS     = fs.Bool("disable_clone_newuts", false, "do not create a new uts namespace")
		disableSandbox = fs.Bool("disable_sandbox", false, "do not install the seccomp-bpf filter")
		personaACL     = fs.Bool("persona_addr_compat_layout", false, "set the ADDR_COMPAT_LAYOUT personality bit")
		personaMmap    = fs.Bool("persona_mmap_page_zero", false, "set the MMAP_PAGE_ZERO personality bit")
		personaExec    = fs.Bool("persona_read_implies_exec", false, "set the READ_IMPLIES_EXEC personality bit")
		persona3GB     = fs.Bool("persona_addr_limit_3gb", false, "set the ADDR_LIMIT_3GB personality bit")
		personaNoRand  = fs.Bool("persona_addr_no_randomize", false, "set the ADDR_NO_RANDOMIZE personality bit")
		rlimitAS       = fs.String("rlimit_as", "def", "RLIMIT_AS in megabytes, \"max\", or \"def\"")
		rlimitCore     = fs.String("rlimit_core", "def", "RLIMIT_CORE in megabytes, \"max\", or \"def\"")
		rlimitCPU      = fs.String("rlimit_cpu", "def", "RLIMIT_CPU in seconds, \"max\", or \"def\"")
		rlimitFsize    = fs.String("rlimit_fsize", "def", "RLIMIT_FSIZE in megabytes, \"max\", or \"def\"")
		rlimitNofile   = fs.String("rlimit_nofile", "def", "RLIMIT_NOFILE as a count, \"max\", or \"def\"")
		rlimitNproc    = fs.String("rlimit_nproc", "def", "RLIMIT_NPROC as a count, \"max\", or \"def\"")
		rlimitStack    = fs.String("rlimit_stack", "def", "RLIMIT_STACK in megabytes, \"max\", or \"def\"")
		netMacvtap     = fs.String("net_macvtap", "", "host interface to attach a macvtap link over")
		netMacvlan     = fs.String("net_macvlan", "", "host interface to attach a macvlan link over")
	)
	bindmount := stringListAliased(fs, "bindmount", "B", "path to bind-mount read-only at the same path inside the new root, may repeat")
	tmpfsmount := stringListAliased(fs, "tmpfsmount", "T", "path to mount a tmpfs on inside the new root, may repeat")

	split := splitArgs(argv)
	if err := fs.Parse(split.jailArgs); err != nil {
		return config.JailConfig{}, usageText, err
	}
	if help {
		return config.JailConfig{}, usageText, flag.ErrHelp
	}
	if port > 65535 {
		return config.JailConfig{}, usageText, &config.ConfigError{Flag: "port", Err: fmt.Errorf("port %d out of range 1-65535", port)}
	}

	cfg := config.JailConfig{
		ChrootPath:       chroot,
		Hostname:         hostname,
		Argv:             split.targetArgv,
		KeepEnv:          keepEnv,
		Port:             uint16(port),
		MaxConnsPerIP:    maxConns,
		TimeLimitSeconds: timeLimit,
		Daemonize:        daemonize,
		Verbose:          verbose,
		KeepCaps:         keepCaps,
		RootRW:           rootRW,
		Silent:           silent,
		LogPath:          logPath,
		Namespaces: config.Namespaces{
			NewNet:  !*disableNet && !*disableNetN,
			NewUser: !*disableUser,
			NewNS:   !*disableNS,
			NewPID:  !*disablePID,
			NewIPC:  !*disableIPC,
			NewUTS:  !*disableUTS,
		},
		SeccompEnabled: !*disableSandbox,
		BindMounts:     *bindmount,
		TmpfsMounts:    *tmpfsmount,
	}

	switch mode {
	case "l":
		cfg.Mode = config.ModeListenTCP
	case "o":
		cfg.Mode = config.ModeStandaloneOnce
	case "r":
		cfg.Mode = config.ModeStandaloneRerun
	default:
		return config.JailConfig{}, usageText, &config.ConfigError{Flag: "mode", Err: fmt.Errorf("unknown mode %q, want l/o/r", mode)}
	}

	var persona uint
	if *personaACL {
		persona |= uint(config.PersonaAddrCompatLayout)
	}
	if *personaMmap {
		persona |= uint(config.PersonaMmapPageZero)
	}
	if *personaExec {
		persona |= uint(config.PersonaReadImpliesExec)
	}
	if *persona3GB {
		persona |= uint(config.PersonaAddrLimit3GB)
	}
	if *personaNoRand {
		persona |= uint(config.PersonaAddrNoRandomize)
	}
	cfg.Personality = persona

	rlimits, err := parseRlimits(*rlimitAS, *rlimitCore, *rlimitCPU, *rlimitFsize, *rlimitNofile, *rlimitNproc, *rlimitStack)
	if err != nil {
		return config.JailConfig{}, usageText, err
	}
	cfg.Rlimits = rlimits

	if *netMacvtap != "" && *netMacvlan != "" {
		return config.JailConfig{}, usageText, &config.ConfigError{Flag: "net", Err: fmt.Errorf("net_macvtap and net_macvlan are mutually exclusive")}
	}
	switch {
	case *netMacvtap != "":
		cfg.Net = config.NetAttach{Kind: "macvtap", SrcIface: *netMacvtap}
	case *netMacvlan != "":
		cfg.Net = config.NetAttach{Kind: "macvlan", SrcIface: *netMacvlan}
	}

	uid, err := config.ResolveUser(user)
	if err != nil {
		return config.JailConfig{}, usageText, err
	}
	cfg.UID = uid
	gid, err := config.ResolveGroup(group)
	if err != nil {
		return config.JailConfig{}, usageText, err
	}
	cfg.GID = gid

	if err := cfg.Validate(); err != nil {
		return config.JailConfig{}, usageText, err
	}
	return cfg, usageText, nil
}

type rlimitArg struct {
	flag string
	s    string
	dst  *config.Rlimit
}

func parseRlimits(as, core, cpu, fsize, nofile, nproc, stack string) (config.Rlimits, error) {
	var out config.Rlimits
	for _, v := range []rlimitArg{
		{"rlimit_as", as, &out.AS},
		{"rlimit_core", core, &out.Core},
		{"rlimit_cpu", cpu, &out.CPU},
		{"rlimit_fsize", fsize, &out.FSize},
		{"rlimit_nofile", nofile, &out.NoFile},
		{"rlimit_nproc", nproc, &out.NProc},
		{"rlimit_stack", stack, &out.Stack},
	} {
		r, err := config.ParseRlimit(v.s)
		if err != nil {
			return config.Rlimits{}, &config.ConfigError{Flag: v.flag, Err: err}
		}
		*v.dst = r
	}
	return out, nil
}

// stringListAliased registers a repeatable string flag (spec §6's bindmount
// and tmpfsmount options, which may each appear more than once) under both
// its long name and its pinned short alias, appending to one shared slice
// regardless of which spelling the caller used.
func stringListAliased(fs *flag.FlagSet, long, short, usage string) *[]string {
	var values []string
	collect := func(v string) error {
		values = append(values, v)
		return nil
	}
	fs.Func(long, usage, collect)
	fs.Func(short, usage+" (shorthand)", collect)
	return &values
}

type splitResult struct {
	jailArgs   []string
	targetArgv []string
}

// splitArgs separates nsjail's own flags from the target command's argv at
// the first bare "--", per spec §6.
func splitArgs(argv []string) splitResult {
	for i, a := range argv {
		if a == "--" {
			return splitResult{jailArgs: argv[:i], targetArgv: argv[i+1:]}
		}
	}
	return splitResult{jailArgs: argv}
}

const usageText = `nsjail: run a command inside a process jail (namespaces, filesystem containment, privilege drop, rlimits, optional seccomp and virtual networking).

Usage:
  nsjail [options] -- command [args...]

Modes (--mode/-M):
  l   listen_tcp: bind a TCP port, spawn one jailed child per connection (default)
  o   standalone_once: spawn once against the controlling terminal
  r   standalone_rerun: like standalone_once, but respawn until killed

Common flags (long / short / default):
  --mode / -M l            --chroot / -c /chroot     --user / -u nobody
  --group / -g nobody      --hostname / -H NSJAIL     --port / -p 31337
  --max_conns_per_ip / -i 0   --log / -l stderr       --time_limit / -t 600
  --daemon / -d false       --verbose / -v false      --keep_env / -e false
  --bindmount / -B (repeatable)   --tmpfsmount / -T (repeatable)
  --disable_clone_newnet / -N false

Run with -h or -? to see this text again. See the option list in source for
the full set of --rlimit_*, --disable_clone_*, --persona_*, --net_* flags.
`
