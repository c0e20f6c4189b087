//go:build linux

// Package jail implements the Child builder (spec §4.4, C5): the ordered
// sequence of containment steps that runs inside the freshly cloned
// process and never returns on success.
//
// Go cannot safely continue running arbitrary Go code between fork and
// exec (the runtime's own goroutines, GC, and locks are not fork-safe), so
// this sequence does not run in a bare forked child. Instead the
// Supervisor re-execs this same binary into a hidden "initjail" mode
// (spec §5, §9's "child is a pure function" note, concretized in
// SPEC_FULL.md §5): Run is that pure function. It receives its
// parameters over a pipe rather than closing over any parent state.
package jail

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/Afvanjaffer/nsjail/config"
	"github.com/Afvanjaffer/nsjail/seccomp"
	"golang.org/x/sys/unix"
)

// Params is everything the re-exec'd child process needs, serialized
// across the clone/exec boundary. It contains no live parent state.
type Params struct {
	Config config.JailConfig
}

// ReadParams reads and decodes Params from configFD, then closes it. The
// fd is donated via exec.Cmd.ExtraFiles by the supervisor and has no
// further use afterwards.
func ReadParams(configFD int) (Params, error) {
	f := os.NewFile(uintptr(configFD), "jail-params")
	defer f.Close()
	b, err := io.ReadAll(f)
	if err != nil {
		return Params{}, fmt.Errorf("read jail params: %w", err)
	}
	var p Params
	if err := json.Unmarshal(b, &p); err != nil {
		return Params{}, fmt.Errorf("decode jail params: %w", err)
	}
	return p, nil
}

// EncodeParams serializes p for transmission to the re-exec'd child. Used
// by the supervisor before it starts the clone.
func EncodeParams(p Params) ([]byte, error) {
	return json.Marshal(p)
}

// Run performs the ordered containment sequence of spec §4.4 and then
// execs the target program. It only returns on failure; the caller (the
// initjail entrypoint) must treat any return as fatal and exit 1, exactly
// matching "any failure terminates the child with exit status 1" and
// "failure to exec terminates the child".
func Run(p Params, logFD int) error {
	cfg := p.Config
	logw := os.NewFile(uintptr(logFD), "log-pipe")

	step := func(name string, err error) error {
		if err != nil {
			fmt.Fprintf(logw, "containment step %q failed: %v\n", name, err)
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}

	// Step 1: prepare environment.
	if cfg.Namespaces.NewUTS {
		if err := step("sethostname", unix.Sethostname([]byte(cfg.Hostname))); err != nil {
			return err
		}
	}
	if err := step("personality", applyPersonality(cfg.Personality)); err != nil {
		return err
	}

	// Step 2: file descriptors. Stdin/out/err (or /dev/null, if silent)
	// were already placed at fd 0/1/2 by the supervisor's exec.Cmd before
	// Start; nothing further is required here.

	// Step 3: mount filesystem.
	if cfg.Namespaces.NewNS {
		if err := step("mount", mountFilesystem(cfg.ChrootPath, cfg.BindMounts, cfg.TmpfsMounts, cfg.RootRW)); err != nil {
			return err
		}
	}

	// Step 4: drop privileges. The uid_map/gid_map for a new user namespace
	// is already written by the supervisor's exec.Cmd (SysProcAttr.UidMappings/
	// GidMappings, set in supervisor.spawn) before this process's own code
	// ever runs, so there is nothing left to do here for that part of step 4.
	if err := step("switch_identity", switchIdentity(cfg.UID, cfg.GID, cfg.KeepCaps)); err != nil {
		return err
	}

	// Step 5: resource limits.
	if err := step("rlimits", applyRlimits(cfg.Rlimits)); err != nil {
		return err
	}

	// Step 6: close-on-exec for every inherited descriptor above 2,
	// including the log pipe itself. Marking it close-on-exec (rather than
	// closing it outright) lets it stay open and writable through step 7,
	// then closes automatically the moment step 8's exec succeeds — that
	// closure is exactly the EOF the parent's drain loop is waiting for.
	if err := step("cloexec_sweep", closeExecAboveStdio()); err != nil {
		return err
	}

	// Step 7: seccomp, intentionally last among the mutating steps so it
	// cannot block anything the steps above still needed.
	if cfg.SeccompEnabled {
		if !seccomp.Apply() {
			return step("seccomp", fmt.Errorf("failed to install seccomp-bpf filter"))
		}
	}

	// Step 8: exec. Marking the log pipe close-on-exec (done as part of
	// the sweep above) means this call closes it, which is what lets the
	// parent's drain loop observe EOF.
	path, err := exec.LookPath(cfg.Argv[0])
	if err != nil {
		return step("exec_lookup", err)
	}
	env := []string{}
	if cfg.KeepEnv {
		env = os.Environ()
	}
	return step("exec", unix.Exec(path, cfg.Argv, env))
}

// closeExecAboveStdio marks every open file descriptor above 2 as
// close-on-exec, per spec §4.4 step 6. This includes the log pipe: the
// descriptor itself stays open (writable) until the process actually
// execs, at which point the kernel closes it for us.
func closeExecAboveStdio() error {
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		return fmt.Errorf("list /proc/self/fd: %w", err)
	}
	for _, ent := range entries {
		var fd int
		if _, err := fmt.Sscanf(ent.Name(), "%d", &fd); err != nil {
			continue
		}
		if fd <= 2 {
			continue
		}
		unix.CloseOnExec(fd)
	}
	return nil
}
