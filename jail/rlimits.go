//go:build linux

package jail

import (
	"fmt"

	"github.com/Afvanjaffer/nsjail/config"
	"golang.org/x/sys/unix"
)

// rlimitResource pairs a config.Rlimits field accessor's name with the
// kernel RLIMIT_* constant it maps to (spec §4.4 step 5).
var rlimitResource = []struct {
	name string
	rlim int
}{
	{"as", unix.RLIMIT_AS},
	{"core", unix.RLIMIT_CORE},
	{"cpu", unix.RLIMIT_CPU},
	{"fsize", unix.RLIMIT_FSIZE},
	{"nofile", unix.RLIMIT_NOFILE},
	{"nproc", unix.RLIMIT_NPROC},
	{"stack", unix.RLIMIT_STACK},
}

// applyRlimits applies each of the seven configured rlimits in turn (spec
// §4.4 step 5, §8 "Rlimit resolution"). It must run before the
// close-on-exec pass (step 6) since RLIMIT_NOFILE could otherwise
// invalidate descriptors the builder still needs (spec §4.4 rationale).
func applyRlimits(limits config.Rlimits) error {
	values := map[string]config.Rlimit{
		"as":     limits.AS,
		"core":   limits.Core,
		"cpu":    limits.CPU,
		"fsize":  limits.FSize,
		"nofile": limits.NoFile,
		"nproc":  limits.NProc,
		"stack":  limits.Stack,
	}
	for _, res := range rlimitResource {
		v := values[res.name]
		if v.Kind == config.RlimitDef {
			// Keep the current soft limit: nothing to do.
			continue
		}
		var cur unix.Rlimit
		if err := unix.Getrlimit(res.rlim, &cur); err != nil {
			return fmt.Errorf("getrlimit(%s): %w", res.name, err)
		}
		resolved := v.Resolve(res.name, cur.Max, cur.Cur)
		newLim := unix.Rlimit{Cur: resolved, Max: resolved}
		if err := unix.Setrlimit(res.rlim, &newLim); err != nil {
			return fmt.Errorf("setrlimit(%s, %d): %w", res.name, resolved, err)
		}
	}
	return nil
}
