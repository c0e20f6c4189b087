//go:build linux

package jail

// InitSubcommand is the hidden argv[1] that tells main() to run as the
// re-exec'd Child builder instead of the ordinary CLI front-end (spec §5,
// SPEC_FULL.md §5 "two-stage self-re-exec").
const InitSubcommand = "initjail"

// ConfigFD and LogFD are the fixed descriptor numbers the initjail
// subcommand expects its donated files at, counting from the first slot
// after stdio (exec.Cmd.ExtraFiles places entry i at fd 3+i).
const (
	ConfigFD = 3
	LogFD    = 4
)
