//go:build linux

package jail

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// applyPersonality sets the process's personality(2) bitmask, the OR of
// whichever persona flags were enabled on the command line (spec §4.4
// step 1, §8 "Personality bits").
func applyPersonality(mask uint) error {
	if mask == 0 {
		return nil
	}
	if _, _, errno := unix.Syscall(unix.SYS_PERSONALITY, uintptr(mask), 0, 0); errno != 0 {
		return fmt.Errorf("personality(0x%x): %w", mask, errno)
	}
	return nil
}
