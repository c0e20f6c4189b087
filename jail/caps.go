//go:build linux

package jail

import (
	"fmt"
	"syscall"

	"github.com/syndtr/gocapability/capability"
)

// switchIdentity performs the gid-then-uid switch and capability drop from
// spec §4.4 step 4. Gid is switched before uid because once uid 0 is
// dropped the process may no longer be able to change its gid.
func switchIdentity(uid, gid int, keepCaps bool) error {
	if err := syscall.Setresgid(gid, gid, gid); err != nil {
		return fmt.Errorf("setresgid(%d): %w", gid, err)
	}
	if err := syscall.Setresuid(uid, uid, uid); err != nil {
		return fmt.Errorf("setresuid(%d): %w", uid, err)
	}
	if keepCaps {
		return nil
	}
	return dropAllCapabilities()
}

func dropAllCapabilities() error {
	caps, err := capability.NewPid2(0)
	if err != nil {
		return fmt.Errorf("capability.NewPid2: %w", err)
	}
	if err := caps.Load(); err != nil {
		return fmt.Errorf("capability.Load: %w", err)
	}
	caps.Clear(capability.CAPS)
	if err := caps.Apply(capability.CAPS); err != nil {
		return fmt.Errorf("capability.Apply: %w", err)
	}
	return nil
}
