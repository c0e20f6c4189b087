//go:build linux

package jail

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

const oldRootDirName = ".old_root"

// mountFilesystem performs the ordered mount/pivot sequence from spec
// §4.4 step 3. It is only called when newns was requested.
func mountFilesystem(chroot string, binds, tmpfs []string, rootRW bool) error {
	// Make our view of all mounts private first, so none of the following
	// operations propagate back to the host's mount namespace.
	if err := unix.Mount("", "/", "", unix.MS_REC|unix.MS_PRIVATE, ""); err != nil {
		return fmt.Errorf("mount / private: %w", err)
	}

	// Bind-mount the chroot source onto itself so it becomes a mount point,
	// which pivot_root requires.
	if err := unix.Mount(chroot, chroot, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
		return fmt.Errorf("bind mount chroot source %q: %w", chroot, err)
	}

	for _, src := range binds {
		dst := filepath.Join(chroot, src)
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return fmt.Errorf("mkdir bind target %q: %w", dst, err)
		}
		if err := unix.Mount(src, dst, "", unix.MS_BIND|unix.MS_REC, ""); err != nil {
			return fmt.Errorf("bind mount %q -> %q: %w", src, dst, err)
		}
		if err := unix.Mount("", dst, "", unix.MS_BIND|unix.MS_REMOUNT|unix.MS_RDONLY|unix.MS_REC, ""); err != nil {
			return fmt.Errorf("remount bind %q read-only: %w", dst, err)
		}
	}

	for _, target := range tmpfs {
		dst := filepath.Join(chroot, target)
		if err := os.MkdirAll(dst, 0o755); err != nil {
			return fmt.Errorf("mkdir tmpfs target %q: %w", dst, err)
		}
		if err := unix.Mount("tmpfs", dst, "tmpfs", 0, ""); err != nil {
			return fmt.Errorf("mount tmpfs at %q: %w", dst, err)
		}
	}

	if !rootRW {
		if err := unix.Mount("", chroot, "", unix.MS_BIND|unix.MS_REMOUNT|unix.MS_RDONLY|unix.MS_REC, ""); err != nil {
			return fmt.Errorf("remount chroot read-only: %w", err)
		}
	}

	oldRoot := filepath.Join(chroot, oldRootDirName)
	if err := os.MkdirAll(oldRoot, 0o700); err != nil {
		return fmt.Errorf("mkdir pivot_root putold %q: %w", oldRoot, err)
	}
	if err := unix.PivotRoot(chroot, oldRoot); err != nil {
		return fmt.Errorf("pivot_root(%q, %q): %w", chroot, oldRoot, err)
	}
	if err := unix.Chdir("/"); err != nil {
		return fmt.Errorf("chdir /: %w", err)
	}
	oldRootAfterPivot := "/" + oldRootDirName
	if err := unix.Unmount(oldRootAfterPivot, unix.MNT_DETACH); err != nil {
		return fmt.Errorf("unmount old root %q: %w", oldRootAfterPivot, err)
	}
	// Best-effort cleanup of the now-empty mountpoint directory; its
	// presence does not affect containment.
	_ = os.Remove(oldRootAfterPivot)

	return nil
}
