//go:build linux

// Package netattach creates the optional virtual network interface and
// moves it into a child's network namespace (spec §4.6, C7). Built on
// vishvananda/netlink, already a dependency of the teacher this rewrite is
// grounded on.
package netattach

import (
	"fmt"

	"github.com/vishvananda/netlink"
)

// Kind selects which virtual link type to create.
type Kind string

const (
	KindMacvtap Kind = "macvtap"
	KindMacvlan Kind = "macvlan"
)

const (
	macvtapName = "vt0"
	macvlanName = "vl0"
)

// Attach creates a virtual link of the given kind whose master is
// srcIface, names it vt0 (macvtap) or vl0 (macvlan), and moves it into the
// network namespace of childPid. Failure is non-fatal to the child; the
// caller only logs it (spec §4.6).
//
// The error message on a macvlan attach failure historically referenced
// "macvtap" in the tool this rewrite is modeled on; that was cosmetic
// (spec §9) and is not reproduced here.
func Attach(kind Kind, srcIface string, childPid int) error {
	master, err := netlink.LinkByName(srcIface)
	if err != nil {
		return fmt.Errorf("net attach: lookup master iface %q: %w", srcIface, err)
	}

	var link netlink.Link
	switch kind {
	case KindMacvtap:
		link = &netlink.Macvtap{
			Macvlan: netlink.Macvlan{
				LinkAttrs: netlink.LinkAttrs{
					Name:        macvtapName,
					ParentIndex: master.Attrs().Index,
				},
				Mode: netlink.MACVLAN_MODE_BRIDGE,
			},
		}
	case KindMacvlan:
		link = &netlink.Macvlan{
			LinkAttrs: netlink.LinkAttrs{
				Name:        macvlanName,
				ParentIndex: master.Attrs().Index,
			},
			Mode: netlink.MACVLAN_MODE_BRIDGE,
		}
	default:
		return fmt.Errorf("net attach: unknown link kind %q", kind)
	}

	if err := netlink.LinkAdd(link); err != nil {
		return fmt.Errorf("net attach: create %s link over %q: %w", kind, srcIface, err)
	}
	if err := netlink.LinkSetNsPid(link, childPid); err != nil {
		return fmt.Errorf("net attach: move %s link into pid %d netns: %w", kind, childPid, err)
	}
	return nil
}
