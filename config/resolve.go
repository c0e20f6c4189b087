package config

import (
	"fmt"
	"os/user"
	"strconv"
)

// ResolveUser resolves a --user value (name or numeric uid) to a uid. It is
// called once at startup, before any child is spawned, satisfying the
// JailConfig invariant in spec §3.
func ResolveUser(s string) (int, error) {
	if uid, err := strconv.Atoi(s); err == nil {
		return uid, nil
	}
	u, err := user.Lookup(s)
	if err != nil {
		return 0, &ConfigError{Flag: "user", Err: err}
	}
	uid, err := strconv.Atoi(u.Uid)
	if err != nil {
		return 0, &ConfigError{Flag: "user", Err: fmt.Errorf("unparseable uid %q for user %q", u.Uid, s)}
	}
	return uid, nil
}

// ResolveGroup resolves a --group value (name or numeric gid) to a gid.
func ResolveGroup(s string) (int, error) {
	if gid, err := strconv.Atoi(s); err == nil {
		return gid, nil
	}
	g, err := user.LookupGroup(s)
	if err != nil {
		return 0, &ConfigError{Flag: "group", Err: err}
	}
	gid, err := strconv.Atoi(g.Gid)
	if err != nil {
		return 0, &ConfigError{Flag: "group", Err: fmt.Errorf("unparseable gid %q for group %q", g.Gid, s)}
	}
	return gid, nil
}
