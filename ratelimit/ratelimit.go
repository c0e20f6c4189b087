// Package ratelimit implements the per-remote-IP concurrency cap (spec §4.2).
package ratelimit

import "github.com/Afvanjaffer/nsjail/roster"

// Allow reports whether a new child may be admitted for remoteAddr given
// the current roster snapshot and cap. A cap of 0 means unlimited. IPv6
// addresses and IPv4-mapped IPv6 addresses compare by their full 16-byte
// form; there is no netmask coalescing (spec §4.2, §9).
func Allow(remoteAddr [16]byte, snapshot []roster.Record, cap uint) bool {
	if cap == 0 {
		return true
	}
	var count uint
	for _, rec := range snapshot {
		if rec.RemoteAddr == remoteAddr {
			count++
		}
	}
	return count < cap
}
