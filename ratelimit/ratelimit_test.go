package ratelimit

import (
	"testing"

	"github.com/Afvanjaffer/nsjail/roster"
)

func addr(b byte) [16]byte {
	var a [16]byte
	a[15] = b
	return a
}

func TestAllowUnlimitedWhenCapZero(t *testing.T) {
	snap := []roster.Record{{RemoteAddr: addr(1)}, {RemoteAddr: addr(1)}, {RemoteAddr: addr(1)}}
	if !Allow(addr(1), snap, 0) {
		t.Error("Allow with cap=0 returned false, want true regardless of count")
	}
}

func TestAllowUnderCap(t *testing.T) {
	snap := []roster.Record{{RemoteAddr: addr(1)}}
	if !Allow(addr(1), snap, 2) {
		t.Error("Allow(1 existing, cap 2) = false, want true")
	}
}

func TestAllowAtCapRejects(t *testing.T) {
	snap := []roster.Record{{RemoteAddr: addr(1)}, {RemoteAddr: addr(1)}}
	if Allow(addr(1), snap, 2) {
		t.Error("Allow(2 existing, cap 2) = true, want false")
	}
}

func TestAllowCountsOnlyMatchingAddr(t *testing.T) {
	snap := []roster.Record{{RemoteAddr: addr(1)}, {RemoteAddr: addr(1)}, {RemoteAddr: addr(2)}}
	if !Allow(addr(2), snap, 2) {
		t.Error("Allow for addr(2) with only 1 existing entry = false, want true")
	}
}

func TestAllowByteExactIPv4MappedDistinctFromIPv6(t *testing.T) {
	var mapped [16]byte
	copy(mapped[:12], []byte{0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0xff, 0xff})
	mapped[15] = 1
	snap := []roster.Record{{RemoteAddr: mapped}}
	if !Allow(addr(1), snap, 1) {
		t.Error("a plain-form address incorrectly matched an IPv4-mapped address with the same trailing byte")
	}
}
