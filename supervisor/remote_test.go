//go:build linux

package supervisor

import (
	"net"
	"testing"
)

func TestRemoteOfIPv4MappedForm(t *testing.T) {
	conn := fakeConn{addr: &net.TCPAddr{IP: net.ParseIP("203.0.113.7"), Port: 4242}}
	addr, text := remoteOf(conn)

	want := net.ParseIP("203.0.113.7").To16()
	for i := range want {
		if addr[i] != want[i] {
			t.Fatalf("remoteOf address byte %d = %#x, want %#x", i, addr[i], want[i])
		}
	}
	if text == "" {
		t.Fatal("remoteOf returned empty text form")
	}
}

func TestRemoteOfNonTCPFallsBackToString(t *testing.T) {
	conn := fakeConn{addr: fakeAddr("unix:/tmp/sock")}
	addr, text := remoteOf(conn)
	if addr != ([16]byte{}) {
		t.Fatalf("remoteOf non-TCP addr = %v, want zero value", addr)
	}
	if text != "unix:/tmp/sock" {
		t.Fatalf("remoteOf non-TCP text = %q, want %q", text, "unix:/tmp/sock")
	}
}

type fakeAddr string

func (a fakeAddr) Network() string { return "fake" }
func (a fakeAddr) String() string  { return string(a) }

type fakeConn struct {
	net.Conn
	addr net.Addr
}

func (f fakeConn) RemoteAddr() net.Addr { return f.addr }
