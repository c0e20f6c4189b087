//go:build linux

package supervisor

import (
	"net"

	"github.com/Afvanjaffer/nsjail/listener"
	"github.com/Afvanjaffer/nsjail/ratelimit"
)

// handleTCPConn implements the accept-side half of spec §4.3's listen_tcp
// loop: apply the per-remote-address cap (spec §4.2), and on acceptance,
// hand the connection's own fd to spawn as the child's stdin/stdout/stderr.
func (s *Supervisor) handleTCPConn(conn net.Conn) {
	addr, text := remoteOf(conn)

	if !ratelimit.Allow(addr, s.roster.Snapshot(), s.cfg.MaxConnsPerIP) {
		s.log.WithField("remote", text).Warn("connection rejected: max_conns_per_ip exceeded")
		conn.Close()
		return
	}

	if err := listener.Cork(conn); err != nil {
		s.log.WithField("remote", text).Warnf("cork: %v", err)
	}

	tc, ok := conn.(*net.TCPConn)
	if !ok {
		s.log.WithField("remote", text).Warn("connection is not a TCP connection, dropping")
		conn.Close()
		return
	}
	f, err := tc.File()
	if err != nil {
		s.log.WithField("remote", text).Warnf("obtain connection fd: %v", err)
		conn.Close()
		return
	}
	// tc.File() dup()s the descriptor, so the original conn can be closed
	// right away; the dup alone is handed to the child as its stdio.
	conn.Close()

	if ok := s.spawn(f, f, f, addr, text); !ok {
		s.log.WithField("remote", text).Warn("spawn failed for accepted connection")
	}
	f.Close()
}
