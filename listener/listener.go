//go:build linux

// Package listener implements the TCP listener collaborator (spec §4.1,
// C2): binds an IPv6 wildcard socket and yields per-connection stdio.
//
// The original accept() is meant to be interrupted by EINTR so that the
// supervisor's reap/time-limit pass runs promptly (spec §5). Go's runtime
// poller already retries interrupted syscalls internally, so there is no
// EINTR to observe at this layer; instead, per the rewrite hint in spec §9
// ("prefer a signal-safe self-pipe... this is an improvement, not a
// behavioral change"), Accept runs on its own goroutine and feeds a
// channel that the supervisor selects on alongside its reap ticker and
// signal channel. That selection is exactly equivalent to "accept()
// returns control to the loop periodically so reap can run".
package listener

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// Result is one accept() outcome delivered to the supervisor.
type Result struct {
	Conn net.Conn
	Err  error
}

// Listener wraps the bound IPv6 listen socket.
type Listener struct {
	ln net.Listener
}

// BindAndListen opens an IPv6 stream socket with SO_REUSEADDR, binds the
// wildcard address on port, and begins listening with the kernel's default
// (maximum) backlog. Failure here is fatal to the process (spec §4.1).
func BindAndListen(port uint16) (*Listener, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var sockErr error
			if err := c.Control(func(fd uintptr) {
				sockErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			}); err != nil {
				return err
			}
			return sockErr
		},
	}
	ln, err := lc.Listen(context.Background(), "tcp6", fmt.Sprintf(":%d", port))
	if err != nil {
		return nil, fmt.Errorf("bind_and_listen on port %d: %w", port, err)
	}
	return &Listener{ln: ln}, nil
}

// AcceptLoop accepts connections until ctx is cancelled or the listener is
// closed, delivering each Result on out. It is meant to run on its own
// goroutine; the supervisor consumes out in its select loop.
func (l *Listener) AcceptLoop(ctx context.Context, out chan<- Result) {
	for {
		conn, err := l.ln.Accept()
		select {
		case out <- Result{Conn: conn, Err: err}:
		case <-ctx.Done():
			if conn != nil {
				conn.Close()
			}
			return
		}
		if errors.Is(err, net.ErrClosed) {
			return
		}
	}
}

// Close closes the listen socket.
func (l *Listener) Close() error { return l.ln.Close() }

// Cork sets TCP_CORK on conn to hold back outgoing writes until the jailed
// child is ready to produce output. Failure is logged by the caller, never
// fatal (spec §4.1).
func Cork(conn net.Conn) error {
	tc, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}
	raw, err := tc.SyscallConn()
	if err != nil {
		return err
	}
	var sockErr error
	if err := raw.Control(func(fd uintptr) {
		sockErr = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_CORK, 1)
	}); err != nil {
		return err
	}
	return sockErr
}
