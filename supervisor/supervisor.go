//go:build linux

// Package supervisor implements the Supervisor (spec §4.3, C4): the state
// machine that orchestrates spawn, reap, time-limit enforcement, and
// shutdown across the three execution modes.
package supervisor

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff"

	"github.com/Afvanjaffer/nsjail/config"
	"github.com/Afvanjaffer/nsjail/listener"
	"github.com/Afvanjaffer/nsjail/logging"
	"github.com/Afvanjaffer/nsjail/roster"
)

// reapInterval is how often the supervisor services reap/time-limit
// enforcement outside of an accept/spawn event; it is the concrete
// stand-in for "accept is interruptible by SIGCHLD" from spec §5.
const reapInterval = 200 * time.Millisecond

// Supervisor drives the jail lifecycle for one JailConfig (spec §4.3).
type Supervisor struct {
	cfg     config.JailConfig
	log     *logging.Sink
	roster  *roster.Roster
	selfExe string
}

// New builds a Supervisor for cfg. It resolves the path to the running
// binary once, since every spawn re-execs this same image (spec §5).
func New(cfg config.JailConfig, log *logging.Sink) (*Supervisor, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("supervisor: resolve self executable: %w", err)
	}
	return &Supervisor{cfg: cfg, log: log, roster: roster.New(), selfExe: exe}, nil
}

// Run drives the configured mode to completion (spec §4.3 state machine).
func (s *Supervisor) Run(ctx context.Context) error {
	switch s.cfg.Mode {
	case config.ModeListenTCP:
		return s.runListenTCP(ctx)
	case config.ModeStandaloneOnce:
		return s.runStandalone(ctx, false)
	case config.ModeStandaloneRerun:
		return s.runStandalone(ctx, true)
	default:
		return fmt.Errorf("supervisor: unknown mode %q", s.cfg.Mode)
	}
}

func signalChan() chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	return ch
}

// runListenTCP implements spec §4.3's listen_tcp state machine.
func (s *Supervisor) runListenTCP(ctx context.Context) error {
	ln, err := listener.BindAndListen(s.cfg.Port)
	if err != nil {
		return err
	}
	defer ln.Close()

	acceptCh := make(chan listener.Result)
	acceptCtx, cancelAccept := context.WithCancel(ctx)
	defer cancelAccept()
	go ln.AcceptLoop(acceptCtx, acceptCh)

	sigCh := signalChan()
	ticker := time.NewTicker(reapInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return nil
		case sig := <-sigCh:
			s.log.Infof("received %s, shutting down", sig)
			s.shutdown()
			return nil
		case <-ticker.C:
			s.reapNonblocking()
			s.enforceTimeLimits()
		case res := <-acceptCh:
			s.reapNonblocking()
			s.enforceTimeLimits()
			if res.Err != nil {
				s.log.Warnf("accept: %v", res.Err)
				continue
			}
			s.handleTCPConn(res.Conn)
		}
	}
}

// shutdown implements spec §4.3 behavior on a terminating signal:
// kill_all followed by a best-effort drain of reaps.
func (s *Supervisor) shutdown() {
	s.killAll()
	deadline := time.Now().Add(2 * time.Second)
	for s.roster.Count() > 0 && time.Now().Before(deadline) {
		s.reapNonblocking()
		time.Sleep(20 * time.Millisecond)
	}
}

// runStandalone implements spec §4.3's standalone_once/standalone_rerun
// state machines. standalone_once spawns once and exits when the roster
// drains; standalone_rerun repeats until a terminating signal arrives.
func (s *Supervisor) runStandalone(ctx context.Context, rerun bool) error {
	sigCh := signalChan()
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0

	for {
		if ok := s.spawn(s.standaloneStdin(), s.standaloneStdout(), s.standaloneStderr(), [16]byte{}, roster.StandaloneRemote); !ok {
			// Parent-transient failure (spec §7): pace retries with the
			// teacher's backoff library rather than spinning the CPU.
			select {
			case <-time.After(bo.NextBackOff()):
			case <-ctx.Done():
				return nil
			case sig := <-sigCh:
				s.log.Infof("received %s, shutting down", sig)
				return nil
			}
			if !rerun {
				return fmt.Errorf("supervisor: failed to spawn child")
			}
			continue
		}
		bo.Reset()

		if err := s.drainUntilEmpty(ctx, sigCh); err != nil {
			return err
		}
		if !rerun {
			return nil
		}
	}
}

// drainUntilEmpty implements the reap_blocking_short/enforce_time_limits
// loop shared by both standalone modes (spec §4.3), returning when the
// roster empties or a terminating signal arrives.
func (s *Supervisor) drainUntilEmpty(ctx context.Context, sigCh chan os.Signal) error {
	for s.roster.Count() > 0 {
		select {
		case <-ctx.Done():
			s.shutdown()
			return context.Canceled
		case sig := <-sigCh:
			s.log.Infof("received %s, shutting down", sig)
			s.shutdown()
			return fmt.Errorf("supervisor: terminated by %s", sig)
		case <-time.After(reapInterval):
			s.reapNonblocking()
			s.enforceTimeLimits()
		}
	}
	return nil
}

func (s *Supervisor) standaloneStdin() *os.File {
	if s.cfg.Silent {
		return devNull()
	}
	return os.Stdin
}

func (s *Supervisor) standaloneStdout() *os.File {
	if s.cfg.Silent {
		return devNull()
	}
	return os.Stdout
}

func (s *Supervisor) standaloneStderr() *os.File {
	if s.cfg.Silent {
		return devNull()
	}
	return os.Stderr
}

func devNull() *os.File {
	f, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		// /dev/null is always expected to exist on a Linux-style kernel;
		// fall back to stderr rather than panicking.
		return os.Stderr
	}
	return f
}
