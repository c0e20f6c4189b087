//go:build linux

package supervisor

import (
	"syscall"
	"time"
)

// reapNonblocking implements spec §4.3 reap_nonblocking: drain every
// exited child currently reapable without blocking, removing its roster
// record and logging its termination cause. Unknown pids are logged and
// ignored, per spec §4.3 and the idempotence property in spec §8.
func (s *Supervisor) reapNonblocking() {
	for {
		var status syscall.WaitStatus
		pid, err := syscall.Wait4(-1, &status, syscall.WNOHANG, nil)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			// ECHILD (no children left) or any other error: nothing more
			// to reap right now.
			return
		}
		if pid <= 0 {
			return
		}
		if removed := s.roster.Remove(pid); !removed {
			s.log.WithField("pid", pid).Warn("reaped unknown pid")
			continue
		}
		switch {
		case status.Exited():
			s.log.WithField("pid", pid).Infof("child exited with status %d", status.ExitStatus())
		case status.Signaled():
			s.log.WithField("pid", pid).Infof("child terminated by signal %d", status.Signal())
		default:
			s.log.WithField("pid", pid).Infof("child reaped, status %v", status)
		}
	}
}

// enforceTimeLimits implements spec §4.3 enforce_time_limits: any child
// whose wall-clock age has reached the configured time limit is sent
// SIGCONT (in case it is stopped) followed by SIGKILL. The record itself
// is left in the roster; the next reap pass removes it (spec §4.3,
// idempotence property in spec §8).
func (s *Supervisor) enforceTimeLimits() {
	if s.cfg.TimeLimitSeconds == 0 {
		return
	}
	limit := time.Duration(s.cfg.TimeLimitSeconds) * time.Second
	for _, rec := range s.roster.Snapshot() {
		if time.Since(rec.Start) < limit {
			continue
		}
		s.log.WithField("pid", rec.Pid).Warnf("time limit of %ds exceeded, killing", s.cfg.TimeLimitSeconds)
		_ = syscall.Kill(rec.Pid, syscall.SIGCONT)
		_ = syscall.Kill(rec.Pid, syscall.SIGKILL)
	}
}

// killAll implements spec §4.3 kill_all: SIGKILL every live pid. The
// reap path (driven by the caller afterwards) eventually drains the
// roster.
func (s *Supervisor) killAll() {
	for _, pid := range s.roster.Pids() {
		_ = syscall.Kill(pid, syscall.SIGKILL)
	}
}
