//go:build linux

package supervisor

import (
	"os"
	"os/exec"
	"syscall"
	"time"

	"github.com/Afvanjaffer/nsjail/jail"
	"github.com/Afvanjaffer/nsjail/netattach"
	"github.com/Afvanjaffer/nsjail/roster"
)

// spawn implements spec §4.3 spawn(fd_in, fd_out, fd_err): create the log
// pipe, clone the Child builder via a self re-exec, attach any configured
// virtual network interface, drain its containment log to EOF, and only
// then insert the ChildRecord (spec §5 ordering guarantee (a)).
//
// It reports ok=false for a parent-transient failure (spec §7): pipe
// creation or clone itself failed. The spawn attempt is simply abandoned;
// the supervisor loop continues.
func (s *Supervisor) spawn(stdin, stdout, stderr *os.File, remoteAddr [16]byte, remoteText string) (ok bool) {
	configR, configW, err := os.Pipe()
	if err != nil {
		s.log.Warnf("spawn: create config pipe: %v", err)
		return false
	}
	paramBytes, err := jail.EncodeParams(jail.Params{Config: s.cfg})
	if err != nil {
		configR.Close()
		configW.Close()
		s.log.Warnf("spawn: encode jail params: %v", err)
		return false
	}
	if _, err := configW.Write(paramBytes); err != nil {
		configR.Close()
		configW.Close()
		s.log.Warnf("spawn: write jail params: %v", err)
		return false
	}
	configW.Close()

	logR, logW, err := jail.NewLogPipe()
	if err != nil {
		configR.Close()
		s.log.Warnf("spawn: create log pipe: %v", err)
		return false
	}

	cmd := exec.Command(s.selfExe, jail.InitSubcommand)
	cmd.Stdin, cmd.Stdout, cmd.Stderr = stdin, stdout, stderr
	cmd.ExtraFiles = []*os.File{configR, logW}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Cloneflags: cloneFlags(s.cfg.Namespaces),
	}
	if s.cfg.Namespaces.NewUser {
		// The single uid_map/gid_map line must name *this* (the parent's)
		// real uid/gid: until the map is written, getuid()/getgid() inside
		// the new user namespace return the kernel's overflow id, not the
		// supervisor's invoking uid, so the child can never discover the
		// right outer id on its own (user_namespaces(7)). Go writes these
		// maps (and denies setgroups first) before the child's own code
		// runs, matching createSandboxProcess's use of the same fields.
		outerUID, outerGID := os.Getuid(), os.Getgid()
		cmd.SysProcAttr.UidMappings = []syscall.SysProcIDMap{
			{ContainerID: s.cfg.UID, HostID: outerUID, Size: 1},
		}
		cmd.SysProcAttr.GidMappings = []syscall.SysProcIDMap{
			{ContainerID: s.cfg.GID, HostID: outerGID, Size: 1},
		}
		cmd.SysProcAttr.GidMappingsEnableSetgroups = false
	}

	if err := cmd.Start(); err != nil {
		configR.Close()
		logR.Close()
		logW.Close()
		s.log.Warnf("spawn: clone failed: %v", err)
		return false
	}
	// The child owns these now; our copies would otherwise keep the log
	// pipe's read side from ever seeing EOF.
	configR.Close()
	logW.Close()

	if s.cfg.Net.Kind != "" {
		if err := netattach.Attach(netattach.Kind(s.cfg.Net.Kind), s.cfg.Net.SrcIface, cmd.Process.Pid); err != nil {
			s.log.Warnf("net attach: %v", err)
		}
	}

	if err := jail.DrainLogPipe(logR, func(b []byte) {
		s.log.ContainmentChunk(cmd.Process.Pid, b)
	}); err != nil {
		s.log.Warnf("spawn: log pipe drain: %v", err)
	}

	s.roster.Insert(roster.Record{
		Pid:        cmd.Process.Pid,
		Start:      time.Now(),
		RemoteAddr: remoteAddr,
		RemoteText: remoteText,
	})
	return true
}
