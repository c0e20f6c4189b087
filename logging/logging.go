// Package logging provides the single leveled log sink shared by the
// supervisor, the child builder's log pipe, and the net attacher (spec §6
// "Log sink" collaborator). It is a thin wrapper around logrus, matching
// the logging library already present in the teacher's dependency graph.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Sink is the log sink collaborator pinned in spec §6: it accepts a byte
// buffer and emits it, optionally tagged with a level. Thread-unsafe use is
// acceptable because only the supervisor goroutine ever writes to it.
type Sink struct {
	*logrus.Logger
}

// New builds a Sink writing to path (or stderr if path is empty), at Info
// level normally and Debug level when verbose is set.
func New(path string, verbose bool) (*Sink, error) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	var out io.Writer = os.Stderr
	if path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, err
		}
		out = f
	}
	l.SetOutput(out)

	if verbose {
		l.SetLevel(logrus.DebugLevel)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &Sink{Logger: l}, nil
}

// ContainmentChunk forwards one chunk read from the child's log pipe
// verbatim (spec §4.5: "no framing or length prefixes are used"). The
// bytes become the message text of one Info-level entry tagged with the
// child's pid, without being re-parsed, since the child may write partial
// UTF-8 or binary diagnostics.
func (s *Sink) ContainmentChunk(pid int, b []byte) {
	s.WithField("pid", pid).Infof("containment: %s", string(b))
}
