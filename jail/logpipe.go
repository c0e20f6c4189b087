//go:build linux

package jail

import (
	"io"
	"os"
)

// logChunkSize is the design-level bounded read size for the log pipe
// (spec §4.5).
const logChunkSize = 4096

// NewLogPipe creates the one-shot pipe used by the log pipe component
// (spec §4.5, C6). Go's os.Pipe already returns both ends with
// close-on-exec set, satisfying "both ends close-on-exec".
func NewLogPipe() (r, w *os.File, err error) {
	return os.Pipe()
}

// DrainLogPipe reads r in bounded chunks until EOF, invoking onChunk for
// each chunk read (verbatim, no framing, spec §4.5). It closes r before
// returning. EOF is the signal that the child has either execed the
// target or terminated (spec §4.3 ordering guarantee).
func DrainLogPipe(r *os.File, onChunk func([]byte)) error {
	defer r.Close()
	buf := make([]byte, logChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			onChunk(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
	}
}
