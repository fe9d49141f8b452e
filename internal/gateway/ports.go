package gateway

import (
	"fmt"
	"net"

	"github.com/cockroachdb/errors"
)

// maxPort is the top of the valid TCP port range.
const maxPort = 65535

// Candidates returns a lazy sequence of candidate ports starting at start
// and bounded by the platform's valid port range. Each call to the
// returned function yields the next candidate; the second return value is
// false once the range is exhausted. The sequence is restartable: call
// Candidates again for a fresh one.
func Candidates(start int) func() (int, bool) {
	next := start
	return func() (int, bool) {
		if next < 1 || next > maxPort {
			return 0, false
		}
		p := next
		next++
		return p, true
	}
}

// probe reports whether port is free right now, using a transient
// listen-and-immediately-close attempt.
func probe(port int) bool {
	l, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = l.Close()
	return true
}

// FindAvailablePort consumes the candidate sequence from start until the
// first port that accepts a listener. It never binds an occupied port; an
// address-in-use failure just advances the sequence. Exhausting the whole
// range means no port was ever free, which callers treat as fatal.
func FindAvailablePort(start int) (int, error) {
	if start < 1 || start > maxPort {
		return 0, errors.Newf("start port %d outside valid range", start)
	}
	candidates := Candidates(start)
	for {
		port, ok := candidates()
		if !ok {
			return 0, errors.Newf("no free port at or above %d", start)
		}
		if probe(port) {
			return port, nil
		}
	}
}
