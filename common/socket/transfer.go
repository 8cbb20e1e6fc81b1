package socket

import (
	"time"

	E "github.com/sagernet/sockets/common/exceptions"

	"github.com/benbjohnson/clock"
)

type transferResult uint8

const (
	resultComplete transferResult = iota
	resultIdleTimeout
	resultPeerClosed
	resultError
)

// idleTransfer moves len(buffer) bytes through a non-blocking operation. The
// deadline is an idle bound: it restarts at now+timeout whenever at least one
// byte moves, so only a stall longer than timeout ends the call early.
type idleTransfer struct {
	clock   clock.Clock
	timeout time.Duration
	// do reads into or writes from p. EAGAIN means no progress is possible yet.
	do func(p []byte) (int, error)
	// wait parks until the socket may make progress or timeout elapses. Optional.
	wait func(timeout time.Duration)
	// zeroIsEOF marks the receive direction, where a zero-byte read without an
	// error means the peer closed the stream.
	zeroIsEOF bool
}

func (t *idleTransfer) run(buffer []byte) (int, transferResult, error) {
	var total int
	deadline := t.clock.Now().Add(t.timeout)
	for total < len(buffer) {
		n, err := t.do(buffer[total:])
		if err != nil {
			if !E.IsTemporary(err) {
				return total, resultError, err
			}
			n = 0
		} else if n == 0 && t.zeroIsEOF {
			return total, resultPeerClosed, ErrConnectionClosed
		}
		if n > 0 {
			total += n
			deadline = t.clock.Now().Add(t.timeout)
			continue
		}
		now := t.clock.Now()
		if now.After(deadline) {
			return total, resultIdleTimeout, nil
		}
		if t.wait != nil {
			t.wait(deadline.Sub(now))
		}
	}
	return total, resultComplete, nil
}
