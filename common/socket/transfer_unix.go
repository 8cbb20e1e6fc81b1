//go:build linux || darwin || freebsd

package socket

import (
	"math"
	"time"

	"golang.org/x/sys/unix"
)

// Receive reads exactly len(buffer) bytes from handle unless the peer stalls.
//
// The call returns len(buffer) and nil on success. If no byte arrives for
// longer than timeout, it stops and returns the count read so far with a nil
// error; a short count is not a fault. If the peer closes the stream it
// returns ErrConnectionClosed regardless of how much was already read, since
// no further read on handle can succeed. Any other failure is an OpError of
// KindTransfer and the handle should be closed.
//
// handle must be non-blocking, as returned by AcceptClient or OpenConnecting.
func (m *Manager) Receive(handle Handle, buffer []byte, timeout time.Duration) (int, error) {
	if !m.registry.Contains(handle) {
		return 0, newError(KindTransfer, "receive", handle, ErrNotRegistered)
	}
	transfer := idleTransfer{
		clock:   m.clock,
		timeout: timeout,
		do: func(p []byte) (int, error) {
			n, err := unix.Read(int(handle), p)
			if err != nil {
				return 0, err
			}
			return n, nil
		},
		wait: func(timeout time.Duration) {
			waitHandle(int(handle), unix.POLLIN, timeout)
		},
		zeroIsEOF: true,
	}
	n, result, err := transfer.run(buffer)
	m.metrics.transferred(directionReceive, n, result)
	if result == resultError {
		return n, newError(KindTransfer, "receive", handle, err)
	}
	return n, err
}

// Send writes exactly len(buffer) bytes to handle unless the peer stops
// draining them. The idle rule matches Receive: the call gives up and returns
// the count written so far with a nil error only after timeout passes without
// any byte leaving. A peer that went away surfaces as an OpError of
// KindTransfer.
func (m *Manager) Send(handle Handle, buffer []byte, timeout time.Duration) (int, error) {
	if !m.registry.Contains(handle) {
		return 0, newError(KindTransfer, "send", handle, ErrNotRegistered)
	}
	transfer := idleTransfer{
		clock:   m.clock,
		timeout: timeout,
		do: func(p []byte) (int, error) {
			n, err := unix.Write(int(handle), p)
			if err != nil {
				return 0, err
			}
			return n, nil
		},
		wait: func(timeout time.Duration) {
			waitHandle(int(handle), unix.POLLOUT, timeout)
		},
	}
	n, result, err := transfer.run(buffer)
	m.metrics.transferred(directionSend, n, result)
	if result == resultError {
		return n, newError(KindTransfer, "send", handle, err)
	}
	return n, err
}

// waitHandle parks until fd reports events or timeout elapses and reports
// whether any event fired. A negative timeout waits forever. Errors are left
// to the next read or write.
func waitHandle(fd int, events int16, timeout time.Duration) bool {
	milliseconds := -1
	if timeout >= 0 {
		rounded := (timeout + time.Millisecond - 1) / time.Millisecond
		if rounded > math.MaxInt32 {
			rounded = math.MaxInt32
		}
		milliseconds = int(rounded)
	}
	pollFds := []unix.PollFd{{Fd: int32(fd), Events: events}}
	n, err := unix.Poll(pollFds, milliseconds)
	return err == nil && n > 0 && pollFds[0].Revents != 0
}
