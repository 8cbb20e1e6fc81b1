//go:build unix && !linux

package control

import (
	"time"

	"golang.org/x/sys/unix"
)

// SetKeepAlivePeriod only enables keep-alive here; probe timing stays at the system default.
func SetKeepAlivePeriod(idle time.Duration, interval time.Duration) Func {
	return func(fd int) error {
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	}
}
