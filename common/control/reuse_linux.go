package control

import (
	"golang.org/x/sys/unix"
)

func ReusePort() Func {
	return func(fd int) error {
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
	}
}
