package control

import (
	"net"
	"sync/atomic"

	E "github.com/sagernet/sockets/common/exceptions"

	"golang.org/x/sys/unix"
)

var ifIndexDisabled atomic.Bool

// BindToInterface pins the socket to one network interface.
func BindToInterface(interfaceName string) Func {
	return func(fd int) error {
		if !ifIndexDisabled.Load() {
			iface, err := net.InterfaceByName(interfaceName)
			if err != nil {
				return E.Cause(err, "find interface ", interfaceName)
			}
			err = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_BINDTOIFINDEX, iface.Index)
			if err == nil {
				return nil
			} else if E.IsMulti(err, unix.ENOPROTOOPT, unix.EINVAL) {
				ifIndexDisabled.Store(true)
			} else {
				return err
			}
		}
		return unix.BindToDevice(fd, interfaceName)
	}
}

func RoutingMark(mark int) Func {
	return func(fd int) error {
		return unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_MARK, mark)
	}
}
