//go:build !linux

package control

import (
	E "github.com/sagernet/sockets/common/exceptions"
)

func BindToInterface(interfaceName string) Func {
	return func(fd int) error {
		return E.New("bind to interface ", interfaceName, ": unsupported platform")
	}
}

func RoutingMark(mark int) Func {
	return func(fd int) error {
		return E.New("routing mark ", mark, ": unsupported platform")
	}
}

func ReusePort() Func {
	return func(fd int) error {
		return E.New("SO_REUSEPORT: unsupported platform")
	}
}
