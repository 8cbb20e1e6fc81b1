//go:build linux || darwin || freebsd

package socket

import (
	"net/netip"

	E "github.com/sagernet/sockets/common/exceptions"
	M "github.com/sagernet/sockets/common/metadata"

	"golang.org/x/sys/unix"
)

// PeerAddress returns the remote IP address of a connected handle in its
// canonical textual form. It fails on listening or unconnected handles.
func (m *Manager) PeerAddress(handle Handle) (string, error) {
	addrPort, err := m.PeerAddrPort(handle)
	if err != nil {
		return "", err
	}
	return addrPort.Addr().String(), nil
}

func (m *Manager) PeerAddrPort(handle Handle) (netip.AddrPort, error) {
	sa, err := unix.Getpeername(int(handle))
	if err != nil {
		return netip.AddrPort{}, E.Cause(err, "getpeername ", handle)
	}
	addrPort := M.AddrPortFromSockaddr(sa)
	if !addrPort.IsValid() {
		return netip.AddrPort{}, E.New("getpeername ", handle, ": not an inet socket")
	}
	return addrPort, nil
}

// LocalAddrPort returns the address handle is bound to, which is how a caller
// learns the port of a listener opened on service "0".
func (m *Manager) LocalAddrPort(handle Handle) (netip.AddrPort, error) {
	sa, err := unix.Getsockname(int(handle))
	if err != nil {
		return netip.AddrPort{}, E.Cause(err, "getsockname ", handle)
	}
	addrPort := M.AddrPortFromSockaddr(sa)
	if !addrPort.IsValid() {
		return netip.AddrPort{}, E.New("getsockname ", handle, ": not an inet socket")
	}
	return addrPort, nil
}
