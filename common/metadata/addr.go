//go:build unix

package metadata

import (
	"net/netip"

	"golang.org/x/sys/unix"
)

// AddrPortFromSockaddr returns the unmapped address of an inet sockaddr, or the
// zero AddrPort for any other family.
func AddrPortFromSockaddr(sa unix.Sockaddr) netip.AddrPort {
	switch addr := sa.(type) {
	case *unix.SockaddrInet4:
		return netip.AddrPortFrom(netip.AddrFrom4(addr.Addr), uint16(addr.Port))
	case *unix.SockaddrInet6:
		ip := netip.AddrFrom16(addr.Addr).Unmap()
		if addr.ZoneId != 0 && ip.Is6() {
			ip = ip.WithZone(zoneName(addr.ZoneId))
		}
		return netip.AddrPortFrom(ip, uint16(addr.Port))
	default:
		return netip.AddrPort{}
	}
}

func AddrPortToSockaddr(addrPort netip.AddrPort) unix.Sockaddr {
	if addrPort.Addr().Is4() || addrPort.Addr().Is4In6() {
		return &unix.SockaddrInet4{
			Port: int(addrPort.Port()),
			Addr: addrPort.Addr().Unmap().As4(),
		}
	}
	return &unix.SockaddrInet6{
		Port:   int(addrPort.Port()),
		Addr:   addrPort.Addr().As16(),
		ZoneId: zoneIndex(addrPort.Addr().Zone()),
	}
}

// Family is the socket address family matching addrPort.
func Family(addrPort netip.AddrPort) int {
	if addrPort.Addr().Is4() || addrPort.Addr().Is4In6() {
		return unix.AF_INET
	}
	return unix.AF_INET6
}
