package socket

import (
	"context"
	"net"
	"net/netip"
	"sort"

	E "github.com/sagernet/sockets/common/exceptions"
)

// Resolver turns a host and service into candidate endpoints. A passive
// lookup with an empty host asks for a local bind address.
type Resolver interface {
	Resolve(ctx context.Context, host string, service string, passive bool) ([]netip.AddrPort, error)
}

// DefaultResolver resolves through net.Resolver. IPv4 endpoints are ordered
// first.
type DefaultResolver struct {
	Resolver *net.Resolver
}

func (r *DefaultResolver) Resolve(ctx context.Context, host string, service string, passive bool) ([]netip.AddrPort, error) {
	resolver := net.DefaultResolver
	if r != nil && r.Resolver != nil {
		resolver = r.Resolver
	}
	port, err := resolver.LookupPort(ctx, "tcp", service)
	if err != nil {
		return nil, E.Cause(err, "lookup service ", service)
	}
	if port < 0 || port > 0xffff {
		return nil, E.New("service port out of range: ", port)
	}
	if host == "" {
		if passive {
			return []netip.AddrPort{netip.AddrPortFrom(netip.IPv4Unspecified(), uint16(port))}, nil
		}
		return []netip.AddrPort{netip.AddrPortFrom(netip.AddrFrom4([4]byte{127, 0, 0, 1}), uint16(port))}, nil
	}
	if addr, err := netip.ParseAddr(host); err == nil {
		return []netip.AddrPort{netip.AddrPortFrom(addr.Unmap(), uint16(port))}, nil
	}
	addrs, err := resolver.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, E.Cause(err, "lookup host ", host)
	}
	sort.SliceStable(addrs, func(i, j int) bool {
		return addrs[i].Unmap().Is4() && !addrs[j].Unmap().Is4()
	})
	endpoints := make([]netip.AddrPort, 0, len(addrs))
	for _, addr := range addrs {
		endpoints = append(endpoints, netip.AddrPortFrom(addr.Unmap(), uint16(port)))
	}
	return endpoints, nil
}
