//go:build linux || darwin || freebsd

package socket

import (
	"context"
	"net/netip"
	"syscall"

	"github.com/sagernet/sockets/common/control"
	E "github.com/sagernet/sockets/common/exceptions"
	M "github.com/sagernet/sockets/common/metadata"

	"golang.org/x/sys/unix"
)

// OpenListener binds a listening socket on the local address resolved for
// service and registers it. backlog bounds the queue of connections not yet
// accepted; a non-positive value selects the system maximum. Nothing is
// registered when any step fails.
func (m *Manager) OpenListener(ctx context.Context, service string, backlog int) (Handle, error) {
	endpoints, err := m.resolve(ctx, "", service, true)
	if err != nil {
		return InvalidHandle, err
	}
	if backlog <= 0 {
		backlog = unix.SOMAXCONN
	}
	var lastErr error
	for _, endpoint := range endpoints {
		var handle Handle
		handle, lastErr = m.listen(endpoint, backlog)
		if lastErr == nil {
			m.register(handle, "listening on "+endpoint.String())
			return handle, nil
		}
	}
	return InvalidHandle, lastErr
}

func (m *Manager) listen(endpoint netip.AddrPort, backlog int) (Handle, error) {
	fd, err := newSocket(M.Family(endpoint))
	if err != nil {
		return InvalidHandle, newError(KindSocketCreation, "listen", InvalidHandle, err)
	}
	if err = control.Apply(fd, m.listenerControl); err != nil {
		unix.Close(fd)
		return InvalidHandle, newError(KindSocketCreation, "listen", InvalidHandle, E.Cause(err, "control"))
	}
	if err = unix.Bind(fd, M.AddrPortToSockaddr(endpoint)); err != nil {
		unix.Close(fd)
		return InvalidHandle, newError(KindBind, "listen", InvalidHandle, E.Cause(err, "bind ", endpoint))
	}
	if err = unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return InvalidHandle, newError(KindBind, "listen", InvalidHandle, E.Cause(err, "listen ", endpoint))
	}
	return Handle(fd), nil
}

// OpenConnecting connects synchronously to the first resolved endpoint of
// address and service that accepts the connection, and registers the handle.
// Once connected the handle is switched to non-blocking mode so Receive and
// Send stay bounded by their idle timeout.
func (m *Manager) OpenConnecting(ctx context.Context, address string, service string) (Handle, error) {
	endpoints, err := m.resolve(ctx, address, service, false)
	if err != nil {
		return InvalidHandle, err
	}
	var lastErr error
	for _, endpoint := range endpoints {
		if ctx.Err() != nil {
			return InvalidHandle, newError(KindConnect, "connect", InvalidHandle, ctx.Err())
		}
		var handle Handle
		handle, lastErr = m.connect(endpoint)
		if lastErr == nil {
			m.register(handle, "connected to "+endpoint.String())
			return handle, nil
		}
	}
	return InvalidHandle, lastErr
}

func (m *Manager) connect(endpoint netip.AddrPort) (Handle, error) {
	fd, err := newSocket(M.Family(endpoint))
	if err != nil {
		return InvalidHandle, newError(KindSocketCreation, "connect", InvalidHandle, err)
	}
	if err = control.Apply(fd, m.connectControl); err != nil {
		unix.Close(fd)
		return InvalidHandle, newError(KindSocketCreation, "connect", InvalidHandle, E.Cause(err, "control"))
	}
	if err = connectBlocking(fd, M.AddrPortToSockaddr(endpoint)); err != nil {
		unix.Close(fd)
		return InvalidHandle, newError(KindConnect, "connect", InvalidHandle, E.Cause(err, "connect ", endpoint))
	}
	if err = unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return InvalidHandle, newError(KindConnect, "connect", InvalidHandle, E.Cause(err, "set non-blocking"))
	}
	return Handle(fd), nil
}

// connectBlocking finishes a connect interrupted by a signal, or started on a
// non-blocking socket, by waiting for the socket to become writable and
// reading its pending error.
func connectBlocking(fd int, sa unix.Sockaddr) error {
	err := unix.Connect(fd, sa)
	switch err {
	case nil:
		return nil
	case unix.EINTR, unix.EINPROGRESS, unix.EALREADY:
	default:
		return err
	}
	for {
		if !waitHandle(fd, unix.POLLOUT, -1) {
			continue
		}
		soErr, err := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR)
		if err != nil {
			return err
		}
		switch unix.Errno(soErr) {
		case 0:
		case unix.EINTR, unix.EINPROGRESS, unix.EALREADY:
			continue
		default:
			return unix.Errno(soErr)
		}
		// SO_ERROR stays zero while the handshake is still in flight.
		_, err = unix.Getpeername(fd)
		if err == unix.ENOTCONN {
			continue
		}
		return err
	}
}

// AcceptClient takes the next pending connection of listener, blocking until
// one arrives; poll the listener for readability first to avoid the wait.
// The returned handle is registered and always in non-blocking mode.
func (m *Manager) AcceptClient(listener Handle) (Handle, error) {
	if !m.registry.Contains(listener) {
		return InvalidHandle, newError(KindAccept, "accept", listener, ErrNotRegistered)
	}
	var (
		fd  int
		sa  unix.Sockaddr
		err error
	)
	for {
		syscall.ForkLock.RLock()
		fd, sa, err = unix.Accept(int(listener))
		if err == nil {
			unix.CloseOnExec(fd)
		}
		syscall.ForkLock.RUnlock()
		if err == unix.EINTR || err == unix.ECONNABORTED {
			continue
		}
		break
	}
	if err != nil {
		return InvalidHandle, newError(KindAccept, "accept", listener, err)
	}
	if err = unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return InvalidHandle, newError(KindAccept, "accept", listener, E.Cause(err, "set non-blocking"))
	}
	m.metrics.acceptedClient()
	m.register(Handle(fd), "accepted from "+M.AddrPortFromSockaddr(sa).String())
	return Handle(fd), nil
}

// IsNonBlocking reports whether handle is in non-blocking mode.
func (m *Manager) IsNonBlocking(handle Handle) (bool, error) {
	flags, err := unix.FcntlInt(uintptr(handle), unix.F_GETFL, 0)
	if err != nil {
		return false, E.Cause(err, "fcntl ", handle)
	}
	return flags&unix.O_NONBLOCK != 0, nil
}

func (m *Manager) resolve(ctx context.Context, host string, service string, passive bool) ([]netip.AddrPort, error) {
	op := "connect"
	if passive {
		op = "listen"
	}
	endpoints, err := m.resolver.Resolve(ctx, host, service, passive)
	if err != nil {
		return nil, newError(KindResolution, op, InvalidHandle, err)
	}
	if len(endpoints) == 0 {
		return nil, newError(KindResolution, op, InvalidHandle, ErrNoEndpoint)
	}
	return endpoints, nil
}

func newSocket(family int) (int, error) {
	syscall.ForkLock.RLock()
	fd, err := unix.Socket(family, unix.SOCK_STREAM, unix.IPPROTO_TCP)
	if err == nil {
		unix.CloseOnExec(fd)
	}
	syscall.ForkLock.RUnlock()
	return fd, err
}

func closeHandle(handle Handle) error {
	return unix.Close(int(handle))
}
