//go:build !(linux || darwin || freebsd)

package socket

import (
	"context"
	"net/netip"
	"time"
)

const DescriptorSetCapacity = 0

func (h Handle) Pollable() bool {
	return false
}

func (m *Manager) OpenListener(ctx context.Context, service string, backlog int) (Handle, error) {
	return InvalidHandle, newError(KindSocketCreation, "listen", InvalidHandle, ErrUnsupported)
}

func (m *Manager) OpenConnecting(ctx context.Context, address string, service string) (Handle, error) {
	return InvalidHandle, newError(KindSocketCreation, "connect", InvalidHandle, ErrUnsupported)
}

func (m *Manager) AcceptClient(listener Handle) (Handle, error) {
	return InvalidHandle, newError(KindAccept, "accept", listener, ErrUnsupported)
}

func (m *Manager) IsNonBlocking(handle Handle) (bool, error) {
	return false, ErrUnsupported
}

func (m *Manager) PollReadable(timeout time.Duration, candidates ...Handle) (ReadinessSet, error) {
	return ReadinessSet{}, newError(KindPoll, "poll readable", InvalidHandle, ErrUnsupported)
}

func (m *Manager) PollWritable(timeout time.Duration, candidates ...Handle) (ReadinessSet, error) {
	return ReadinessSet{}, newError(KindPoll, "poll writable", InvalidHandle, ErrUnsupported)
}

func (m *Manager) Receive(handle Handle, buffer []byte, timeout time.Duration) (int, error) {
	return 0, newError(KindTransfer, "receive", handle, ErrUnsupported)
}

func (m *Manager) Send(handle Handle, buffer []byte, timeout time.Duration) (int, error) {
	return 0, newError(KindTransfer, "send", handle, ErrUnsupported)
}

func (m *Manager) PeerAddress(handle Handle) (string, error) {
	return "", ErrUnsupported
}

func (m *Manager) PeerAddrPort(handle Handle) (netip.AddrPort, error) {
	return netip.AddrPort{}, ErrUnsupported
}

func (m *Manager) LocalAddrPort(handle Handle) (netip.AddrPort, error) {
	return netip.AddrPort{}, ErrUnsupported
}

func closeHandle(handle Handle) error {
	return ErrUnsupported
}
