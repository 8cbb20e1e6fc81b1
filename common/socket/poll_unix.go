//go:build linux || darwin || freebsd

package socket

import (
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DescriptorSetCapacity is the number of descriptors one select(2) set can
// hold. Handles at or above it cannot be polled.
const DescriptorSetCapacity = int(unsafe.Sizeof(unix.FdSet{})) * 8

// Pollable reports whether h fits in a descriptor set.
func (h Handle) Pollable() bool {
	return h >= 0 && int(h) < DescriptorSetCapacity
}

// PollReadable returns the candidates that have data to read or, for a
// listener, a pending connection. With no candidates it polls the whole
// registry. A timeout of zero or less blocks until at least one candidate is
// ready; a positive timeout bounds the wait and yields an empty set when it
// expires.
func (m *Manager) PollReadable(timeout time.Duration, candidates ...Handle) (ReadinessSet, error) {
	if timeout <= 0 {
		return m.poll("poll readable", false, -1, candidates)
	}
	return m.poll("poll readable", false, timeout, candidates)
}

// PollWritable returns the candidates that can accept data right now. Unlike
// PollReadable, a timeout of zero or less never waits: it reports whatever is
// writable at the instant of the call. A positive timeout bounds the wait.
func (m *Manager) PollWritable(timeout time.Duration, candidates ...Handle) (ReadinessSet, error) {
	if timeout < 0 {
		timeout = 0
	}
	return m.poll("poll writable", true, timeout, candidates)
}

// poll waits up to timeout, forever when timeout is negative.
func (m *Manager) poll(op string, write bool, timeout time.Duration, candidates []Handle) (ReadinessSet, error) {
	if len(candidates) == 0 {
		candidates = m.registry.Snapshot()
	}
	if len(candidates) == 0 {
		return ReadinessSet{}, newError(KindPoll, op, InvalidHandle, ErrNoCandidates)
	}
	maxFD := -1
	for _, handle := range candidates {
		if !handle.Pollable() {
			return ReadinessSet{}, newError(KindPoll, op, handle, ErrDescriptorRange)
		}
		if int(handle) > maxFD {
			maxFD = int(handle)
		}
	}
	var deadline time.Time
	if timeout >= 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		var set unix.FdSet
		set.Zero()
		for _, handle := range candidates {
			set.Set(int(handle))
		}
		var timeval *unix.Timeval
		if timeout >= 0 {
			remaining := time.Until(deadline)
			if remaining < 0 {
				remaining = 0
			}
			tv := unix.NsecToTimeval(remaining.Nanoseconds())
			timeval = &tv
		}
		var err error
		if write {
			_, err = unix.Select(maxFD+1, nil, &set, nil, timeval)
		} else {
			_, err = unix.Select(maxFD+1, &set, nil, nil, timeval)
		}
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return ReadinessSet{}, newError(KindPoll, op, InvalidHandle, err)
		}
		var ready []Handle
		seen := make(map[Handle]bool, len(candidates))
		for _, handle := range candidates {
			if !seen[handle] && set.IsSet(int(handle)) {
				ready = append(ready, handle)
			}
			seen[handle] = true
		}
		sortHandles(ready)
		return newReadinessSet(ready), nil
	}
}
