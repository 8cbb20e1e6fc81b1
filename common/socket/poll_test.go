//go:build linux || darwin || freebsd

package socket

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPollWritableZeroTimeoutReturnsImmediately(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t)
	listener, server, _ := connectedPair(t, manager)

	start := time.Now()
	ready, err := manager.PollWritable(0, listener, server)
	require.NoError(t, err)
	require.Less(t, time.Since(start), 100*time.Millisecond)
	require.True(t, ready.Contains(server))
	require.False(t, ready.Contains(listener))

	start = time.Now()
	ready, err = manager.PollWritable(0, listener)
	require.NoError(t, err)
	require.True(t, ready.IsEmpty())
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestPollReadableZeroTimeoutBlocksUntilReady(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t)
	_, server, client := connectedPair(t, manager)

	const delay = 200 * time.Millisecond
	go func() {
		time.Sleep(delay)
		manager.Send(client, []byte("x"), time.Second)
	}()
	start := time.Now()
	ready, err := manager.PollReadable(0, server)
	require.NoError(t, err)
	require.GreaterOrEqual(t, time.Since(start), delay/2)
	require.Equal(t, []Handle{server}, ready.Handles())
}

func TestPollReadableTimeoutYieldsEmptySet(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t)
	_, server, _ := connectedPair(t, manager)

	const timeout = 100 * time.Millisecond
	start := time.Now()
	ready, err := manager.PollReadable(timeout, server)
	require.NoError(t, err)
	require.True(t, ready.IsEmpty())
	require.GreaterOrEqual(t, time.Since(start), timeout/2)
}

func TestPollReadableDefaultsToRegistry(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t)
	listener, port := openTestListener(t, manager)

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", port))
	require.NoError(t, err)
	defer conn.Close()

	ready, err := manager.PollReadable(time.Second)
	require.NoError(t, err)
	require.Equal(t, []Handle{listener}, ready.Handles())

	server, err := manager.AcceptClient(listener)
	require.NoError(t, err)
	_, err = conn.Write([]byte("data"))
	require.NoError(t, err)

	ready, err = manager.PollReadable(time.Second)
	require.NoError(t, err)
	require.True(t, ready.Contains(server))
	require.False(t, ready.Contains(listener))
}

func TestPollEmptyRegistry(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t)
	_, err := manager.PollReadable(time.Millisecond)
	require.True(t, IsKind(err, KindPoll))
	require.ErrorIs(t, err, ErrNoCandidates)
	_, err = manager.PollWritable(0)
	require.ErrorIs(t, err, ErrNoCandidates)
}

func TestPollDescriptorOutOfRange(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t)
	_, err := manager.PollWritable(0, Handle(DescriptorSetCapacity))
	require.True(t, IsKind(err, KindPoll))
	require.ErrorIs(t, err, ErrDescriptorRange)
	require.False(t, Handle(DescriptorSetCapacity).Pollable())
	require.True(t, Handle(DescriptorSetCapacity-1).Pollable())
	require.False(t, InvalidHandle.Pollable())
}
