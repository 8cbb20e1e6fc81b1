//go:build linux || darwin || freebsd

package tcp

import (
	"context"
	"io"
	"net"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/sagernet/sockets/common/socket"

	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestEchoListener(t *testing.T) {
	t.Parallel()
	manager := socket.NewManager(socket.Options{})
	defer manager.Close()

	listener := NewListener(manager, "0", &EchoHandler{ReadIdle: 10 * time.Millisecond, WriteIdle: time.Second},
		WithBacklog(8), WithPollInterval(20*time.Millisecond))
	require.NoError(t, listener.Start(context.Background()))

	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(listener.Addr().Port())))
	conn, err := net.Dial("tcp", address)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	for _, message := range []string{"ping", "hello world"} {
		_, err = conn.Write([]byte(message))
		require.NoError(t, err)
		echoed := make([]byte, len(message))
		_, err = io.ReadFull(conn, echoed)
		require.NoError(t, err)
		require.Equal(t, message, string(echoed))
	}

	require.Eventually(t, func() bool {
		return manager.Registry().Len() == 2
	}, time.Second, 10*time.Millisecond)
	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool {
		return manager.Registry().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, listener.Close())
	require.Zero(t, manager.Registry().Len())
}

func TestEchoBeforeHalfClose(t *testing.T) {
	t.Parallel()
	manager := socket.NewManager(socket.Options{})
	defer manager.Close()

	listener := NewListener(manager, "0", &EchoHandler{ReadIdle: time.Second, WriteIdle: time.Second},
		WithPollInterval(20*time.Millisecond))
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Close()

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(listener.Addr().Port()))))
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	require.NoError(t, conn.(*net.TCPConn).CloseWrite())

	echoed, err := io.ReadAll(conn)
	require.NoError(t, err)
	require.Equal(t, "ping", string(echoed))
	require.Eventually(t, func() bool {
		return manager.Registry().Len() == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestListenerCloseDropsClients(t *testing.T) {
	t.Parallel()
	manager := socket.NewManager(socket.Options{})
	defer manager.Close()

	listener := NewListener(manager, "0", &EchoHandler{}, WithPollInterval(20*time.Millisecond))
	require.NoError(t, listener.Start(context.Background()))

	conn, err := net.Dial("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(int(listener.Addr().Port()))))
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool {
		return manager.Registry().Len() == 2
	}, time.Second, 10*time.Millisecond)

	require.NoError(t, listener.Close())
	require.Zero(t, manager.Registry().Len())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, err = conn.Read(make([]byte, 1))
	require.Error(t, err)
}

func TestListenerStartFailure(t *testing.T) {
	t.Parallel()
	manager := socket.NewManager(socket.Options{})
	defer manager.Close()
	listener := NewListener(manager, "sockets-no-such-service", &EchoHandler{})
	err := listener.Start(context.Background())
	require.True(t, socket.IsKind(err, socket.KindResolution))
	require.NoError(t, listener.Close())
}

// exhaustSelectableDescriptors occupies every free descriptor below the
// descriptor-set capacity, so the next one allocated cannot be polled.
func exhaustSelectableDescriptors(t *testing.T) func() {
	var held []int
	release := func() {
		for _, fd := range held {
			unix.Close(fd)
		}
		held = nil
	}
	t.Cleanup(release)
	for {
		fd, err := unix.Open("/dev/null", unix.O_RDONLY|unix.O_CLOEXEC, 0)
		if err == unix.EMFILE {
			release()
			t.Skip("descriptor limit is below ", socket.DescriptorSetCapacity)
		}
		require.NoError(t, err)
		held = append(held, fd)
		if fd >= socket.DescriptorSetCapacity-1 {
			return release
		}
	}
}

func TestListenerRefusesUnpollableClient(t *testing.T) {
	manager := socket.NewManager(socket.Options{})
	defer manager.Close()

	listener := NewListener(manager, "0", &EchoHandler{ReadIdle: 10 * time.Millisecond, WriteIdle: time.Second},
		WithPollInterval(20*time.Millisecond))
	require.NoError(t, listener.Start(context.Background()))
	defer listener.Close()
	address := net.JoinHostPort("127.0.0.1", strconv.Itoa(int(listener.Addr().Port())))

	release := exhaustSelectableDescriptors(t)
	refused, err := net.Dial("tcp", address)
	require.NoError(t, err)
	defer refused.Close()
	require.NoError(t, refused.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, err = refused.Read(make([]byte, 1))
	require.Error(t, err)
	require.NotErrorIs(t, err, os.ErrDeadlineExceeded)
	release()

	conn, err := net.Dial("tcp", address)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	_, err = conn.Write([]byte("ping"))
	require.NoError(t, err)
	echoed := make([]byte, 4)
	_, err = io.ReadFull(conn, echoed)
	require.NoError(t, err)
	require.Equal(t, "ping", string(echoed))
	require.Equal(t, 2, manager.Registry().Len())
}
