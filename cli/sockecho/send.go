//go:build linux || darwin || freebsd

package main

import (
	"context"
	"fmt"

	E "github.com/sagernet/sockets/common/exceptions"
	"github.com/sagernet/sockets/common/log"
)

func send(ctx context.Context, f *flags) error {
	manager := newManager(f)
	defer manager.Close()
	logger := log.NewLogger("send")

	handle, err := manager.OpenConnecting(ctx, f.Address, f.Port)
	if err != nil {
		return err
	}
	peer, err := manager.PeerAddrPort(handle)
	if err == nil {
		logger.Debug("connected to ", peer)
	}

	ready, err := manager.PollWritable(f.IdleTimeout, handle)
	if err != nil {
		return err
	}
	if !ready.Contains(handle) {
		return E.New("connection not writable after ", f.IdleTimeout)
	}
	message := []byte(f.Message)
	n, err := manager.Send(handle, message, f.IdleTimeout)
	if err != nil {
		return err
	}
	if n < len(message) {
		return E.New("sent ", n, " of ", len(message), " bytes before the peer stalled")
	}

	echoed := make([]byte, len(message))
	n, err = manager.Receive(handle, echoed, f.IdleTimeout)
	if err != nil {
		return E.Cause(err, "receive echo")
	}
	if n < len(message) {
		logger.Warn("echo truncated after ", n, " of ", len(message), " bytes")
	}
	fmt.Println(string(echoed[:n]))
	return nil
}
