//go:build linux || darwin || freebsd

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	E "github.com/sagernet/sockets/common/exceptions"
	"github.com/sagernet/sockets/common/log"
	"github.com/sagernet/sockets/transport/tcp"
)

func serve(ctx context.Context, f *flags) error {
	manager := newManager(f)
	logger := log.NewLogger("serve")
	listener := tcp.NewListener(manager, f.Port, &tcp.EchoHandler{
		ReadIdle:  10 * time.Millisecond,
		WriteIdle: f.IdleTimeout,
	}, tcp.WithBacklog(f.Backlog), tcp.WithLogger(log.NewLogger("tcp")))
	if err := listener.Start(ctx); err != nil {
		return E.Cause(err, "start echo server")
	}
	logger.Info("server started at ", listener.Addr())

	osSignals := make(chan os.Signal, 1)
	signal.Notify(osSignals, os.Interrupt, syscall.SIGTERM)
	<-osSignals

	logger.Info("shutting down")
	return E.Errors(listener.Close(), manager.Close())
}
