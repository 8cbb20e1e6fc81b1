package tcp

import (
	"context"
	"errors"
	"net/netip"
	"sync"
	"time"

	E "github.com/sagernet/sockets/common/exceptions"
	"github.com/sagernet/sockets/common/log"
	"github.com/sagernet/sockets/common/socket"

	"github.com/sirupsen/logrus"
)

// Listener drives one listening handle and its clients from a single poll
// loop: it waits for readability, accepts pending connections and hands
// readable clients to the Handler.
type Listener struct {
	manager      *socket.Manager
	service      string
	handler      Handler
	backlog      int
	pollInterval time.Duration
	logger       logrus.FieldLogger

	listener socket.Handle
	clients  map[socket.Handle]bool
	cancel   context.CancelFunc
	done     chan struct{}
	access   sync.Mutex
}

func NewListener(manager *socket.Manager, service string, handler Handler, options ...Option) *Listener {
	listener := &Listener{
		manager:      manager,
		service:      service,
		handler:      handler,
		backlog:      64,
		pollInterval: 200 * time.Millisecond,
		logger:       log.NewLogger("tcp"),
		listener:     socket.InvalidHandle,
		clients:      make(map[socket.Handle]bool),
	}
	for _, option := range options {
		option(listener)
	}
	return listener
}

func (l *Listener) Start(ctx context.Context) error {
	handle, err := l.manager.OpenListener(ctx, l.service, l.backlog)
	if err != nil {
		return err
	}
	if !handle.Pollable() {
		return E.Errors(E.New("listener ", handle, " exceeds the descriptor-set capacity"), l.manager.CloseSocket(handle))
	}
	l.listener = handle
	ctx, l.cancel = context.WithCancel(ctx)
	l.done = make(chan struct{})
	go l.loop(ctx)
	return nil
}

// Addr returns the bound address, valid after Start.
func (l *Listener) Addr() netip.AddrPort {
	addrPort, _ := l.manager.LocalAddrPort(l.listener)
	return addrPort
}

// Close stops the loop and closes the listener and every client it accepted.
func (l *Listener) Close() error {
	if l == nil || l.cancel == nil {
		return nil
	}
	l.cancel()
	<-l.done
	l.access.Lock()
	defer l.access.Unlock()
	var errs []error
	for client := range l.clients {
		errs = append(errs, l.manager.CloseSocket(client))
	}
	l.clients = make(map[socket.Handle]bool)
	if l.listener != socket.InvalidHandle {
		errs = append(errs, l.manager.CloseSocket(l.listener))
		l.listener = socket.InvalidHandle
	}
	return E.Errors(errs...)
}

func (l *Listener) candidates() []socket.Handle {
	l.access.Lock()
	defer l.access.Unlock()
	handles := make([]socket.Handle, 0, len(l.clients)+1)
	handles = append(handles, l.listener)
	for client := range l.clients {
		handles = append(handles, client)
	}
	return handles
}

func (l *Listener) loop(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		ready, err := l.manager.PollReadable(l.pollInterval, l.candidates()...)
		if err != nil {
			var opErr *socket.OpError
			if errors.Is(err, socket.ErrDescriptorRange) && errors.As(err, &opErr) && opErr.Handle != l.listener {
				l.closeClient(opErr.Handle, err)
				continue
			}
			l.logger.Error(E.Cause(err, "poll"))
			return
		}
		for _, handle := range ready.Handles() {
			if handle == l.listener {
				l.accept()
			} else {
				l.serve(handle)
			}
		}
	}
}

func (l *Listener) accept() {
	client, err := l.manager.AcceptClient(l.listener)
	if err != nil {
		l.logger.Warn(err)
		return
	}
	if !client.Pollable() {
		l.logger.Warn("refused ", client, ": descriptor exceeds the descriptor-set capacity")
		if err = l.manager.CloseSocket(client); err != nil {
			l.logger.Warn(err)
		}
		return
	}
	peer, err := l.manager.PeerAddress(client)
	if err != nil {
		peer = "unknown"
	}
	l.access.Lock()
	l.clients[client] = true
	l.access.Unlock()
	l.logger.Info("accepted ", client, " from ", peer)
	if err = l.handler.NewConnection(l.manager, client, peer); err != nil {
		l.closeClient(client, err)
	}
}

func (l *Listener) serve(client socket.Handle) {
	if err := l.handler.HandleReadable(l.manager, client); err != nil {
		l.closeClient(client, err)
	}
}

func (l *Listener) closeClient(client socket.Handle, cause error) {
	if errors.Is(cause, socket.ErrConnectionClosed) {
		l.logger.Info("peer of ", client, " closed the connection")
	} else {
		l.logger.Warn(E.Cause(cause, "drop ", client))
	}
	l.access.Lock()
	delete(l.clients, client)
	l.access.Unlock()
	if err := l.manager.CloseSocket(client); err != nil {
		l.logger.Warn(err)
	}
}
