package tcp

import (
	"github.com/sagernet/sockets/common/socket"
)

// Handler serves accepted clients of a Listener.
type Handler interface {
	// NewConnection is called once for every accepted client.
	NewConnection(manager *socket.Manager, handle socket.Handle, peer string) error
	// HandleReadable is called when handle has data or its peer went away.
	// Returning an error makes the listener close the handle.
	HandleReadable(manager *socket.Manager, handle socket.Handle) error
}
