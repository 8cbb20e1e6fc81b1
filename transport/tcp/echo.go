package tcp

import (
	"errors"
	"time"

	E "github.com/sagernet/sockets/common/exceptions"
	"github.com/sagernet/sockets/common/socket"
)

// EchoHandler writes every received byte back to its sender. Bytes that
// arrive together with the peer's half-close are still echoed before the
// connection is dropped.
type EchoHandler struct {
	// ReadIdle is how long one receive waits for more bytes before echoing
	// what it has.
	ReadIdle time.Duration
	// WriteIdle bounds a stalled echo write.
	WriteIdle  time.Duration
	BufferSize int
}

func (h *EchoHandler) NewConnection(manager *socket.Manager, handle socket.Handle, peer string) error {
	return nil
}

func (h *EchoHandler) HandleReadable(manager *socket.Manager, handle socket.Handle) error {
	bufferSize := h.BufferSize
	if bufferSize <= 0 {
		bufferSize = 4096
	}
	buffer := make([]byte, bufferSize)
	n, readErr := manager.Receive(handle, buffer, h.ReadIdle)
	if readErr != nil && !errors.Is(readErr, socket.ErrConnectionClosed) {
		return readErr
	}
	if n > 0 {
		written, err := manager.Send(handle, buffer[:n], h.WriteIdle)
		if err != nil {
			return err
		}
		if written < n {
			return E.New("echo stalled after ", written, " of ", n, " bytes")
		}
	}
	return readErr
}
