package socket

import (
	"errors"

	E "github.com/sagernet/sockets/common/exceptions"
)

type Kind uint8

const (
	KindResolution Kind = iota + 1
	KindSocketCreation
	KindBind
	KindConnect
	KindAccept
	KindPoll
	KindTransfer
)

func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindSocketCreation:
		return "socket creation"
	case KindBind:
		return "bind"
	case KindConnect:
		return "connect"
	case KindAccept:
		return "accept"
	case KindPoll:
		return "poll"
	case KindTransfer:
		return "transfer"
	default:
		return "unknown"
	}
}

var (
	// ErrConnectionClosed is returned by Receive when the peer ended the stream.
	// It is an expected outcome, not a fault.
	ErrConnectionClosed = E.New("connection closed by peer")
	ErrNotRegistered    = E.New("handle not registered")
	ErrNoCandidates     = E.New("no handles to poll")
	ErrDescriptorRange  = E.New("descriptor exceeds descriptor-set capacity")
	ErrNoEndpoint       = E.New("no usable endpoint")
	ErrUnsupported      = E.New("unsupported platform")
)

// OpError is returned by every failed establishment, poll and transfer call.
type OpError struct {
	Kind   Kind
	Op     string
	Handle Handle
	Err    error
}

func (e *OpError) Error() string {
	message := "socket " + e.Op
	if e.Handle != InvalidHandle {
		message += " " + e.Handle.String()
	}
	if e.Err != nil {
		message += ": " + e.Err.Error()
	}
	return message
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func newError(kind Kind, op string, handle Handle, err error) *OpError {
	return &OpError{Kind: kind, Op: op, Handle: handle, Err: err}
}

// IsKind reports whether err is an OpError of the given kind.
func IsKind(err error, kind Kind) bool {
	var opErr *OpError
	if errors.As(err, &opErr) {
		return opErr.Kind == kind
	}
	return false
}
