package socket

import "strconv"

// Handle is the descriptor of one open stream socket. A handle is owned by the
// Manager that produced it and must be closed through that Manager.
type Handle int

const InvalidHandle Handle = -1

func (h Handle) String() string {
	return "socket#" + strconv.Itoa(int(h))
}
