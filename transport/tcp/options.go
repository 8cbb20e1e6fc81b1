package tcp

import (
	"time"

	"github.com/sirupsen/logrus"
)

type Option func(*Listener)

// WithBacklog sets the queue length of pending connections.
func WithBacklog(backlog int) Option {
	return func(listener *Listener) {
		listener.backlog = backlog
	}
}

// WithPollInterval bounds how long one readiness poll waits, which is also
// how quickly Close is noticed.
func WithPollInterval(interval time.Duration) Option {
	return func(listener *Listener) {
		listener.pollInterval = interval
	}
}

func WithLogger(logger logrus.FieldLogger) Option {
	return func(listener *Listener) {
		listener.logger = logger
	}
}
