package socket

import (
	"github.com/sagernet/sockets/common/control"
	"github.com/sagernet/sockets/common/log"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// Resolver defaults to DefaultResolver.
	Resolver Resolver
	// Clock drives the idle deadline of Receive and Send.
	Clock clock.Clock
	// Logger receives lifecycle events at debug level. Failures are returned, never logged.
	Logger  logrus.FieldLogger
	Metrics *Metrics
	// ListenerControl runs on every listening socket before bind.
	ListenerControl control.Func
	// ConnectControl runs on every connecting socket before connect.
	ConnectControl control.Func
}

func (o Options) withDefaults() Options {
	if o.Resolver == nil {
		o.Resolver = &DefaultResolver{}
	}
	if o.Clock == nil {
		o.Clock = clock.New()
	}
	if o.Logger == nil {
		o.Logger = log.NewLogger("socket")
	}
	return o
}
