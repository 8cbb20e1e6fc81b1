package socket

import (
	"errors"

	"github.com/sagernet/sockets/common/control"
	E "github.com/sagernet/sockets/common/exceptions"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"
)

// Manager owns the registry of open handles and every operation that adds to
// or removes from it. Registry access is serialized, so a Manager may be
// shared between goroutines; Receive and Send on one handle must still not run
// concurrently, or their bytes would interleave.
type Manager struct {
	registry        *Registry
	resolver        Resolver
	clock           clock.Clock
	logger          logrus.FieldLogger
	metrics         *Metrics
	listenerControl control.Func
	connectControl  control.Func
}

func NewManager(options Options) *Manager {
	options = options.withDefaults()
	return &Manager{
		registry:        NewRegistry(),
		resolver:        options.Resolver,
		clock:           options.Clock,
		logger:          options.Logger,
		metrics:         options.Metrics,
		listenerControl: options.ListenerControl,
		connectControl:  options.ConnectControl,
	}
}

func (m *Manager) Registry() *Registry {
	return m.registry
}

func (m *Manager) register(handle Handle, event string) {
	if m.registry.Register(handle) {
		m.metrics.opened()
	}
	m.logger.WithField("handle", int(handle)).Debug(event)
}

// CloseSocket closes handle and removes it from the registry.
func (m *Manager) CloseSocket(handle Handle) error {
	if !m.registry.Unregister(handle) {
		return E.Cause(ErrNotRegistered, "close ", handle)
	}
	m.metrics.closed()
	m.logger.WithField("handle", int(handle)).Debug("closed")
	err := closeHandle(handle)
	if err != nil {
		return E.Cause(err, "close ", handle)
	}
	return nil
}

// Close closes every handle still in the registry. It is the shutdown
// counterpart of the establishment calls and leaves the registry empty.
func (m *Manager) Close() error {
	var errs []error
	for _, handle := range m.registry.Snapshot() {
		if err := m.CloseSocket(handle); err != nil && !errors.Is(err, ErrNotRegistered) {
			errs = append(errs, err)
		}
	}
	return E.Errors(errs...)
}
