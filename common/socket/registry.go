package socket

import (
	"sync"
)

// Registry is the set of currently open handles. A handle is a member from the
// moment it is opened or accepted until it is closed.
type Registry struct {
	access  sync.Mutex
	handles map[Handle]struct{}
}

func NewRegistry() *Registry {
	return &Registry{handles: make(map[Handle]struct{})}
}

// Register adds handle and reports whether it was not already a member.
func (r *Registry) Register(handle Handle) bool {
	r.access.Lock()
	defer r.access.Unlock()
	if r.handles == nil {
		r.handles = make(map[Handle]struct{})
	}
	if _, loaded := r.handles[handle]; loaded {
		return false
	}
	r.handles[handle] = struct{}{}
	return true
}

// Unregister removes handle and reports whether it was a member.
func (r *Registry) Unregister(handle Handle) bool {
	r.access.Lock()
	defer r.access.Unlock()
	if _, loaded := r.handles[handle]; !loaded {
		return false
	}
	delete(r.handles, handle)
	return true
}

func (r *Registry) Contains(handle Handle) bool {
	r.access.Lock()
	defer r.access.Unlock()
	_, loaded := r.handles[handle]
	return loaded
}

// Snapshot returns the current members in ascending order.
func (r *Registry) Snapshot() []Handle {
	r.access.Lock()
	handles := make([]Handle, 0, len(r.handles))
	for handle := range r.handles {
		handles = append(handles, handle)
	}
	r.access.Unlock()
	sortHandles(handles)
	return handles
}

func (r *Registry) Len() int {
	r.access.Lock()
	defer r.access.Unlock()
	return len(r.handles)
}
