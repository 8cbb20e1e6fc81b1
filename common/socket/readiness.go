package socket

import "sort"

// ReadinessSet is the result of one poll: the candidates that were ready at
// the instant of the query. It does not follow later state changes.
type ReadinessSet struct {
	handles []Handle
}

func newReadinessSet(handles []Handle) ReadinessSet {
	return ReadinessSet{handles: handles}
}

func (s ReadinessSet) Contains(handle Handle) bool {
	for _, ready := range s.handles {
		if ready == handle {
			return true
		}
	}
	return false
}

// Handles returns the ready handles in ascending order.
func (s ReadinessSet) Handles() []Handle {
	return append([]Handle(nil), s.handles...)
}

func (s ReadinessSet) Len() int {
	return len(s.handles)
}

func (s ReadinessSet) IsEmpty() bool {
	return len(s.handles) == 0
}

func sortHandles(handles []Handle) {
	sort.Slice(handles, func(i, j int) bool {
		return handles[i] < handles[j]
	})
}
