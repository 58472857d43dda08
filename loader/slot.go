package loader

import (
	"sync"
	"sync/atomic"
)

// Capability is the read side of a capability slot as seen by the loader.
type Capability interface {
	Ready() bool
	Installed() <-chan struct{}
}

// Slot holds a value installed exactly once by the loaded resource.
type Slot[T any] struct {
	once      sync.Once
	value     atomic.Pointer[T]
	installed chan struct{}
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{installed: make(chan struct{})}
}

// Install stores v if the slot is still empty and reports whether it did.
func (s *Slot[T]) Install(v T) bool {
	ok := false
	s.once.Do(func() {
		s.value.Store(&v)
		close(s.installed)
		ok = true
	})
	return ok
}

// Load returns the installed value.
func (s *Slot[T]) Load() (T, bool) {
	p := s.value.Load()
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Ready reports whether a value has been installed.
func (s *Slot[T]) Ready() bool {
	return s.value.Load() != nil
}

// Installed is closed when a value is installed.
func (s *Slot[T]) Installed() <-chan struct{} {
	return s.installed
}
