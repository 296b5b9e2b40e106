package hooks

import (
	"sync"

	"github.com/vango-dev/storefront/pkg/equal"
	"github.com/vango-dev/storefront/pkg/observer"
)

// ShallowState is a settable value that ignores shallowly equal updates.
type ShallowState[T any] struct {
	mu    sync.RWMutex
	value T
	obs   *observer.Observer
}

// NewShallowState creates a ShallowState holding initial.
func NewShallowState[T any](initial T) *ShallowState[T] {
	return &ShallowState[T]{value: initial, obs: observer.New()}
}

// Get returns the current value.
func (s *ShallowState[T]) Get() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Snapshot returns Get.
func (s *ShallowState[T]) Snapshot() T {
	return s.Get()
}

// Set replaces the value and notifies subscribers, unless v is shallowly
// equal to the current value. It reports whether the value changed.
func (s *ShallowState[T]) Set(v T) bool {
	s.mu.Lock()
	if equal.Shallow(s.value, v) {
		s.mu.Unlock()
		return false
	}
	s.value = v
	s.mu.Unlock()

	s.obs.Notify()
	return true
}

// Subscribe registers l for changes.
func (s *ShallowState[T]) Subscribe(l observer.Listener) func() {
	return s.obs.Subscribe(l)
}
