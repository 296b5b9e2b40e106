package store

import (
	"sync"

	"github.com/vango-dev/storefront/pkg/equal"
	"github.com/vango-dev/storefront/pkg/observer"
)

// Reducer computes the next state for an action. It must return the
// incoming state unchanged for actions it does not handle.
type Reducer[S, A any] func(state S, action A) S

// Hook is called after every dispatch with the store name and whether the
// state changed.
type Hook func(name string, changed bool)

type options struct {
	name  string
	hooks []Hook
	obs   []observer.Option
}

// Option configures a Store.
type Option func(*options)

// WithName names the store for logging and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithDispatchHook registers a hook that runs after every dispatch.
func WithDispatchHook(h Hook) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, h)
	}
}

// WithObserverOptions configures the store's internal Observer.
func WithObserverOptions(opts ...observer.Option) Option {
	return func(o *options) {
		o.obs = append(o.obs, opts...)
	}
}

// Store holds a state value and replaces it through a reducer.
type Store[S, A any] struct {
	mu       sync.RWMutex
	state    S
	reducer  Reducer[S, A]
	observer *observer.Observer
	name     string
	hooks    []Hook
}

// New creates a Store with the given reducer and initial state.
func New[S, A any](reducer Reducer[S, A], initial S, opts ...Option) *Store[S, A] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	return &Store[S, A]{
		state:    initial,
		reducer:  reducer,
		observer: observer.New(o.obs...),
		name:     o.name,
		hooks:    o.hooks,
	}
}

// Name returns the store name set with WithName.
func (s *Store[S, A]) Name() string {
	return s.name
}

// State returns the current state. Callers must treat it as read-only.
func (s *Store[S, A]) State() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Snapshot returns the current state. It lets a Store act as a hooks.Source.
func (s *Store[S, A]) Snapshot() S {
	return s.State()
}

// Dispatch applies the reducer to action. Subscribers are notified only when
// the result is not identical to the current state. A panicking reducer
// leaves the state untouched and the panic propagates to the caller.
func (s *Store[S, A]) Dispatch(action A) {
	changed := s.reduce(action)

	for _, h := range s.hooks {
		h(s.name, changed)
	}

	if changed {
		s.observer.Notify()
	}
}

// reduce runs the reducer under the write lock so concurrent dispatches
// are serialized. Listeners run after the lock is released and may
// dispatch again.
func (s *Store[S, A]) reduce(action A) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.reducer(s.state, action)
	if equal.Is(next, s.state) {
		return false
	}
	s.state = next
	return true
}

// Subscribe registers l for change notifications and returns a function
// that removes it.
func (s *Store[S, A]) Subscribe(l observer.Listener) func() {
	return s.observer.Subscribe(l)
}
