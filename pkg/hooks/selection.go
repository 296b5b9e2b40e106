package hooks

import (
	"sync"

	"github.com/vango-dev/storefront/pkg/observer"
	"github.com/vango-dev/storefront/pkg/store"
)

// Source is anything with a current value and change notifications.
// Stores, storages, routers and ShallowState all satisfy it.
type Source[T any] interface {
	Subscribe(l observer.Listener) func()
	Snapshot() T
}

// Selection is a shallowly memoized slice of a Source.
type Selection[S any] struct {
	read  func() S
	cache shallowCache[S]
	obs   *observer.Observer

	mu     sync.Mutex
	cancel func()
}

// Select derives a Selection from src using sel.
func Select[T, S any](src Source[T], sel func(T) S) *Selection[S] {
	s := &Selection[S]{
		read: func() S { return sel(src.Snapshot()) },
		obs:  observer.New(),
	}
	s.Get()
	s.cancel = src.Subscribe(observer.Func(s.changed))
	return s
}

// Get returns the selected value. The same value is returned for as long as
// each fresh selection is shallowly equal to it.
func (s *Selection[S]) Get() S {
	return s.cache.update(s.read())
}

// Subscribe registers l to run when the selected value changes.
func (s *Selection[S]) Subscribe(l observer.Listener) func() {
	return s.obs.Subscribe(l)
}

// Snapshot returns Get so selections can be chained.
func (s *Selection[S]) Snapshot() S {
	return s.Get()
}

// Close detaches the selection from its source.
func (s *Selection[S]) Close() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (s *Selection[S]) changed() {
	before := s.cache.currentVersion()
	s.Get()
	if s.cache.currentVersion() != before {
		s.obs.Notify()
	}
}

// UseStore selects from a store.
func UseStore[S, A, R any](st *store.Store[S, A], sel func(S) R) *Selection[R] {
	return Select[S, R](st, sel)
}

// Identity returns its argument. It is the default selector.
func Identity[T any](v T) T {
	return v
}
