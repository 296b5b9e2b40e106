package hooks

import (
	"sync"

	"github.com/vango-dev/storefront/pkg/equal"
)

// shallowCache holds the last selected value and replaces it only when a
// new value is not shallowly equal.
type shallowCache[S any] struct {
	mu      sync.Mutex
	value   S
	has     bool
	version uint64
}

// update stores next unless it is shallowly equal to the cached value, and
// returns the cached value.
func (c *shallowCache[S]) update(next S) S {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.has || !equal.Shallow(c.value, next) {
		c.value = next
		c.has = true
		c.version++
	}
	return c.value
}

func (c *shallowCache[S]) currentVersion() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// ShallowSelector wraps sel so that it returns its previous result whenever
// the new result is shallowly equal to it.
func ShallowSelector[T, S any](sel func(T) S) func(T) S {
	c := &shallowCache[S]{}
	return func(state T) S {
		return c.update(sel(state))
	}
}
