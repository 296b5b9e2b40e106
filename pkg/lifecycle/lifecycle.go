package lifecycle

import (
	"sync"

	"github.com/vango-dev/storefront/pkg/equal"
)

// Watch re-runs Callback when the values returned by Deps change.
type Watch struct {
	Deps     func() []any
	Callback func()
}

// Hooks are the lifecycle callbacks of one page. Every field is optional.
type Hooks struct {
	OnMount   func()
	OnUnmount func()
	Watches   []Watch
}

// Handle identifies a page registered with a Registry.
type Handle int

type record struct {
	hooks   Hooks
	mounted bool
	// deps holds the last evaluated dependencies per watch index. A missing
	// entry means the watch has not been evaluated since the last mount.
	deps map[int][]any
}

// Registry is the lifecycle arena of one environment.
type Registry struct {
	mu      sync.Mutex
	records []*record
	current Handle
	active  bool
}

// NewRegistry creates an empty Registry with no current page.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a page and returns its handle.
func (r *Registry) Register(h Hooks) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = append(r.records, &record{hooks: h, deps: map[int][]any{}})
	return Handle(len(r.records) - 1)
}

// Current returns the current page, if any.
func (r *Registry) Current() (Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current, r.active
}

// Mounted reports whether h is mounted.
func (r *Registry) Mounted(h Handle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.lookup(h)
	return rec != nil && rec.mounted
}

// Enter makes h the current page. Switching pages unmounts the previous one
// and mounts h; entering the current page again evaluates its watches.
// Callbacks run without the registry lock held.
func (r *Registry) Enter(h Handle) {
	r.mu.Lock()
	rec := r.lookup(h)
	if rec == nil {
		r.mu.Unlock()
		panic("lifecycle: unknown handle")
	}

	if r.active && r.current == h {
		r.mu.Unlock()
		r.evaluate(rec)
		return
	}

	var unmount func()
	if r.active {
		if prev := r.lookup(r.current); prev != nil && prev.mounted {
			prev.mounted = false
			unmount = prev.hooks.OnUnmount
		}
	}
	r.current = h
	r.active = true

	var mount func()
	if !rec.mounted {
		rec.mounted = true
		rec.deps = map[int][]any{}
		mount = rec.hooks.OnMount
	}
	r.mu.Unlock()

	if unmount != nil {
		unmount()
	}
	if mount != nil {
		mount()
	}
}

// Leave unmounts the current page and clears it. It is used when an
// environment shuts down.
func (r *Registry) Leave() {
	r.mu.Lock()
	var unmount func()
	if r.active {
		if rec := r.lookup(r.current); rec != nil && rec.mounted {
			rec.mounted = false
			unmount = rec.hooks.OnUnmount
		}
	}
	r.active = false
	r.mu.Unlock()

	if unmount != nil {
		unmount()
	}
}

// evaluate runs each watch of rec in order. A callback fires only when a
// cached dependency list exists and differs from the new one.
func (r *Registry) evaluate(rec *record) {
	for i, w := range rec.hooks.Watches {
		if w.Deps == nil {
			continue
		}
		next := w.Deps()

		r.mu.Lock()
		prev, cached := rec.deps[i]
		changed := cached && next != nil && !equal.Slices(next, prev)
		rec.deps[i] = append([]any{}, next...)
		r.mu.Unlock()

		if changed && w.Callback != nil {
			w.Callback()
		}
	}
}

func (r *Registry) lookup(h Handle) *record {
	if h < 0 || int(h) >= len(r.records) {
		return nil
	}
	return r.records[h]
}

// Wrap registers hooks with reg and returns page wrapped so that every call
// enters the page before running it. The page's result is returned as is.
func Wrap[R any](reg *Registry, hooks Hooks, page func() R) func() R {
	h := reg.Register(hooks)
	return func() R {
		reg.Enter(h)
		return page()
	}
}
