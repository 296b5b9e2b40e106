package hooks

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/vango-dev/storefront/pkg/equal"
)

// Memo caches a computed value until its dependency list changes.
type Memo[T any] struct {
	mu     sync.Mutex
	equals equal.Func
	init   bool
	deps   []any
	value  T
}

// NewMemo creates a Memo that compares dependency lists shallowly.
func NewMemo[T any]() *Memo[T] {
	return &Memo[T]{equals: equal.Shallow}
}

// NewDeepMemo creates a Memo that compares dependency lists deeply.
func NewDeepMemo[T any]() *Memo[T] {
	return &Memo[T]{equals: equal.Deep}
}

// Get returns the cached value, calling factory first when this is the
// first call or deps differ from the previous call's.
func (m *Memo[T]) Get(deps []any, factory func() T) T {
	m.mu.Lock()
	if m.init && m.equals(deps, m.deps) {
		v := m.value
		m.mu.Unlock()
		return v
	}
	m.mu.Unlock()

	v := factory()

	m.mu.Lock()
	m.init = true
	m.deps = append([]any(nil), deps...)
	m.value = v
	m.mu.Unlock()
	return v
}

// Callback keeps a function stable until its dependencies change.
type Callback[F any] struct {
	memo *Memo[F]
}

// NewCallback creates an empty Callback.
func NewCallback[F any]() *Callback[F] {
	return &Callback[F]{memo: NewMemo[F]()}
}

// Get returns the function cached for deps, storing fn when deps changed.
func (c *Callback[F]) Get(fn F, deps []any) F {
	return c.memo.Get(deps, func() F { return fn })
}

// AutoCallback hands out one function value that always forwards to the
// most recent fn passed to Get. Unlike Callback it has no dependency list.
type AutoCallback[F any] struct {
	mu     sync.Mutex
	latest reflect.Value
	stable F
}

// NewAutoCallback creates an AutoCallback forwarding to fn. It panics when
// F is not a function type.
func NewAutoCallback[F any](fn F) *AutoCallback[F] {
	t := reflect.TypeFor[F]()
	if t.Kind() != reflect.Func {
		panic(fmt.Sprintf("hooks: AutoCallback of non-function type %s", t))
	}
	a := &AutoCallback[F]{latest: reflect.ValueOf(fn)}
	a.stable = reflect.MakeFunc(t, a.call).Interface().(F)
	return a
}

// Get records fn as the function to forward to and returns the stable one.
func (a *AutoCallback[F]) Get(fn F) F {
	a.mu.Lock()
	a.latest = reflect.ValueOf(fn)
	a.mu.Unlock()
	return a.stable
}

func (a *AutoCallback[F]) call(args []reflect.Value) []reflect.Value {
	a.mu.Lock()
	fn := a.latest
	a.mu.Unlock()

	if !fn.IsValid() || fn.IsNil() {
		panic("hooks: AutoCallback called with a nil function")
	}
	if fn.Type().IsVariadic() {
		return fn.CallSlice(args)
	}
	return fn.Call(args)
}

// Component memoizes render by its props: the previous output is reused
// while the props are shallowly equal.
func Component[P, R any](render func(P) R) func(P) R {
	return memoComponent(render, equal.Shallow)
}

// DeepComponent memoizes render by deeply equal props.
func DeepComponent[P, R any](render func(P) R) func(P) R {
	return memoComponent(render, equal.Deep)
}

func memoComponent[P, R any](render func(P) R, equals equal.Func) func(P) R {
	var (
		mu     sync.Mutex
		has    bool
		props  P
		output R
	)
	return func(next P) R {
		mu.Lock()
		if has && equals(props, next) {
			props = next
			out := output
			mu.Unlock()
			return out
		}
		mu.Unlock()

		out := render(next)

		mu.Lock()
		has = true
		props = next
		output = out
		mu.Unlock()
		return out
	}
}
