package hooks

import "github.com/vango-dev/storefront/pkg/observer"

// RouterView is the read side shared by router.Router and
// router.ServerRouter.
type RouterView[H any] interface {
	Subscribe(l observer.Listener) func()
	Query() map[string]string
	Params() map[string]string
	Target() H
}

type routerSource[H any] struct {
	rt RouterView[H]
}

func (s routerSource[H]) Subscribe(l observer.Listener) func() {
	return s.rt.Subscribe(l)
}

func (s routerSource[H]) Snapshot() RouterView[H] {
	return s.rt
}

// UseRouter selects from either router flavour.
func UseRouter[H, R any](rt RouterView[H], sel func(RouterView[H]) R) *Selection[R] {
	return Select[RouterView[H], R](routerSource[H]{rt: rt}, sel)
}

// RouterQuery selects the current query. The map is stable until a key or
// value changes.
func RouterQuery[H any](rt RouterView[H]) *Selection[map[string]string] {
	return UseRouter(rt, func(v RouterView[H]) map[string]string { return v.Query() })
}

// RouterParams selects the current route params.
func RouterParams[H any](rt RouterView[H]) *Selection[map[string]string] {
	return UseRouter(rt, func(v RouterView[H]) map[string]string { return v.Params() })
}

// CurrentPage selects the current route's handler.
func CurrentPage[H any](rt RouterView[H]) *Selection[H] {
	return UseRouter(rt, func(v RouterView[H]) H { return v.Target() })
}
