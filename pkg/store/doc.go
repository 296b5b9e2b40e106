// Package store provides the reducer-driven state container that is the
// single source of truth for a feature domain (products, cart, UI).
//
// A Store applies a reducer to every dispatched action and notifies its
// subscribers only when the reducer returns a value that is not identical
// to the current state:
//
//	counter := store.New(func(n int, a Action) int {
//	    switch a.(type) {
//	    case Increment:
//	        return n + 1
//	    }
//	    return n
//	}, 0)
//
//	counter.Subscribe(observer.Func(render))
//	counter.Dispatch(Increment{}) // render runs
//	counter.Dispatch(Noop{})      // state unchanged, render does not run
//
// Identity is decided by equal.Is, so reducers should return the incoming
// state untouched for actions they ignore and a new value otherwise.
//
// Stores are created explicitly, typically by an application context per
// live session or per server-rendering request, never as package-level
// singletons.
package store
