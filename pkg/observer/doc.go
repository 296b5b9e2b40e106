// Package observer provides the publish/subscribe primitive used by every
// reactive piece of the storefront runtime.
//
// An Observer holds a set of listeners. Notify invokes each current
// listener synchronously, in registration order. Listener identity is
// interface equality, so registering the same listener twice has no effect:
//
//	obs := observer.New()
//	render := observer.Func(func() { fmt.Println("changed") })
//	unsubscribe := obs.Subscribe(render)
//	obs.Subscribe(render) // no-op
//	obs.Notify()          // prints once
//	unsubscribe()
//
// Stores, routers and selections all embed an Observer and expose its
// Subscribe method.
package observer
