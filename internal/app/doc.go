// Package app wires the storefront runtime for one environment: a live
// session or a single server render.
//
// A Context owns the product, cart and UI stores, the router, the page
// lifecycle registry, the scheduler loop and the cart storage. Nothing is
// global; every session and every request builds its own Context.
//
// The use cases of the storefront (loading products, changing filters,
// editing the cart, showing toasts) are methods on Context. They dispatch
// into the stores and the router. Pages read through the View selections,
// and Subscribe follows those, so state no page shows never triggers a
// render. Rendering itself is the caller's concern.
//
//	c := app.New(rt, catalog.Default(), app.WithLoop(loop))
//	pages.Register(c)
//	c.Subscribe(scheduler.Batch(loop, render))
package app
