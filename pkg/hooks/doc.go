// Package hooks connects page code to stores and routers.
//
// Selections read a slice of a Source and only notify when that slice
// changes shallowly, so a page that depends on the cart count does not
// re-render when an unrelated cart field changes:
//
//	count := hooks.UseStore(cart, func(s CartState) int { return len(s.Items) })
//	count.Subscribe(render)
//	count.Get() // stable until the number of items changes
//
// The memo helpers cache values, functions and rendered output by a
// dependency list or by props, compared shallowly (Memo, Component) or
// deeply (NewDeepMemo, DeepComponent). AutoCallback keeps one function
// value for the lifetime of a page while calling whatever closure was
// passed to it last.
package hooks
