// Package scheduler provides the single-threaded work loop each storefront
// environment runs on, and render batching on top of it.
//
// A Loop has two queues. Tasks arrive from any goroutine through Dispatch
// and are executed one at a time by Run. Microtasks are queued with Defer
// and drained by Flush, which Run calls after every task. This mirrors the
// way a browser runs one event handler and then drains its microtask queue
// before painting.
//
// Batch coalesces notifications: however many times a Batched is triggered
// during one task, its function runs once, after the task's synchronous
// work:
//
//	render := scheduler.Batch(loop, page.Render)
//	products.Subscribe(render)
//	cart.Subscribe(render)
//
//	loop.Dispatch(func() {
//	    products.Dispatch(setLoading{})
//	    cart.Dispatch(addItem{})
//	}) // page.Render runs once
//
// Server-side rendering has no Run loop; it calls Flush directly after the
// synchronous pass.
package scheduler
