// Package lifecycle gives page functions mount, unmount and watch hooks.
//
// A Registry tracks which page is current. Entering a page that is not
// current unmounts the previous page and mounts the new one. Entering the
// current page again evaluates its watches: each watch returns a list of
// dependencies, and its callback runs when the list differs from the one
// cached at the previous evaluation. The first evaluation after a mount only
// fills the cache.
//
//	home := lifecycle.Wrap(reg, lifecycle.Hooks{
//	    OnMount: svc.LoadProducts,
//	    Watches: []lifecycle.Watch{{
//	        Deps:     func() []any { q := rt.Query(); return []any{q["search"], q["sort"]} },
//	        Callback: svc.LoadProducts,
//	    }},
//	}, renderHome)
//
// Records live in an arena owned by the Registry and are addressed by
// Handle, so a page's identity does not depend on function comparison.
package lifecycle
