// Package router implements the storefront's pattern-matching URL
// dispatcher in two flavours sharing one route table:
//
//   - Router, the long-lived client router. It is backed by a History,
//     re-resolves its route on every push or pop, and notifies subscribers.
//   - ServerRouter, the one-shot router built per server-rendering request.
//     It has no history, caches the request query, and never fails a render
//     because of a bad URL.
//
// # Route Templates
//
// A template is a path in which every ":name" segment captures one path
// segment:
//
//	r.AddRoute("/", home)
//	r.AddRoute("/product/:id/", detail)
//	r.AddRoute(".*", notFound)
//
// Templates compile to anchored regular expressions prefixed with the base
// path. Other regular-expression syntax in a template is kept as is, which
// is how the catch-all ".*" works. Matching walks the templates in
// registration order and the first match wins, so a catch-all must be added
// last. Re-adding a template replaces its handler and keeps its position.
//
// # Queries
//
// ParseQuery, StringifyQuery and BuildURL convert between query strings and
// map[string]string. Empty values are never written: SetQuery with
// {"search": ""} removes the search key from the URL.
//
//	r.SetQuery(map[string]string{"search": "젤리"}) // /?search=%EC%A0%A4%EB%A6%AC
//	r.SetQuery(map[string]string{"search": ""})     // /
//
// # Typed Access
//
// DecodeParams and DecodeQuery fill tagged structs from route params or a
// query:
//
//	type detailParams struct {
//	    ID string `param:"id"`
//	}
package router
