// Package ssr renders storefront pages on the server.
//
// Every request gets its own server router, stores and lifecycle
// registry. The data the page needs is fetched before rendering, applied
// to the request's product store and embedded in the response as
// window.__INITIAL_DATA__ so that the live session starts from the same
// state.
package ssr
