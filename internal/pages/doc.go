// Package pages renders the storefront pages: the product list, the
// product detail and the not found page.
//
// Pages are plain functions returning HTML, wrapped with the lifecycle
// registry of an app.Context so that they load their data on mount and
// reload it when the router query or params they watch change. Register
// adds them to the context's router.
package pages
