// Package catalog is the product data source of the storefront.
//
// Three pieces share the Client interface:
//
//   - Memory serves products held in memory, loaded from a JSON or YAML
//     fixture (or the built-in one) and optionally reloaded on change.
//   - HTTPClient talks to a remote product API.
//   - Handler exposes any Client as the /api HTTP surface.
//
// Queries follow the product API conventions: page (or current), limit,
// search, category1, category2 and sort.
package catalog
