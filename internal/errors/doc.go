// Package errors provides the coded application errors of the storefront.
//
// Every error has a code (e.g. "SF020") registered with a category, a short
// message and a longer explanation:
//
//	err := errors.New("SF020").
//	    WithDetail("no product with id 85067212996").
//	    Wrap(catalog.ErrNotFound)
//
//	fmt.Println(err.Format())
//	// ERROR SF020: Product not found
//	//
//	//   no product with id 85067212996
//
// # Error Categories
//
//   - config: configuration loading and validation
//   - catalog: product data source failures
//   - hydration: initial data handed from the server render to a live session
//   - protocol: live session messages
//   - storage: persistence backends
//   - runtime: rendering and session failures
//   - cli: command line failures
//
// Codes are grouped in ranges per category; see registry.go.
package errors
