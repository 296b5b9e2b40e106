// Package equal implements the structural comparisons that suppress
// redundant notifications in the storefront runtime.
//
// Three comparators are provided, all total over arbitrary values:
//
//   - Is reports identity: scalars by value (NaN is NaN, +0 is not -0),
//     pointers, maps and channels by address, functions by the closure they
//     refer to, slices by address and length. Structs and arrays have no identity of their own in Go, so
//     Is compares them field by field with Is.
//   - Shallow reports one-level structural equality: two slices, maps,
//     structs or non-nil pointers are equal when their elements are
//     pairwise identical under Is.
//   - Deep applies the Shallow algorithm recursively.
//
// Selectors are expected to return flat projections, so the hook layer uses
// Shallow. Deep is reserved for explicit opt-in memoization of nested values.
package equal
