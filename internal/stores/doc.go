// Package stores defines the storefront's state containers: products,
// cart and UI. Each has a state type, a closed set of actions and a pure
// reducer; New* constructors wrap them in a store.Store.
//
// Reducers never mutate their input. Actions that would leave the state
// unchanged return it as is, so the store skips notification.
package stores
