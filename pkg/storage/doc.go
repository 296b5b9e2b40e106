// Package storage provides a keyed JSON blob store with pluggable backends.
//
// A Storage[T] reads and writes a single JSON document under one key:
//
//	cart := storage.New[CartState]("shopping_cart")
//	state, ok := cart.Get()
//	cart.Set(state)
//	cart.Reset()
//
// Get never fails: malformed JSON and backend errors are logged and reported
// as "no value". Set and Reset log failures instead of returning them.
//
// # Backends
//
// Without WithBackend, a process-wide in-memory backend is used. Values
// stored there survive only for the life of the process, which is the
// expected behaviour during server rendering. Persistent backends:
//
//	storage.NewSQLBackend(db, storage.WithSQLDialect(storage.DialectPostgreSQL))
//	storage.NewS3Backend(s3.NewFromConfig(cfg), "bucket", "carts/")
//
// Each server-rendering request should be given its own NewMemoryBackend so
// that no state crosses requests.
package storage
