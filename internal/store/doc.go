// Package store provides a uniform key-value interface over relational
// databases.
//
// Values are stored under a (namespace, key) pair in a single table whose
// statements come from a dialect.Dialect. The store holds:
//   - one connection, owned (opened from a descriptor) or borrowed (injected)
//   - one default namespace
//   - one rendered statement table
//   - one value codec stamping rows in the configured time zone
//
// # Lifecycle
//
// A Store is Open until Close is called; Closed is terminal and every
// operation afterwards returns ErrClosed. Close only closes connections the
// store opened itself.
//
// # Errors
//
// Core methods return errors so callers can tell the failure kinds apart:
//   - ErrUnavailable: no connection bound at call time
//   - ErrClosed: the store was closed
//   - *ConnectionError: descriptor malformed or backend unreachable (Open)
//   - *BackendError: a statement failed; nothing was committed
//   - *SerializationError: a value could not be encoded or decoded
//   - *ValidationError: key, namespace or encoded value out of bounds
//
// Lenient wraps a Store with the legacy contract: never return an error, log
// it and return nil, an empty collection or false instead.
//
// # Concurrency
//
// A Store is not safe for concurrent use. Use one store per worker or guard
// it with an external lock. Timeouts and cancellation come from ctx and the
// driver; the store adds no policy of its own.
package store
