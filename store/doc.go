// Package store provides the durable key/value persistence behind the
// client: tokens and the last-selected shop survive process restarts through
// a [StateStore].
//
// Two backends ship with the module: [Memory] for tests and single-process
// embedding, and [Redis] for deployments where the back office runs behind a
// shared edge process. The client treats the store as best-effort durable:
// a failed write never blocks an auth transition, it only degrades the next
// Initialize to a fresh login.
//
// # What this package must NOT do
//
//   - Interpret the values it stores (tokens are opaque strings here).
//   - Import authcore or the REST layer.
package store
