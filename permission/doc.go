// Package permission implements the closed permission-key model for the
// back-office screens and the per-shop bitmask sets resolved from it.
//
// # Key model
//
// Permission keys are a fixed enumeration ([Key] constants) rather than loose
// strings. A [Registry] maps each key to a bit position inside a 256-bit [Set]
// and is frozen during client construction, so a typo'd key fails the bit
// lookup instead of silently matching a stray map entry. Lookups against a
// Set are default-deny: an unregistered or unset key is always false.
//
// # Architecture boundaries
//
// This package owns key registration and set arithmetic only. Which shop's
// set is currently effective, and when it is recomputed, is decided by the
// authcore client.
//
// # What this package must NOT do
//
//   - Perform I/O or touch the REST layer.
//   - Import authcore or any of its subpackages.
//   - Interpret account-level roles (roles and shop permissions must not be
//     conflated).
package permission
