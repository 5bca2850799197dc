// Package metrics implements the in-process counter set for the client.
// Counters are atomic, cache-line padded, and free when disabled, so the
// façade can increment them on every permission read without cost concerns.
package metrics
