// Package audit defines the structured event model and sinks for auth
// lifecycle auditing. Events are emitted by the client on every state
// transition (login, 2FA, refresh, logout, revoke, shop switch) and fanned
// out through a sink chosen at build time.
package audit
