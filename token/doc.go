// Package token holds the client's credential strings and derives expiry
// information from JWT access tokens.
//
// # Credential exclusivity
//
// The [Store] keeps either a full access/refresh pair or a temp token issued
// for a pending two-factor challenge, never both. Setting one side clears the
// other, which is how the "at most one of {authenticated, 2FA-pending}"
// invariant is enforced at the storage level.
//
// # Expiry decoding
//
// Tokens are treated as opaque bearers except for the exp claim, which is
// read with an unverified parse. Signature verification is the server's job;
// the client only needs expiry for proactive refresh scheduling. Malformed
// tokens decode to "no expiry" rather than erroring.
//
// # What this package must NOT do
//
//   - Verify signatures or trust any claim for authorization decisions.
//   - Perform I/O (persistence is the store subpackage's concern).
//   - Import authcore.
package token
