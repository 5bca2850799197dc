// Package session models server-tracked login sessions and normalizes the
// wire shapes the back-office API returns for them.
//
// # Wire tolerance
//
// GET /auth/sessions has historically answered in four shapes: a bare array,
// {"sessions": [...]}, {"data": [...]}, and {"data": {"sessions": [...]}}.
// [Normalize] matches these shapes exhaustively and produces one canonical
// list. Entries arrive with "id", "tokenId", or both, and with "lastUsed" or
// "lastUsedAt"; reconciliation happens here, once, so no consumer ever sees
// a half-keyed record.
//
// # What this package must NOT do
//
//   - Issue network requests (the client owns fetching and caching).
//   - Import authcore.
package session
