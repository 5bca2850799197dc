// Package authcore is the client-side authentication and authorization core
// of the Gemdesk back-office: token custody, the login state machine
// (including two-factor and backup-code challenges), per-shop permission
// resolution, server-session management, and user activity tracking.
//
// The package is a state container, not a server: it calls the back-office
// API and holds the resulting auth state for the UI. [Client] methods are
// safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Client], [Builder], [Config],
// and value types (AuthState, ShopAccess, ActiveSession, etc.), plus the
// permission, token, session, and store sub-packages. The REST transport,
// audit dispatch, and metrics plumbing live under internal/ and are never
// exported.
//
// # What this package must NOT do
//
//   - Expose raw tokens through any read path other than the persistence
//     store it was configured with.
//   - Make authorization decisions server-side semantics depend on: Can and
//     friends gate UI affordances only; the backend re-checks every call.
//   - Retry failed logins, refreshes, or logouts on its own. Retry policy
//     belongs to the caller.
package authcore
