package authcore

import (
	"context"
	"errors"
	"fmt"

	gocache "github.com/patrickmn/go-cache"

	"github.com/gemdesk/authcore/session"
)

const sessionCacheKey = "sessions.list"

// Sessions returns the normalized active-session list. Results are cached
// for SessionCache.TTL; a fetch superseded by a revoke or logout while in
// flight is still returned to its caller but never published to the cache.
func (c *Client) Sessions(ctx context.Context) ([]ActiveSession, error) {
	if !c.isAuthenticated() {
		return nil, ErrNotAuthenticated
	}

	if cached, ok := c.sessionCache.Get(sessionCacheKey); ok {
		if list, ok := cached.([]ActiveSession); ok {
			return cloneSessions(list), nil
		}
	}

	gen := c.sessionGen.Add(1)

	raw, err := c.api.Sessions(ctx, c.tokens.AccessToken())
	if err != nil {
		return nil, c.translate(err)
	}

	list, err := session.Normalize(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if c.sessionGen.Load() != gen {
		// Superseded while in flight; do not publish a stale list.
		c.metric(MetricSessionListStale)
		return list, nil
	}

	c.sessionCache.Set(sessionCacheKey, cloneSessions(list), gocache.DefaultExpiration)
	c.metric(MetricSessionListFetched)
	return list, nil
}

// RevokeSession terminates one session by token id. Removal from the cached
// list matches by either identity key, since the backend is inconsistent
// about which one it returns. Revoking a session the server no longer
// tracks is a no-op success; any other failure leaves the cached list
// untouched. No optimistic removal.
func (c *Client) RevokeSession(ctx context.Context, tokenID string) error {
	if tokenID == "" {
		return fmt.Errorf("%w: token id is required", ErrValidation)
	}
	if !c.isAuthenticated() {
		return ErrNotAuthenticated
	}

	if err := c.api.RevokeSession(ctx, c.tokens.AccessToken(), tokenID); err != nil {
		terr := c.translate(err)
		if errors.Is(terr, ErrSessionNotFound) {
			// Already gone server-side: converge the local view.
			c.dropCachedSession(tokenID)
			return nil
		}
		c.emitAudit(ctx, auditEventSessionRevoked, false, terr, func() map[string]string {
			return map[string]string{"token_id": tokenID}
		})
		return terr
	}

	c.dropCachedSession(tokenID)
	c.metric(MetricSessionRevoked)
	c.emitAudit(ctx, auditEventSessionRevoked, true, nil, func() map[string]string {
		return map[string]string{"token_id": tokenID}
	})
	return nil
}

// Logout invalidates the current session server-side and clears all local
// state. The local clear is unconditional: a user who asked to log out is
// never left authenticated locally because the server was unreachable. Only
// transport failures are reported back, after the clear.
func (c *Client) Logout(ctx context.Context) error {
	access := c.tokens.AccessToken()

	var terr error
	if access != "" {
		terr = c.translate(c.api.Logout(ctx, access))
	}

	c.clearLocal(ctx)
	c.metric(MetricLogout)
	c.emitAudit(ctx, auditEventLogout, terr == nil, terr, nil)

	if terr != nil && KindOf(terr) == KindNetwork {
		return terr
	}
	return nil
}

// LogoutAll invalidates every session of the account and clears all local
// state with the same unconditional semantics as Logout. After it returns,
// a single State/Can read observes anonymous, no shop accesses, and
// all-false permissions; there is no partial-clear window.
func (c *Client) LogoutAll(ctx context.Context) error {
	access := c.tokens.AccessToken()

	var terr error
	if access != "" {
		terr = c.translate(c.api.LogoutAll(ctx, access))
	}

	c.clearLocal(ctx)
	c.metric(MetricLogoutAll)
	c.emitAudit(ctx, auditEventLogoutAll, terr == nil, terr, nil)

	if terr != nil && KindOf(terr) == KindNetwork {
		return terr
	}
	return nil
}

// dropCachedSession removes a session from the cached list by either
// identity key and supersedes any list fetch still in flight.
func (c *Client) dropCachedSession(key string) {
	c.sessionGen.Add(1)

	cached, ok := c.sessionCache.Get(sessionCacheKey)
	if !ok {
		return
	}
	list, ok := cached.([]ActiveSession)
	if !ok {
		return
	}

	out := make([]ActiveSession, 0, len(list))
	for _, s := range list {
		if s.Matches(key) {
			continue
		}
		out = append(out, s)
	}
	c.sessionCache.Set(sessionCacheKey, out, gocache.DefaultExpiration)
}

func cloneSessions(list []ActiveSession) []ActiveSession {
	out := make([]ActiveSession, len(list))
	copy(out, list)
	return out
}
