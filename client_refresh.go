package authcore

import (
	"context"
	"errors"
	"fmt"

	"github.com/gemdesk/authcore/token"
)

// Initialize reconciles persisted tokens against the server at application
// start. With nothing persisted it resolves to anonymous without error.
// Stale or revoked persisted tokens are discarded silently (a lapsed login
// is not a failure); only transport problems surface, so the caller can
// retry on connectivity.
//
// Initialize runs at most once per client; later calls are no-ops.
func (c *Client) Initialize(ctx context.Context) error {
	if !c.initialized.CompareAndSwap(false, true) {
		return nil
	}

	c.mu.Lock()
	c.state.initializing = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.state.initializing = false
		c.mu.Unlock()
	}()

	access, refresh, ok := c.loadPersistedTokens(ctx)
	if !ok {
		return nil
	}

	if !token.Valid(access) {
		resp, err := c.api.Refresh(ctx, refresh)
		if err != nil {
			terr := c.translate(err)
			if KindOf(terr) == KindNetwork {
				// Allow a retry once connectivity returns.
				c.initialized.Store(false)
				return terr
			}
			c.discardPersisted(ctx)
			c.emitAudit(ctx, auditEventInitialize, false, terr, nil)
			return nil
		}
		access, refresh = resp.AccessToken, resp.RefreshToken
	}

	me, err := c.api.Me(ctx, access)
	if err != nil {
		terr := c.translate(err)
		if KindOf(terr) == KindNetwork {
			c.initialized.Store(false)
			return terr
		}
		c.discardPersisted(ctx)
		c.emitAudit(ctx, auditEventInitialize, false, terr, nil)
		return nil
	}

	c.completeLogin(ctx, access, refresh, me)
	c.metric(MetricInitializeSilent)
	c.emitAudit(ctx, auditEventInitialize, true, nil, nil)
	return nil
}

// RefreshToken exchanges the refresh token for a new pair. Concurrent calls
// coalesce into a single network exchange; every caller gets the outcome of
// that one flight. A terminal rejection of the refresh token forces the
// client to anonymous and clears all cached state; there is no retry loop.
// Transport failures leave the session intact for the caller to retry.
func (c *Client) RefreshToken(ctx context.Context) error {
	_, err, shared := c.refreshGroup.Do("refresh", func() (any, error) {
		refresh := c.tokens.RefreshToken()
		if refresh == "" {
			return nil, ErrNotAuthenticated
		}

		resp, err := c.api.Refresh(ctx, refresh)
		if err != nil {
			terr := c.translate(err)
			c.metric(MetricRefreshFailure)
			if KindOf(terr) == KindNetwork {
				c.emitAudit(ctx, auditEventRefresh, false, terr, nil)
				return nil, terr
			}
			if KindOf(terr) == KindAuthentication && !errors.Is(terr, ErrRefreshInvalid) {
				terr = fmt.Errorf("%w: %v", ErrRefreshInvalid, terr)
			}
			c.emitAudit(ctx, auditEventRefresh, false, terr, nil)
			c.forceAnonymous(ctx, terr)
			return nil, terr
		}

		c.mu.Lock()
		c.tokens.SetPair(resp.AccessToken, resp.RefreshToken)
		c.mu.Unlock()
		c.persistTokens(ctx, resp.AccessToken, resp.RefreshToken)

		c.metric(MetricRefreshSuccess)
		c.emitAudit(ctx, auditEventRefresh, true, nil, nil)
		return nil, nil
	})
	if shared {
		c.metric(MetricRefreshCoalesced)
	}
	return err
}

func (c *Client) discardPersisted(ctx context.Context) {
	c.clearLocal(ctx)
	c.logger.Debug().Msg("persisted tokens discarded after failed reconciliation")
}
