package authcore

import (
	"context"
	"errors"

	"github.com/gemdesk/authcore/internal/rest"
	"github.com/gemdesk/authcore/permission"
	"github.com/gemdesk/authcore/store"
)

// authState is the single mutable state container behind the façade. Every
// field is guarded by Client.mu; there is no other mutable auth state in the
// process.
type authState struct {
	status        Status
	user          User
	shopAccesses  []ShopAccess
	currentShopID string
	effective     permission.Set
	initializing  bool
	lastErr       error
}

// recomputeEffectiveLocked projects the current shop's permission set.
// Called under Client.mu whenever currentShopID or the access list changes,
// so no read between the trigger and the recompute can observe stale
// permissions. An expired or inactive record resolves all-false.
func (c *Client) recomputeEffectiveLocked() {
	c.state.effective = permission.Set{}
	if c.state.currentShopID == "" {
		return
	}
	a := c.findAccessLocked(c.state.currentShopID)
	if a == nil || a.Expired() {
		return
	}
	c.state.effective = a.Permissions
}

func (c *Client) findAccessLocked(shopID string) *ShopAccess {
	for i := range c.state.shopAccesses {
		if c.state.shopAccesses[i].ShopID == shopID {
			return &c.state.shopAccesses[i]
		}
	}
	return nil
}

// clearLocal drops every piece of locally held auth state: tokens, user,
// shop accesses, effective permissions, session cache, persisted keys, and
// the activity tracker. State and tokens go in one critical section so no
// reader can observe a partial clear.
func (c *Client) clearLocal(ctx context.Context) {
	c.mu.Lock()
	c.tokens.Clear()
	c.state = authState{}
	c.mu.Unlock()

	c.activity.disarm()
	c.sessionGen.Add(1)
	c.sessionCache.Flush()

	if err := c.states.Delete(ctx, store.KeyAccessToken, store.KeyRefreshToken, store.KeyCurrentShop); err != nil {
		c.logger.Warn().Err(err).Msg("clearing persisted auth state failed")
	}
}

// forceAnonymous is clearLocal plus error bookkeeping, used when a refresh
// token turns out to be dead mid-session.
func (c *Client) forceAnonymous(ctx context.Context, cause error) {
	c.clearLocal(ctx)
	c.mu.Lock()
	c.state.lastErr = cause
	c.mu.Unlock()
	c.logger.Debug().Err(cause).Msg("forced transition to anonymous")
}

// completeLogin installs a fresh token pair and user record, picks the
// current shop, and recomputes permissions, all before any caller can read
// the new state. The current shop is the persisted last selection when still
// accessible, else the sole shop when there is exactly one, else unset
// (multi-shop users pick via SwitchShop).
func (c *Client) completeLogin(ctx context.Context, access, refresh string, payload *rest.UserPayload) User {
	user, accesses := c.decodeUser(payload)

	persistedShop := ""
	if v, err := c.states.Get(ctx, store.KeyCurrentShop); err == nil {
		persistedShop = v
	}

	c.mu.Lock()
	c.tokens.SetPair(access, refresh)
	c.state = authState{
		status:       StateAuthenticated,
		user:         user,
		shopAccesses: accesses,
	}
	switch {
	case persistedShop != "" && c.findAccessLocked(persistedShop) != nil:
		c.state.currentShopID = persistedShop
	case len(accesses) == 1:
		c.state.currentShopID = accesses[0].ShopID
	}
	c.recomputeEffectiveLocked()
	currentShop := c.state.currentShopID
	c.mu.Unlock()

	c.activity.arm()
	c.persistTokens(ctx, access, refresh)
	if currentShop != "" && currentShop != persistedShop {
		if err := c.states.Set(ctx, store.KeyCurrentShop, currentShop); err != nil {
			c.logger.Warn().Err(err).Msg("persisting shop selection failed")
		}
	}
	return user
}

// decodeUser narrows a wire user payload to the typed model. Unknown
// permission keys are dropped at this boundary (default-deny) and logged
// once per payload. A shop id appearing twice among active records keeps
// its first record.
func (c *Client) decodeUser(payload *rest.UserPayload) (User, []ShopAccess) {
	if payload == nil {
		return User{}, nil
	}

	user := User{
		ID:    payload.ID,
		Email: payload.Email,
		Name:  payload.Name,
		Role:  Role(payload.Role),
	}

	seen := make(map[string]bool, len(payload.ShopAccesses))
	accesses := make([]ShopAccess, 0, len(payload.ShopAccesses))
	for _, wire := range payload.ShopAccesses {
		if wire.ShopID == "" || seen[wire.ShopID] {
			continue
		}
		seen[wire.ShopID] = true

		set, unknown := c.registry.SetFromWire(wire.Permissions)
		if len(unknown) > 0 {
			c.logger.Warn().
				Str("shop_id", wire.ShopID).
				Strs("keys", unknown).
				Msg("dropping unknown permission keys")
		}

		accesses = append(accesses, ShopAccess{
			ShopID:      wire.ShopID,
			Role:        Role(wire.Role),
			Permissions: set,
			Active:      wire.IsActive,
			AccessStart: wire.AccessStartDate,
			AccessEnd:   wire.AccessEndDate,
		})
	}
	return user, accesses
}

func (c *Client) persistTokens(ctx context.Context, access, refresh string) {
	if err := c.states.Set(ctx, store.KeyAccessToken, access); err != nil {
		c.logger.Warn().Err(err).Msg("persisting access token failed")
		return
	}
	if err := c.states.Set(ctx, store.KeyRefreshToken, refresh); err != nil {
		c.logger.Warn().Err(err).Msg("persisting refresh token failed")
	}
}

func (c *Client) loadPersistedTokens(ctx context.Context) (access, refresh string, ok bool) {
	refresh, err := c.states.Get(ctx, store.KeyRefreshToken)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			c.logger.Warn().Err(err).Msg("reading persisted refresh token failed")
		}
		return "", "", false
	}
	access, err = c.states.Get(ctx, store.KeyAccessToken)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		c.logger.Warn().Err(err).Msg("reading persisted access token failed")
	}
	return access, refresh, refresh != ""
}

func (c *Client) isAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.status == StateAuthenticated
}
