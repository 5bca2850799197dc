package authcore

import (
	"context"

	"github.com/gemdesk/authcore/store"
)

// SwitchShop makes shopID the current shop and recomputes effective
// permissions inside the same critical section, so a permission read issued
// right after SwitchShop returns always observes the new shop. Switching to
// the already-current shop is a no-op. The selection is persisted so the
// next Initialize restores it.
func (c *Client) SwitchShop(ctx context.Context, shopID string) error {
	c.mu.Lock()
	if c.state.status != StateAuthenticated {
		c.mu.Unlock()
		return ErrNotAuthenticated
	}
	if shopID == c.state.currentShopID {
		c.mu.Unlock()
		return nil
	}
	if c.findAccessLocked(shopID) == nil {
		c.mu.Unlock()
		return ErrShopNotAccessible
	}

	c.state.currentShopID = shopID
	c.recomputeEffectiveLocked()
	c.mu.Unlock()

	c.metric(MetricShopSwitch)
	c.emitAudit(ctx, auditEventShopSwitched, true, nil, nil)

	if err := c.states.Set(ctx, store.KeyCurrentShop, shopID); err != nil {
		// Persistence is best-effort; the in-memory switch already took.
		c.logger.Warn().Err(err).Str("shop_id", shopID).Msg("persisting shop selection failed")
	}
	return nil
}

// ClearShop unsets the current shop, used when the active shop becomes
// inaccessible mid-session. Effective permissions collapse to all-false in
// the same critical section.
func (c *Client) ClearShop(ctx context.Context) {
	c.mu.Lock()
	if c.state.currentShopID == "" {
		c.mu.Unlock()
		return
	}
	c.state.currentShopID = ""
	c.recomputeEffectiveLocked()
	c.mu.Unlock()

	c.emitAudit(ctx, auditEventShopCleared, true, nil, nil)

	if err := c.states.Delete(ctx, store.KeyCurrentShop); err != nil {
		c.logger.Warn().Err(err).Msg("clearing persisted shop selection failed")
	}
}

// CurrentShopAccess returns a copy of the access record for the current
// shop, or false when no shop is selected or the record is gone.
func (c *Client) CurrentShopAccess() (ShopAccess, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.currentShopID == "" {
		return ShopAccess{}, false
	}
	a := c.findAccessLocked(c.state.currentShopID)
	if a == nil {
		return ShopAccess{}, false
	}
	return *a, true
}

// ShopAccesses returns a copy of all access records.
func (c *Client) ShopAccesses() []ShopAccess {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]ShopAccess, len(c.state.shopAccesses))
	copy(out, c.state.shopAccesses)
	return out
}

// HasMultipleShops reports whether the user can switch between shops.
// Derived from the live list on every call, never cached.
func (c *Client) HasMultipleShops() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.state.shopAccesses) > 1
}

// HasNoShops reports whether the user has no shop access at all.
func (c *Client) HasNoShops() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.state.shopAccesses) == 0
}
