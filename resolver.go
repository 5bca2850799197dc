package authcore

import "github.com/gemdesk/authcore/permission"

// Can reports whether the current shop grants the permission. Missing keys,
// including keys never registered, resolve to false, never to an error: the
// resolver is default-deny. The UI gates controls on this before the network
// layer ever sees the action.
func (c *Client) Can(key permission.Key) bool {
	bit, ok := c.registry.Bit(key)
	if !ok {
		c.metric(MetricPermissionDenied)
		return false
	}

	c.mu.RLock()
	allowed := c.state.effective.Has(bit)
	c.mu.RUnlock()

	if !allowed {
		c.metric(MetricPermissionDenied)
	}
	return allowed
}

// CanAny reports whether at least one of the keys is granted. An empty list
// is false: "any of nothing" grants nothing.
func (c *Client) CanAny(keys ...permission.Key) bool {
	for _, k := range keys {
		if c.Can(k) {
			return true
		}
	}
	return false
}

// CanAll reports whether every key is granted. An empty list is vacuously
// true, so gate code relying on CanAll(requirements...) stays permissive
// when a screen has no requirements.
func (c *Client) CanAll(keys ...permission.Key) bool {
	for _, k := range keys {
		if !c.Can(k) {
			return false
		}
	}
	return true
}

// EffectivePermissions returns the granted keys of the current shop as a
// map projection. Absent keys read false by map semantics, mirroring the
// resolver's default-deny. The map is rebuilt per call; it is a view, never
// authoritative state.
func (c *Client) EffectivePermissions() map[permission.Key]bool {
	c.mu.RLock()
	effective := c.state.effective
	c.mu.RUnlock()

	granted := c.registry.GrantedKeys(effective)
	out := make(map[permission.Key]bool, len(granted))
	for _, k := range granted {
		out[k] = true
	}
	return out
}

// IsSuperAdmin reports whether the account-level role is super_admin. Role
// helpers compare the account role only; they deliberately ignore per-shop
// permissions.
func (c *Client) IsSuperAdmin() bool {
	return c.roleIs(RoleSuperAdmin)
}

// IsOrgAdmin reports whether the account-level role is org_admin.
func (c *Client) IsOrgAdmin() bool {
	return c.roleIs(RoleOrgAdmin)
}

// IsShopAdmin reports whether the account-level role is shop_admin.
func (c *Client) IsShopAdmin() bool {
	return c.roleIs(RoleShopAdmin)
}

func (c *Client) roleIs(role Role) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.status == StateAuthenticated && c.state.user.Role == role
}
