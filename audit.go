package authcore

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventLogin           = "auth.login"
	auditEventTwoFactorLogin  = "auth.2fa_login"
	auditEventBackupCodeLogin = "auth.backup_code_login"
	auditEventInitialize      = "auth.initialize"
	auditEventRefresh         = "auth.refresh"
	auditEventLogout          = "auth.logout"
	auditEventLogoutAll       = "auth.logout_all"
	auditEventSessionRevoked  = "session.revoked"
	auditEventShopSwitched    = "shop.switched"
	auditEventShopCleared     = "shop.cleared"
)

// emitAudit records one lifecycle event. Metadata is built lazily so the
// disabled path costs nothing.
func (c *Client) emitAudit(ctx context.Context, eventType string, success bool, err error, metadata func() map[string]string) {
	if c == nil || c.audit == nil {
		return
	}

	c.mu.RLock()
	userID := c.state.user.ID
	shopID := c.state.currentShopID
	c.mu.RUnlock()

	event := AuditEvent{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		EventType: eventType,
		UserID:    userID,
		ShopID:    shopID,
		Success:   success,
	}
	if err != nil {
		event.Error = err.Error()
	}
	if metadata != nil {
		event.Metadata = metadata()
	}

	c.audit.Emit(ctx, event)
}
