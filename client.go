package authcore

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/gemdesk/authcore/internal/audit"
	"github.com/gemdesk/authcore/internal/rest"
	"github.com/gemdesk/authcore/permission"
	"github.com/gemdesk/authcore/store"
	"github.com/gemdesk/authcore/token"
)

// Client is the composite façade the UI consumes. It owns the token store,
// the auth state machine, the shop context, and the permission resolver; no
// collaborator reaches token storage or raw API payloads directly.
//
// All methods are safe for concurrent use. State mutation only happens
// through the operations defined on Client, never by collaborators.
type Client struct {
	config     Config
	api        *rest.Client
	tokens     *token.Store
	states     store.StateStore
	registry   *permission.Registry
	audit      *audit.Dispatcher
	metrics    *Metrics
	logger     zerolog.Logger
	instanceID string

	sessionCache *gocache.Cache
	sessionGen   atomic.Uint64
	refreshGroup singleflight.Group
	activity     activityTracker

	loginInFlight atomic.Bool
	initialized   atomic.Bool

	mu        sync.RWMutex
	state     authState
	usedCodes []string
}

// Close flushes and stops the audit dispatcher. The client must not be used
// after Close.
func (c *Client) Close() {
	if c == nil {
		return
	}
	if c.audit != nil {
		c.audit.Close()
	}
}

// State returns a snapshot of the current auth state. The snapshot is a
// copy; it never goes stale in the caller's hands and never exposes tokens.
func (c *Client) State() AuthState {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s := AuthState{
		Status:           c.state.status,
		Authenticated:    c.state.status == StateAuthenticated,
		TwoFactorPending: c.state.status == StateTwoFactorPending,
		Initializing:     c.state.initializing,
		UserID:           c.state.user.ID,
		UserRole:         c.state.user.Role,
		CurrentShopID:    c.state.currentShopID,
		LastError:        c.state.lastErr,
	}
	s.ShopIDs = make([]string, 0, len(c.state.shopAccesses))
	for _, a := range c.state.shopAccesses {
		s.ShopIDs = append(s.ShopIDs, a.ShopID)
	}
	return s
}

// CurrentUser returns the loaded user profile, or false when anonymous.
func (c *Client) CurrentUser() (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.state.status != StateAuthenticated {
		return User{}, false
	}
	return c.state.user, true
}

// UsedBackupCodes returns the backup codes accepted by the server during
// this client's lifetime. The list only ever grows; a spent code showing up
// here is why a replay fails with ErrBackupCodeConsumed.
func (c *Client) UsedBackupCodes() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, len(c.usedCodes))
	copy(out, c.usedCodes)
	return out
}

// AccessTokenValid reports whether the held access token exists and is
// unexpired. The UI uses this to decide whether to refresh before a
// long-running action; it never sees the token itself.
func (c *Client) AccessTokenValid() bool {
	return c.tokens.AccessTokenValid()
}

// MetricsSnapshot returns a copy of all counters.
func (c *Client) MetricsSnapshot() MetricsSnapshot {
	if c == nil || c.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return c.metrics.SnapshotNow()
}

// AuditDropped returns the number of audit events dropped because the
// dispatcher buffer was full.
func (c *Client) AuditDropped() uint64 {
	if c == nil || c.audit == nil {
		return 0
	}
	return c.audit.Dropped()
}

func (c *Client) metric(id MetricID) {
	if c == nil || c.metrics == nil {
		return
	}
	c.metrics.Inc(id)
}

// translate maps transport and API errors onto the public taxonomy.
func (c *Client) translate(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *rest.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case rest.CodeInvalidCredentials:
			return ErrInvalidCredentials
		case rest.CodeInvalidTwoFactorCode:
			return ErrInvalidTwoFactorCode
		case rest.CodeBackupCodeConsumed:
			return ErrBackupCodeConsumed
		case rest.CodeTokenExpired:
			return ErrTokenExpired
		case rest.CodeRefreshInvalid:
			return ErrRefreshInvalid
		case rest.CodeSessionNotFound:
			return ErrSessionNotFound
		case rest.CodeValidation:
			return fmt.Errorf("%w: %s", ErrValidation, apiErr.Message)
		}

		switch {
		case apiErr.Conflict():
			return ErrSessionNotFound
		case apiErr.Status == 401:
			return ErrNotAuthenticated
		case apiErr.Status == 403:
			return ErrPermissionDenied
		case apiErr.Status == 400 || apiErr.Status == 422:
			return fmt.Errorf("%w: %s", ErrValidation, apiErr.Message)
		}
		return apiErr
	}

	return fmt.Errorf("%w: %v", ErrNetworkFailure, err)
}
