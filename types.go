package authcore

import (
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/gemdesk/authcore/internal/audit"
	"github.com/gemdesk/authcore/internal/metrics"
	"github.com/gemdesk/authcore/permission"
	"github.com/gemdesk/authcore/session"
)

// Status is the auth state machine position.
type Status uint8

const (
	// StateAnonymous means no credential is held.
	StateAnonymous Status = iota
	// StateAuthenticating means a login request is in flight.
	StateAuthenticating
	// StateAuthenticated means a full token pair is held and the user
	// record is loaded.
	StateAuthenticated
	// StateTwoFactorPending means the primary credential was accepted and
	// only the two-factor temp token is retained.
	StateTwoFactorPending
)

// Role is an account-level role. Roles gate nothing by themselves except
// through the IsSuperAdmin/IsOrgAdmin/IsShopAdmin helpers; screen access is
// always decided by the per-shop permission set.
type Role string

const (
	RoleSuperAdmin Role = "super_admin"
	RoleOrgAdmin   Role = "org_admin"
	RoleShopAdmin  Role = "shop_admin"
	RoleManager    Role = "manager"
	RoleStaff      Role = "staff"
	RoleViewer     Role = "viewer"
	RoleAccountant Role = "accountant"
)

// User is the authenticated account's profile.
type User struct {
	ID    string
	Email string
	Name  string
	Role  Role
}

// Credentials is the Login input.
type Credentials struct {
	Email    string
	Password string
}

// LoginResult is returned by Login and the two-factor verify operations.
// When TwoFactorRequired is set, no user data is available yet and the only
// credential retained is the challenge temp token.
type LoginResult struct {
	TwoFactorRequired bool
	User              User
}

// ShopAccess is one per-shop access record: role, permission overrides, and
// validity window.
type ShopAccess struct {
	ShopID      string
	Role        Role
	Permissions permission.Set
	Active      bool
	AccessStart time.Time
	AccessEnd   *time.Time
}

// Expired reports whether the record no longer grants anything: the access
// window has ended or the record was deactivated.
func (a ShopAccess) Expired() bool {
	if !a.Active {
		return true
	}
	return a.AccessEnd != nil && a.AccessEnd.Before(time.Now())
}

// AuthState is a point-in-time snapshot of the client's auth state. All
// fields are copies; mutating them affects nothing.
type AuthState struct {
	Status           Status
	Authenticated    bool
	TwoFactorPending bool
	Initializing     bool
	UserID           string
	UserRole         Role
	CurrentShopID    string
	ShopIDs          []string
	LastError        error
}

// ActiveSession is the canonical view of one server-tracked login session.
type ActiveSession = session.Session

// TwoFactorSetup holds the provisioning material returned by
// EnableTwoFactor.
type TwoFactorSetup struct {
	Secret     string
	OTPAuthURL string
}

// ProfileUpdate is the UpdateProfile input. Nil fields are left unchanged.
type ProfileUpdate struct {
	Name  *string
	Email *string
}

// AuditEvent is a structured audit record emitted by the client.
type AuditEvent = audit.Event

// AuditSink receives [AuditEvent] values from the client's audit
// dispatcher.
type AuditSink = audit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = audit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = audit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to an
// io.Writer.
type JSONWriterSink = audit.JSONWriterSink

// ZerologSink is an [AuditSink] that forwards events to a zerolog logger.
type ZerologSink = audit.ZerologSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return audit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] writing one JSON object per
// line to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return audit.NewJSONWriterSink(w)
}

// NewZerologSink creates a [ZerologSink] forwarding events to logger.
func NewZerologSink(logger zerolog.Logger) *ZerologSink {
	return audit.NewZerologSink(logger)
}

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = metrics.MetricID

const (
	MetricLoginSuccess         = metrics.MetricLoginSuccess
	MetricLoginFailure         = metrics.MetricLoginFailure
	MetricLoginDuplicateSubmit = metrics.MetricLoginDuplicateSubmit
	MetricTwoFactorRequired    = metrics.MetricTwoFactorRequired
	MetricTwoFactorSuccess     = metrics.MetricTwoFactorSuccess
	MetricTwoFactorFailure     = metrics.MetricTwoFactorFailure
	MetricBackupCodeUsed       = metrics.MetricBackupCodeUsed
	MetricBackupCodeReplay     = metrics.MetricBackupCodeReplay
	MetricRefreshSuccess       = metrics.MetricRefreshSuccess
	MetricRefreshFailure       = metrics.MetricRefreshFailure
	MetricRefreshCoalesced     = metrics.MetricRefreshCoalesced
	MetricInitializeSilent     = metrics.MetricInitializeSilent
	MetricSessionListFetched   = metrics.MetricSessionListFetched
	MetricSessionListStale     = metrics.MetricSessionListStale
	MetricSessionRevoked       = metrics.MetricSessionRevoked
	MetricLogout               = metrics.MetricLogout
	MetricLogoutAll            = metrics.MetricLogoutAll
	MetricShopSwitch           = metrics.MetricShopSwitch
	MetricPermissionDenied     = metrics.MetricPermissionDenied
)

// Metrics holds the client's atomic counters.
type Metrics = metrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all counters.
type MetricsSnapshot = metrics.Snapshot
