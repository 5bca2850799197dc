package authcore

import (
	"errors"
	"net/url"
	"time"
)

// Config groups every tunable of the client. The zero value is not usable;
// start from the defaults applied by [New] and override selectively via
// [Builder.WithConfig].
type Config struct {
	API          APIConfig
	Persistence  PersistenceConfig
	SessionCache SessionCacheConfig
	Activity     ActivityConfig
	Audit        AuditConfig
	Metrics      MetricsConfig
}

// APIConfig carries the transport settings for the back-office API.
type APIConfig struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// PersistenceConfig tunes the Redis state store when one is attached via
// [Builder.WithRedis]. Ignored for the in-memory backend.
type PersistenceConfig struct {
	RedisPrefix string
	// RedisTTL bounds how long persisted tokens survive without a write.
	// Zero keeps them until logout. When set, it should exceed the refresh
	// token lifetime.
	RedisTTL time.Duration
}

// SessionCacheConfig tunes the TTL cache in front of GET /auth/sessions.
type SessionCacheConfig struct {
	TTL             time.Duration
	CleanupInterval time.Duration
}

// ActivityConfig tunes the idle-activity policy.
type ActivityConfig struct {
	// IdleTimeout is the inactivity window after which IdleExpired reports
	// true. Zero disables idle expiry.
	IdleTimeout time.Duration
}

// AuditConfig controls the audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	// DropIfFull drops events instead of blocking the auth path when the
	// buffer is saturated. Dropped counts are visible via AuditDropped.
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		API: APIConfig{
			Timeout:   15 * time.Second,
			UserAgent: "gemdesk-authcore/1.0",
		},
		Persistence: PersistenceConfig{
			RedisPrefix: "authcore:",
		},
		SessionCache: SessionCacheConfig{
			TTL:             30 * time.Second,
			CleanupInterval: 5 * time.Minute,
		},
		Activity: ActivityConfig{
			IdleTimeout: 30 * time.Minute,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks the configuration for values Build cannot work with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return errors.New("API.BaseURL is required")
	}
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New("API.BaseURL must be an absolute URL")
	}
	if c.API.Timeout <= 0 {
		return errors.New("API.Timeout must be positive")
	}
	if c.SessionCache.TTL <= 0 {
		return errors.New("SessionCache.TTL must be positive")
	}
	if c.SessionCache.CleanupInterval <= 0 {
		return errors.New("SessionCache.CleanupInterval must be positive")
	}
	if c.Activity.IdleTimeout < 0 {
		return errors.New("Activity.IdleTimeout cannot be negative")
	}
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit.BufferSize must be positive when audit is enabled")
	}
	if c.Persistence.RedisTTL < 0 {
		return errors.New("Persistence.RedisTTL cannot be negative")
	}
	return nil
}
