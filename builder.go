package authcore

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gemdesk/authcore/internal/audit"
	"github.com/gemdesk/authcore/internal/metrics"
	"github.com/gemdesk/authcore/internal/rest"
	"github.com/gemdesk/authcore/permission"
	"github.com/gemdesk/authcore/store"
	"github.com/gemdesk/authcore/token"
)

// Builder assembles a [Client]. Construction is allocation-only; the first
// network traffic happens in Initialize or Login.
type Builder struct {
	config     Config
	httpClient *http.Client
	redis      *redis.Client
	states     store.StateStore
	logger     *zerolog.Logger
	auditSink  AuditSink
	extraKeys  []permission.Key

	built bool
}

// New creates a Builder with default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the entire configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithBaseURL sets the API base URL without replacing the rest of the
// configuration.
func (b *Builder) WithBaseURL(baseURL string) *Builder {
	b.config.API.BaseURL = baseURL
	return b
}

// WithHTTPClient supplies a custom HTTP client (proxies, instrumentation,
// test servers).
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

// WithRedis persists tokens and the shop selection in Redis instead of
// process memory.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithStateStore supplies a custom persistence backend. Takes precedence
// over WithRedis.
func (b *Builder) WithStateStore(s store.StateStore) *Builder {
	b.states = s
	return b
}

// WithLogger attaches a structured logger. Without one the client is
// silent.
func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = &logger
	return b
}

// WithAuditSink attaches an audit sink and enables the dispatcher.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	b.config.Audit.Enabled = true
	return b
}

// WithPermissionKeys registers additional permission keys beyond the
// built-in enumeration, for deployments with custom screens.
func (b *Builder) WithPermissionKeys(keys ...permission.Key) *Builder {
	b.extraKeys = append(b.extraKeys, keys...)
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// Build validates the configuration and assembles the client.
func (b *Builder) Build() (*Client, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// -------- PERMISSION REGISTRY --------
	registry := permission.NewRegistry()
	for _, k := range permission.Keys() {
		if _, err := registry.Register(k); err != nil {
			return nil, err
		}
	}
	for _, k := range b.extraKeys {
		if _, err := registry.Register(k); err != nil {
			return nil, err
		}
	}
	registry.Freeze()

	// -------- STATE STORE --------
	states := b.states
	if states == nil {
		if b.redis != nil {
			states = store.NewRedis(b.redis, cfg.Persistence.RedisPrefix, cfg.Persistence.RedisTTL)
		} else {
			states = store.NewMemory()
		}
	}

	logger := zerolog.Nop()
	if b.logger != nil {
		logger = *b.logger
	}

	client := &Client{
		config:       cfg,
		api:          rest.New(rest.Config{BaseURL: cfg.API.BaseURL, Timeout: cfg.API.Timeout, UserAgent: cfg.API.UserAgent}, b.httpClient),
		tokens:       token.NewStore(),
		states:       states,
		registry:     registry,
		logger:       logger,
		instanceID:   uuid.NewString(),
		sessionCache: gocache.New(cfg.SessionCache.TTL, cfg.SessionCache.CleanupInterval),
	}
	if cfg.Audit.Enabled {
		client.audit = audit.NewDispatcher(audit.DispatcherConfig{
			BufferSize: cfg.Audit.BufferSize,
			DropIfFull: cfg.Audit.DropIfFull,
		}, b.auditSink, logger)
	}
	client.metrics = metrics.New(metrics.Config{Enabled: cfg.Metrics.Enabled})

	b.built = true

	return client, nil
}
