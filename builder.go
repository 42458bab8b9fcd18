package authcore

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/arnabpal2022/authcore/blacklist"
	internalaudit "github.com/arnabpal2022/authcore/internal/audit"
	"github.com/arnabpal2022/authcore/notify"
	"github.com/arnabpal2022/authcore/password"
	"github.com/arnabpal2022/authcore/permission"
	"github.com/arnabpal2022/authcore/refresh"
	"github.com/arnabpal2022/authcore/token"
)

// Builder assembles an [Engine]. Construction is allocation-only; no I/O
// happens before the first Engine method call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	accounts       AccountStore
	refreshStore   refresh.Store
	blacklistStore blacklist.Store

	registry *permission.Registry
	roles    *permission.RoleManager

	notifier  notify.Notifier
	auditSink AuditSink
	logger    *slog.Logger

	built bool
}

// New returns a builder seeded with defaults.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the default configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis supplies the Redis client backing the default refresh and
// blacklist stores.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAccountStore supplies the account backend. Required.
func (b *Builder) WithAccountStore(store AccountStore) *Builder {
	b.accounts = store
	return b
}

// WithRefreshStore overrides the Redis-backed refresh store, e.g. with
// the Postgres implementation in store/pg.
func (b *Builder) WithRefreshStore(store refresh.Store) *Builder {
	b.refreshStore = store
	return b
}

// WithBlacklistStore overrides the default blacklist backend.
func (b *Builder) WithBlacklistStore(store blacklist.Store) *Builder {
	b.blacklistStore = store
	return b
}

// WithRoles supplies a custom permission registry and role tree. Both
// should be frozen; without this option the default seed is installed.
func (b *Builder) WithRoles(registry *permission.Registry, roles *permission.RoleManager) *Builder {
	b.registry = registry
	b.roles = roles
	return b
}

// WithNotifier supplies the outbound message backend used when
// Config.Notify is enabled.
func (b *Builder) WithNotifier(n notify.Notifier) *Builder {
	b.notifier = n
	return b
}

// WithAuditSink supplies the audit event sink used when Config.Audit is
// enabled.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger supplies the structured logger. Defaults to [slog.Default].
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// Build validates the configuration, wires every subsystem, and returns
// a ready engine. A builder builds at most once.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	if err := b.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if b.accounts == nil {
		return nil, errors.New("account store is required")
	}

	issuer, err := token.NewIssuer(token.Config{
		Issuer:          b.config.Token.Issuer,
		AccessTTL:       b.config.Token.AccessTTL,
		VerificationTTL: b.config.Token.VerificationTTL,
		ResetTTL:        b.config.Token.ResetTTL,
		SigningMethod:   token.SigningMethod(b.config.Token.SigningMethod),
		SigningKey:      b.config.Token.SigningKey,
		VerifyKey:       b.config.Token.VerifyKey,
		Leeway:          b.config.Token.ClockSkew,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	hasher, err := password.New(password.Config{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
		MinLength:   b.config.Password.MinLength,
	})
	if err != nil {
		return nil, fmt.Errorf("password hasher: %w", err)
	}

	refreshStore := b.refreshStore
	if refreshStore == nil {
		if b.redis == nil {
			return nil, errors.New("refresh store or redis client is required")
		}
		refreshStore, err = refresh.NewRedisStore(b.redis, b.config.Refresh.RedisPrefix)
		if err != nil {
			return nil, fmt.Errorf("refresh store: %w", err)
		}
	}

	refreshMgr, err := refresh.NewManager(refreshStore, refresh.Config{
		TTL:             b.config.Refresh.TTL,
		RetentionWindow: b.config.Refresh.RetentionWindow,
	})
	if err != nil {
		return nil, fmt.Errorf("refresh manager: %w", err)
	}

	blacklistStore := b.blacklistStore
	if blacklistStore == nil {
		if b.redis != nil {
			blacklistStore, err = blacklist.NewRedisStore(b.redis, b.config.Blacklist.RedisPrefix)
			if err != nil {
				return nil, fmt.Errorf("blacklist store: %w", err)
			}
		} else {
			blacklistStore = blacklist.NewMemoryStore(b.config.Blacklist.SweepInterval)
		}
	}

	registry, roles := b.registry, b.roles
	if roles == nil {
		registry, roles, err = permission.Seed()
		if err != nil {
			return nil, fmt.Errorf("permission seed: %w", err)
		}
	}
	if b.config.Account.DefaultRole != "" && !roles.Known(b.config.Account.DefaultRole) {
		return nil, fmt.Errorf("default role %q is not registered", b.config.Account.DefaultRole)
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = notify.NewLogNotifier(b.logger)
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		config:    b.config,
		accounts:  b.accounts,
		refresh:   refreshMgr,
		blacklist: blacklistStore,
		issuer:    issuer,
		hasher:    hasher,
		registry:  registry,
		roles:     roles,
		audit: internalaudit.NewDispatcher(internalaudit.Config{
			Enabled:    b.config.Audit.Enabled,
			BufferSize: b.config.Audit.BufferSize,
			DropIfFull: b.config.Audit.DropIfFull,
		}, b.auditSink),
		notify: notify.NewDispatcher(notify.Config{
			Enabled:    b.config.Notify.Enabled,
			BufferSize: b.config.Notify.BufferSize,
		}, notifier),
		metrics: NewMetrics(b.config.Metrics),
		logger:  logger,
		now:     time.Now,
	}
	e.flows = e.buildFlows()

	b.built = true
	return e, nil
}
