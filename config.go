package authcore

import (
	"errors"
	"time"
)

// Config carries every tunable of the engine. Zero value is not usable;
// start from [Builder] which seeds defaults, or call Validate before use.
//
// Config instances are treated as immutable after [Builder.Build].
type Config struct {
	Token     TokenConfig
	Refresh   RefreshConfig
	Blacklist BlacklistConfig
	Password  PasswordConfig
	Account   AccountConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
	Notify    NotifyConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig controls JWT issuance for access, verification, and reset
// tokens. SigningMethod is "hs256" (default) or "ed25519".
type TokenConfig struct {
	Issuer          string
	AccessTTL       time.Duration
	VerificationTTL time.Duration
	ResetTTL        time.Duration
	SigningMethod   string
	SigningKey      []byte
	VerifyKey       []byte
	ClockSkew       time.Duration
}

/*
====================================
REFRESH CONFIG
====================================
*/

// RefreshConfig controls opaque refresh token rotation. RetentionWindow is
// how long an expired record stays visible so an expired presentation can
// be told apart from an unknown one.
type RefreshConfig struct {
	TTL             time.Duration
	RetentionWindow time.Duration
	RedisPrefix     string
}

/*
====================================
BLACKLIST CONFIG
====================================
*/

// BlacklistConfig controls the access token revocation list.
type BlacklistConfig struct {
	RedisPrefix string
	// SweepInterval drives the in-memory store janitor. Ignored by the
	// Redis store, which expires keys natively.
	SweepInterval time.Duration
}

// PasswordConfig carries argon2id parameters. Memory is in KiB.
type PasswordConfig struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	MinLength   int
}

// AccountConfig controls registration behavior.
type AccountConfig struct {
	DefaultRole     string
	RequireVerified bool
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters and latency histogram.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// NotifyConfig controls outbound notification dispatch (verification and
// reset emails).
type NotifyConfig struct {
	Enabled    bool
	BufferSize int
}

// DefaultConfig returns the baseline configuration. Callers must still
// supply Token.SigningKey before Build.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			Issuer:          "authcore",
			AccessTTL:       15 * time.Minute,
			VerificationTTL: 24 * time.Hour,
			ResetTTL:        30 * time.Minute,
			SigningMethod:   "hs256",
			ClockSkew:       30 * time.Second,
		},
		Refresh: RefreshConfig{
			TTL:             7 * 24 * time.Hour,
			RetentionWindow: 24 * time.Hour,
			RedisPrefix:     "ac",
		},
		Blacklist: BlacklistConfig{
			RedisPrefix:   "ac:bl",
			SweepInterval: time.Minute,
		},
		Password: PasswordConfig{
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		Account: AccountConfig{
			DefaultRole:     "PASSENGER",
			RequireVerified: true,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
		Notify: NotifyConfig{
			Enabled:    false,
			BufferSize: 256,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.SigningKey = cloneBytes(cfg.Token.SigningKey)
	out.Token.VerifyKey = cloneBytes(cfg.Token.VerifyKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks cross-field invariants. It is called by [Builder.Build];
// callers constructing Config by hand should call it themselves.
func (c *Config) Validate() error {
	// Token
	if c.Token.AccessTTL <= 0 {
		return errors.New("Token AccessTTL must be > 0")
	}
	if c.Token.VerificationTTL <= 0 {
		return errors.New("Token VerificationTTL must be > 0")
	}
	if c.Token.ResetTTL <= 0 {
		return errors.New("Token ResetTTL must be > 0")
	}
	if c.Token.SigningMethod != "hs256" && c.Token.SigningMethod != "ed25519" {
		return errors.New("unsupported token signing method")
	}
	if len(c.Token.SigningKey) == 0 {
		return errors.New("token signing key is required")
	}
	if c.Token.SigningMethod == "hs256" && len(c.Token.SigningKey) < 32 {
		return errors.New("hs256 signing key must be at least 32 bytes")
	}
	if c.Token.SigningMethod == "ed25519" && len(c.Token.VerifyKey) == 0 {
		return errors.New("ed25519 requires VerifyKey")
	}
	if c.Token.ClockSkew < 0 {
		return errors.New("Token ClockSkew must be >= 0")
	}

	// Refresh
	if c.Refresh.TTL <= 0 {
		return errors.New("Refresh TTL must be > 0")
	}
	if c.Refresh.RetentionWindow < 0 {
		return errors.New("Refresh RetentionWindow must be >= 0")
	}
	if c.Refresh.RedisPrefix == "" {
		return errors.New("Refresh RedisPrefix must not be empty")
	}

	// Blacklist
	if c.Blacklist.RedisPrefix == "" {
		return errors.New("Blacklist RedisPrefix must not be empty")
	}
	if c.Blacklist.SweepInterval <= 0 {
		return errors.New("Blacklist SweepInterval must be > 0")
	}

	// Password
	if c.Password.Memory < 8*1024 {
		return errors.New("Password Memory must be >= 8192 KiB")
	}
	if c.Password.Time < 1 {
		return errors.New("Password Time must be >= 1")
	}
	if c.Password.Parallelism < 1 {
		return errors.New("Password Parallelism must be >= 1")
	}
	if c.Password.SaltLength < 16 {
		return errors.New("Password SaltLength must be >= 16")
	}
	if c.Password.KeyLength < 16 {
		return errors.New("Password KeyLength must be >= 16")
	}
	if c.Password.MinLength < 1 {
		return errors.New("Password MinLength must be >= 1")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when enabled")
	}

	// Notify
	if c.Notify.Enabled && c.Notify.BufferSize <= 0 {
		return errors.New("Notify BufferSize must be > 0 when enabled")
	}

	return nil
}
