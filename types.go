package authcore

import (
	"context"
	"time"

	internalaudit "github.com/arnabpal2022/authcore/internal/audit"
)

// AccountStatus represents the lifecycle state of an account.
type AccountStatus uint8

const (
	// StatusPending is the state of a freshly registered account awaiting
	// email verification.
	StatusPending AccountStatus = iota
	// StatusActive is the normal post-verification state.
	StatusActive
	// StatusLocked blocks login without destroying the account.
	StatusLocked
	// StatusDeactivated marks an account disabled by an operator.
	StatusDeactivated
	// StatusDeleted marks an account soft-deleted. DeletedAt carries the time.
	StatusDeleted
)

// String returns the lowercase status name used in audit events.
func (s AccountStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusActive:
		return "active"
	case StatusLocked:
		return "locked"
	case StatusDeactivated:
		return "deactivated"
	case StatusDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Account is the full account record exchanged with an [AccountStore].
// The engine never stores plaintext passwords; PasswordHash carries the
// encoded argon2id digest.
type Account struct {
	ID                string
	Email             string
	PasswordHash      string
	FirstName         string
	LastName          string
	PhoneNumber       string
	ProfilePictureURL string
	EmailVerified     bool
	Status            AccountStatus
	Role              string
	SecurityStamp     string
	DeletedAt         *time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// CanLogin reports whether the account may authenticate: verified, not
// soft-deleted, and in a state that permits sessions.
func (a *Account) CanLogin() bool {
	if a == nil || !a.EmailVerified || a.DeletedAt != nil {
		return false
	}
	return a.Status == StatusActive || a.Status == StatusPending
}

// AccountStore is the interface callers implement to persist accounts.
// FindByEmail and FindByID return [ErrAccountNotFound] when no row matches;
// any other failure must be returned as-is so the engine can surface it as
// a transient store error rather than a rejection.
type AccountStore interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	FindByID(ctx context.Context, id string) (*Account, error)
	Save(ctx context.Context, account *Account) error
}

// FederatedIdentity links an account to an external identity provider
// subject. The engine records these passively; it does not drive social
// login flows.
type FederatedIdentity struct {
	ID         string
	AccountID  string
	Provider   string
	Subject    string
	LinkedAt   time.Time
	LastUsedAt time.Time
}

// FederatedIdentityStore persists provider links for accounts created or
// matched through an external IdP.
type FederatedIdentityStore interface {
	FindBySubject(ctx context.Context, provider, subject string) (*FederatedIdentity, error)
	Save(ctx context.Context, identity *FederatedIdentity) error
}

// TokenPair is the result of Login and Refresh: a short-lived JWT access
// token and an opaque rotating refresh token.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// Principal is the authenticated identity attached to a request after
// [Engine.Authenticate] succeeds. Permissions is the effective set resolved
// through the role hierarchy, sorted and deduplicated.
type Principal struct {
	AccountID   string
	Email       string
	Role        string
	Permissions []string
}

// HasPermission reports whether the principal holds the given
// "resource:action" slug. Lookup is linear; permission sets are small.
func (p *Principal) HasPermission(slug string) bool {
	if p == nil {
		return false
	}
	for _, have := range p.Permissions {
		if have == slug {
			return true
		}
	}
	return false
}

// AuditEvent is the event model delivered to audit sinks.
type AuditEvent = internalaudit.Event

// AuditSink receives emitted audit events. Sinks must tolerate concurrent
// calls; the engine dispatches asynchronously.
type AuditSink = internalaudit.Sink

// NewJSONAuditSink returns a sink writing one JSON event per line.
var NewJSONAuditSink = internalaudit.NewJSONWriterSink

// NewChannelAuditSink returns a sink feeding a buffered channel.
var NewChannelAuditSink = internalaudit.NewChannelSink
