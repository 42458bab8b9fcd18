package refresh

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/arnabpal2022/authcore/internal/ids"
)

// Metadata is per-device request context recorded on issued tokens.
type Metadata struct {
	IP          string
	UserAgent   string
	Fingerprint string
}

// Config carries rotation tuning.
type Config struct {
	// TTL is the refresh token lifetime.
	TTL time.Duration
	// RetentionWindow keeps expired records visible so an expired
	// presentation is reported as expired, not unknown.
	RetentionWindow time.Duration
}

// Manager drives the rotation state machine over a Store.
type Manager struct {
	store     Store
	ttl       time.Duration
	retention time.Duration
	now       func() time.Time
}

// NewManager wires a manager over store.
func NewManager(store Store, cfg Config) (*Manager, error) {
	if store == nil {
		return nil, errors.New("refresh store is required")
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("refresh TTL must be > 0")
	}
	if cfg.RetentionWindow < 0 {
		return nil, errors.New("refresh retention window must be >= 0")
	}

	return &Manager{
		store:     store,
		ttl:       cfg.TTL,
		retention: cfg.RetentionWindow,
		now:       time.Now,
	}, nil
}

// Issue mints a token in a brand-new family and persists its record.
// Returns the raw token, which is never stored.
func (m *Manager) Issue(ctx context.Context, accountID string, meta Metadata) (string, *Record, error) {
	if accountID == "" {
		return "", nil, errors.New("accountID must not be empty")
	}

	raw, err := NewRawToken()
	if err != nil {
		return "", nil, err
	}

	now := m.now()
	rec := &Record{
		ID:          ids.New(),
		AccountID:   accountID,
		FamilyID:    uuid.NewString(),
		Hash:        HashToken(raw),
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.ttl),
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
		Fingerprint: meta.Fingerprint,
	}

	if err := m.store.Save(ctx, rec, m.ttl+m.retention); err != nil {
		return "", nil, err
	}

	return raw, rec, nil
}

// Rotate exchanges a presented raw token for a successor in the same
// family.
//
// Outcomes:
//   - unknown hash: [ErrNotFound]
//   - revoked record: family revoked, [ErrReuseDetected] with the
//     presented record so callers can name the affected account
//   - expired record: [ErrExpired], no writes
//   - active record: revoked and successor saved atomically; losing
//     racers take the revoked path above
func (m *Manager) Rotate(ctx context.Context, raw string, meta Metadata) (string, *Record, error) {
	hash := HashToken(raw)

	old, err := m.store.FindByHash(ctx, hash)
	if err != nil {
		return "", nil, err
	}

	if old.Revoked {
		if _, err := m.store.RevokeFamily(ctx, old.FamilyID); err != nil {
			return "", nil, err
		}
		return "", old, ErrReuseDetected
	}
	if old.Expired(m.now()) {
		return "", nil, ErrExpired
	}

	newRaw, err := NewRawToken()
	if err != nil {
		return "", nil, err
	}

	now := m.now()
	successor := &Record{
		ID:          ids.New(),
		AccountID:   old.AccountID,
		FamilyID:    old.FamilyID,
		Hash:        HashToken(newRaw),
		IssuedAt:    now,
		ExpiresAt:   now.Add(m.ttl),
		IP:          meta.IP,
		UserAgent:   meta.UserAgent,
		Fingerprint: meta.Fingerprint,
	}

	status, err := m.store.Rotate(ctx, hash, successor, m.ttl+m.retention)
	if err != nil {
		return "", nil, err
	}

	switch status {
	case RotateOK:
		return newRaw, successor, nil
	case RotateRevoked:
		// lost the race or replayed between find and rotate
		if _, err := m.store.RevokeFamily(ctx, old.FamilyID); err != nil {
			return "", nil, err
		}
		return "", old, ErrReuseDetected
	case RotateExpired:
		return "", nil, ErrExpired
	default:
		return "", nil, ErrNotFound
	}
}

// Revoke marks the presented token revoked without touching its family.
// Unknown and already-revoked tokens report false with no error, which
// keeps logout idempotent.
func (m *Manager) Revoke(ctx context.Context, raw string) (bool, error) {
	return m.store.RevokeByHash(ctx, HashToken(raw))
}

// RevokeFamily revokes every record in a family and returns how many
// records changed state.
func (m *Manager) RevokeFamily(ctx context.Context, familyID string) (int, error) {
	return m.store.RevokeFamily(ctx, familyID)
}

// RevokeAccount revokes every record belonging to an account, across all
// families.
func (m *Manager) RevokeAccount(ctx context.Context, accountID string) (int, error) {
	return m.store.RevokeAccount(ctx, accountID)
}
