package pg

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/arnabpal2022/authcore/blacklist"
)

// BlacklistStore implements [blacklist.Store] over the token_blacklist
// table. Expiry is lazy: Contains ignores expired rows and
// [BlacklistStore.DeleteExpired] removes them.
type BlacklistStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewBlacklistStore wires a blacklist store over db.
func NewBlacklistStore(db *sql.DB) (*BlacklistStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &BlacklistStore{db: db, now: time.Now}, nil
}

func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// Add marks the token revoked until its natural expiry. Idempotent, and
// a no-op for ttl <= 0.
func (s *BlacklistStore) Add(ctx context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO token_blacklist (token_hash, expires_at)
		VALUES ($1, $2)
		ON CONFLICT (token_hash) DO NOTHING`,
		blacklistKey(token), s.now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", blacklist.ErrUnavailable, err)
	}
	return nil
}

// Contains reports whether the token is currently revoked.
func (s *BlacklistStore) Contains(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM token_blacklist WHERE token_hash = $1 AND expires_at > $2
		)`, blacklistKey(token), s.now(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: %v", blacklist.ErrUnavailable, err)
	}
	return exists, nil
}

// DeleteExpired removes rows that expired at or before the cutoff. Run
// it periodically from external housekeeping.
func (s *BlacklistStore) DeleteExpired(ctx context.Context, before time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM token_blacklist WHERE expires_at <= $1`, before)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", blacklist.ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", blacklist.ErrUnavailable, err)
	}
	return int(n), nil
}
