package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/arnabpal2022/authcore/refresh"
)

// RefreshStore implements [refresh.Store] over the refresh_tokens table.
//
// Rotate runs inside a transaction with a row lock on the presented
// token, which gives the same single-winner guarantee as the Redis
// store's script: concurrent presenters of the same active token
// serialize on the lock, the first commits the rotation, the rest
// observe the revoked row.
type RefreshStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewRefreshStore wires a refresh store over db.
func NewRefreshStore(db *sql.DB) (*RefreshStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &RefreshStore{db: db, now: time.Now}, nil
}

func unavailable(err error) error {
	return fmt.Errorf("%w: %v", refresh.ErrUnavailable, err)
}

const refreshColumns = `id, account_id, family_id, token_hash, revoked, issued_at, expires_at, ip, user_agent, fingerprint`

func (s *RefreshStore) Save(ctx context.Context, rec *refresh.Record, ttl time.Duration) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (`+refreshColumns+`, purge_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.AccountID, rec.FamilyID, rec.Hash, rec.Revoked,
		rec.IssuedAt, rec.ExpiresAt, rec.IP, rec.UserAgent, rec.Fingerprint, s.now().Add(ttl),
	)
	if err != nil {
		return unavailable(err)
	}
	return nil
}

func (s *RefreshStore) FindByHash(ctx context.Context, hash string) (*refresh.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+refreshColumns+` FROM refresh_tokens WHERE token_hash = $1`, hash)

	var rec refresh.Record
	err := row.Scan(&rec.ID, &rec.AccountID, &rec.FamilyID, &rec.Hash, &rec.Revoked,
		&rec.IssuedAt, &rec.ExpiresAt, &rec.IP, &rec.UserAgent, &rec.Fingerprint)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, refresh.ErrNotFound
	}
	if err != nil {
		return nil, unavailable(err)
	}
	return &rec, nil
}

func (s *RefreshStore) Rotate(ctx context.Context, presentedHash string, successor *refresh.Record, ttl time.Duration) (refresh.RotateStatus, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return refresh.RotateNotFound, unavailable(err)
	}
	defer tx.Rollback()

	var revoked bool
	var expiresAt time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT revoked, expires_at FROM refresh_tokens WHERE token_hash = $1 FOR UPDATE`,
		presentedHash).Scan(&revoked, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return refresh.RotateNotFound, nil
	}
	if err != nil {
		return refresh.RotateNotFound, unavailable(err)
	}

	if revoked {
		return refresh.RotateRevoked, nil
	}
	if !expiresAt.After(s.now()) {
		return refresh.RotateExpired, nil
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1`, presentedHash); err != nil {
		return refresh.RotateNotFound, unavailable(err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO refresh_tokens (`+refreshColumns+`, purge_after)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		successor.ID, successor.AccountID, successor.FamilyID, successor.Hash, successor.Revoked,
		successor.IssuedAt, successor.ExpiresAt, successor.IP, successor.UserAgent, successor.Fingerprint, s.now().Add(ttl),
	); err != nil {
		return refresh.RotateNotFound, unavailable(err)
	}

	if err := tx.Commit(); err != nil {
		return refresh.RotateNotFound, unavailable(err)
	}
	return refresh.RotateOK, nil
}

func (s *RefreshStore) RevokeByHash(ctx context.Context, hash string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE token_hash = $1 AND revoked = FALSE`, hash)
	if err != nil {
		return false, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, unavailable(err)
	}
	return n > 0, nil
}

func (s *RefreshStore) RevokeFamily(ctx context.Context, familyID string) (int, error) {
	return s.revokeWhere(ctx, `family_id`, familyID)
}

func (s *RefreshStore) RevokeAccount(ctx context.Context, accountID string) (int, error) {
	return s.revokeWhere(ctx, `account_id`, accountID)
}

func (s *RefreshStore) revokeWhere(ctx context.Context, column, value string) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked = TRUE WHERE `+column+` = $1 AND revoked = FALSE`, value)
	if err != nil {
		return 0, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable(err)
	}
	return int(n), nil
}

// ReapExpired deletes rows whose retention window has elapsed. Run it
// periodically; frequency only affects table size, not correctness.
func (s *RefreshStore) ReapExpired(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM refresh_tokens WHERE purge_after < $1`, s.now())
	if err != nil {
		return 0, unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, unavailable(err)
	}
	return int(n), nil
}
