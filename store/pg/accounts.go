package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	authcore "github.com/arnabpal2022/authcore"
)

// AccountStore persists accounts in the accounts table.
type AccountStore struct {
	db *sql.DB
}

// NewAccountStore wires an account store over db.
func NewAccountStore(db *sql.DB) (*AccountStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &AccountStore{db: db}, nil
}

const accountColumns = `id, email, password_hash, first_name, last_name, phone_number,
	picture_url, email_verified, status, role, security_stamp, deleted_at, created_at, updated_at`

func scanAccount(row *sql.Row) (*authcore.Account, error) {
	var a authcore.Account
	var deletedAt sql.NullTime
	err := row.Scan(
		&a.ID, &a.Email, &a.PasswordHash, &a.FirstName, &a.LastName, &a.PhoneNumber,
		&a.ProfilePictureURL, &a.EmailVerified, &a.Status, &a.Role, &a.SecurityStamp,
		&deletedAt, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, authcore.ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan account: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		a.DeletedAt = &t
	}
	return &a, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*authcore.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE email = $1`, email)
	return scanAccount(row)
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*authcore.Account, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
	return scanAccount(row)
}

// Save inserts a new account or replaces the stored state of an existing
// one by primary key.
func (s *AccountStore) Save(ctx context.Context, account *authcore.Account) error {
	var deletedAt sql.NullTime
	if account.DeletedAt != nil {
		deletedAt = sql.NullTime{Time: *account.DeletedAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			password_hash = EXCLUDED.password_hash,
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			phone_number = EXCLUDED.phone_number,
			picture_url = EXCLUDED.picture_url,
			email_verified = EXCLUDED.email_verified,
			status = EXCLUDED.status,
			role = EXCLUDED.role,
			security_stamp = EXCLUDED.security_stamp,
			deleted_at = EXCLUDED.deleted_at,
			updated_at = EXCLUDED.updated_at`,
		account.ID, account.Email, account.PasswordHash, account.FirstName, account.LastName,
		account.PhoneNumber, account.ProfilePictureURL, account.EmailVerified, account.Status,
		account.Role, account.SecurityStamp, deletedAt, account.CreatedAt, account.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save account: %w", err)
	}
	return nil
}
