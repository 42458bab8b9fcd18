package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	authcore "github.com/arnabpal2022/authcore"
)

// ErrIdentityNotFound reports a (provider, subject) pair with no link.
var ErrIdentityNotFound = errors.New("federated identity not found")

// FederatedIdentityStore persists provider links in the
// federated_identities table.
type FederatedIdentityStore struct {
	db *sql.DB
}

// NewFederatedIdentityStore wires an identity store over db.
func NewFederatedIdentityStore(db *sql.DB) (*FederatedIdentityStore, error) {
	if db == nil {
		return nil, errors.New("db is required")
	}
	return &FederatedIdentityStore{db: db}, nil
}

const identityColumns = `id, account_id, provider, subject, linked_at, last_used_at`

func (s *FederatedIdentityStore) FindBySubject(ctx context.Context, provider, subject string) (*authcore.FederatedIdentity, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+identityColumns+` FROM federated_identities WHERE provider = $1 AND subject = $2`,
		provider, subject)

	var ident authcore.FederatedIdentity
	err := row.Scan(&ident.ID, &ident.AccountID, &ident.Provider, &ident.Subject,
		&ident.LinkedAt, &ident.LastUsedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan federated identity: %w", err)
	}
	return &ident, nil
}

// Save inserts a new link or refreshes the stored state of an existing
// one by primary key.
func (s *FederatedIdentityStore) Save(ctx context.Context, identity *authcore.FederatedIdentity) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO federated_identities (`+identityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			account_id = EXCLUDED.account_id,
			last_used_at = EXCLUDED.last_used_at`,
		identity.ID, identity.AccountID, identity.Provider, identity.Subject,
		identity.LinkedAt, identity.LastUsedAt,
	)
	if err != nil {
		return fmt.Errorf("save federated identity: %w", err)
	}
	return nil
}
