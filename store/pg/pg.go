// Package pg provides Postgres-backed implementations of the authcore
// storage interfaces: AccountStore, FederatedIdentityStore, refresh.Store,
// and blacklist.Store.
//
// The refresh implementation keeps the same rotation state machine as the
// Redis store: exactly one concurrent presenter of an active token wins
// the rotation, losers observe the revoked row. Rows are kept past expiry
// for a retention window so an expired presentation is reported as
// expired, not unknown; [RefreshStore.ReapExpired] removes rows past that window.
package pg

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"

	authcore "github.com/arnabpal2022/authcore"
	"github.com/arnabpal2022/authcore/blacklist"
	"github.com/arnabpal2022/authcore/refresh"
)

var (
	_ authcore.AccountStore           = (*AccountStore)(nil)
	_ authcore.FederatedIdentityStore = (*FederatedIdentityStore)(nil)
	_ refresh.Store                   = (*RefreshStore)(nil)
	_ blacklist.Store                 = (*BlacklistStore)(nil)
)

// Schema holds the DDL for every table this package uses. Apply it with
// your migration tooling of choice.
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id             TEXT PRIMARY KEY,
	email          TEXT NOT NULL UNIQUE,
	password_hash  TEXT NOT NULL,
	first_name     TEXT NOT NULL DEFAULT '',
	last_name      TEXT NOT NULL DEFAULT '',
	phone_number   TEXT NOT NULL DEFAULT '',
	picture_url    TEXT NOT NULL DEFAULT '',
	email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	status         SMALLINT NOT NULL DEFAULT 0,
	role           TEXT NOT NULL DEFAULT '',
	security_stamp TEXT NOT NULL,
	deleted_at     TIMESTAMPTZ,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL,
	family_id   TEXT NOT NULL,
	token_hash  TEXT NOT NULL UNIQUE,
	revoked     BOOLEAN NOT NULL DEFAULT FALSE,
	issued_at   TIMESTAMPTZ NOT NULL,
	expires_at  TIMESTAMPTZ NOT NULL,
	purge_after TIMESTAMPTZ NOT NULL,
	ip          TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	fingerprint TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS refresh_tokens_family_idx ON refresh_tokens (family_id);
CREATE INDEX IF NOT EXISTS refresh_tokens_account_idx ON refresh_tokens (account_id);

CREATE TABLE IF NOT EXISTS token_blacklist (
	token_hash TEXT PRIMARY KEY,
	expires_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS federated_identities (
	id           TEXT PRIMARY KEY,
	account_id   TEXT NOT NULL,
	provider     TEXT NOT NULL,
	subject      TEXT NOT NULL,
	linked_at    TIMESTAMPTZ NOT NULL,
	last_used_at TIMESTAMPTZ NOT NULL,
	UNIQUE (provider, subject)
);
`

// Open opens a database handle through the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	return sql.Open("pgx", dsn)
}
