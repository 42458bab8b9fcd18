package flows

import (
	"context"
	"time"
)

// LoginFailureKind classifies login failures.
type LoginFailureKind int

const (
	LoginFailureNone LoginFailureKind = iota
	LoginFailureValidation
	LoginFailureBadCredentials
	LoginFailureGate
	LoginFailureStore
	LoginFailureIssueToken
)

// LoginResult carries the issued pair or failure metadata.
type LoginResult struct {
	Failure          LoginFailureKind
	Err              error
	Account          *AccountRecord
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// LoginDeps captures login flow dependencies.
type LoginDeps struct {
	FindByEmail func(ctx context.Context, email string) (*AccountRecord, error)
	IsNotFound  func(err error) bool
	// GateError returns nil for accounts allowed to log in, otherwise the
	// sentinel naming the reason.
	GateError      func(acct *AccountRecord) error
	VerifyPassword func(plaintext, hash string) (bool, error)
	// RehashIfNeeded upgrades weak stored hashes after a successful
	// verify. Optional; failures are swallowed since the login succeeded.
	RehashIfNeeded func(ctx context.Context, acct *AccountRecord, plaintext string)
	IssueAccess    func(acct *AccountRecord) (token string, expiresAt time.Time, err error)
	IssueRefresh   func(ctx context.Context, accountID string) (raw string, expiresAt time.Time, err error)
}

// RunLogin authenticates credentials and issues a fresh token pair with a
// new refresh family. An unknown email and a wrong password fail
// identically.
func RunLogin(ctx context.Context, email, password string, deps LoginDeps) LoginResult {
	if email == "" || password == "" {
		return LoginResult{Failure: LoginFailureValidation}
	}

	account, err := deps.FindByEmail(ctx, email)
	if err != nil {
		if deps.IsNotFound(err) {
			return LoginResult{Failure: LoginFailureBadCredentials}
		}
		return LoginResult{Failure: LoginFailureStore, Err: err}
	}

	ok, err := deps.VerifyPassword(password, account.PasswordHash)
	if err != nil {
		return LoginResult{Failure: LoginFailureStore, Err: err}
	}
	if !ok {
		return LoginResult{Failure: LoginFailureBadCredentials, Account: account}
	}

	if err := deps.GateError(account); err != nil {
		return LoginResult{Failure: LoginFailureGate, Err: err, Account: account}
	}

	if deps.RehashIfNeeded != nil {
		deps.RehashIfNeeded(ctx, account, password)
	}

	access, accessExp, err := deps.IssueAccess(account)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssueToken, Err: err, Account: account}
	}

	refreshRaw, refreshExp, err := deps.IssueRefresh(ctx, account.ID)
	if err != nil {
		return LoginResult{Failure: LoginFailureIssueToken, Err: err, Account: account}
	}

	return LoginResult{
		Account:          account,
		AccessToken:      access,
		RefreshToken:     refreshRaw,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}
}
