package flows

import (
	"context"
	"time"
)

// RefreshFailureKind classifies refresh failures for root-level mapping.
type RefreshFailureKind int

const (
	RefreshFailureNone RefreshFailureKind = iota
	RefreshFailureValidation
	RefreshFailureNotFound
	RefreshFailureExpired
	RefreshFailureReuse
	RefreshFailureAccountNotFound
	RefreshFailureGate
	RefreshFailureStore
	RefreshFailureIssueToken
)

// RefreshResult carries the rotated pair or failure metadata.
type RefreshResult struct {
	Failure          RefreshFailureKind
	Err              error
	AccountID        string
	Account          *AccountRecord
	AccessToken      string
	RefreshToken     string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// RefreshDeps captures refresh flow dependencies.
type RefreshDeps struct {
	// Rotate runs the store-side rotation state machine. The classifiers
	// below map its sentinel errors onto failure kinds. On the reuse
	// rejection accountID must still name the affected account.
	Rotate          func(ctx context.Context, raw string) (newRaw, accountID string, expiresAt time.Time, err error)
	IsTokenNotFound func(err error) bool
	IsTokenExpired  func(err error) bool
	IsReuse         func(err error) bool
	FindByID        func(ctx context.Context, id string) (*AccountRecord, error)
	IsNotFound      func(err error) bool
	GateError       func(acct *AccountRecord) error
	IssueAccess     func(acct *AccountRecord) (token string, expiresAt time.Time, err error)
}

// RunRefresh exchanges a refresh token for a new pair. Reuse of a
// consumed token surfaces as RefreshFailureReuse after the store has
// revoked the family; expiry is a terminal no-op.
func RunRefresh(ctx context.Context, raw string, deps RefreshDeps) RefreshResult {
	if raw == "" {
		return RefreshResult{Failure: RefreshFailureValidation}
	}

	newRaw, accountID, refreshExp, err := deps.Rotate(ctx, raw)
	if err != nil {
		switch {
		case deps.IsReuse(err):
			return RefreshResult{Failure: RefreshFailureReuse, Err: err, AccountID: accountID}
		case deps.IsTokenExpired(err):
			return RefreshResult{Failure: RefreshFailureExpired, Err: err}
		case deps.IsTokenNotFound(err):
			return RefreshResult{Failure: RefreshFailureNotFound, Err: err}
		default:
			return RefreshResult{Failure: RefreshFailureStore, Err: err}
		}
	}

	account, err := deps.FindByID(ctx, accountID)
	if err != nil {
		if deps.IsNotFound(err) {
			return RefreshResult{Failure: RefreshFailureAccountNotFound, Err: err, AccountID: accountID}
		}
		return RefreshResult{Failure: RefreshFailureStore, Err: err, AccountID: accountID}
	}

	if err := deps.GateError(account); err != nil {
		return RefreshResult{Failure: RefreshFailureGate, Err: err, AccountID: accountID, Account: account}
	}

	access, accessExp, err := deps.IssueAccess(account)
	if err != nil {
		return RefreshResult{Failure: RefreshFailureIssueToken, Err: err, AccountID: accountID, Account: account}
	}

	return RefreshResult{
		AccountID:        accountID,
		Account:          account,
		AccessToken:      access,
		RefreshToken:     newRaw,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}
}
