package flows

import "context"

// VerifyFailureKind classifies email verification failures.
type VerifyFailureKind int

const (
	VerifyFailureNone VerifyFailureKind = iota
	VerifyFailureInvalidToken
	VerifyFailureExpired
	VerifyFailureAccountNotFound
	VerifyFailureStore
)

// VerifyResult carries the verified account or failure metadata.
type VerifyResult struct {
	Failure VerifyFailureKind
	Err     error
	// AlreadyVerified marks the idempotent path: the account was active
	// before this call and nothing was written.
	AlreadyVerified bool
	Account         *AccountRecord
}

// VerifyDeps captures verification flow dependencies.
type VerifyDeps struct {
	// ParseVerification rejects non-verification tokens. IsExpired
	// distinguishes the expiry rejection from every other one.
	ParseVerification func(tokenStr string) (*TokenClaims, error)
	IsExpired         func(err error) bool
	FindByID          func(ctx context.Context, id string) (*AccountRecord, error)
	IsNotFound        func(err error) bool
	// MarkVerified flips the account to verified and active and rotates
	// its security stamp, invalidating tokens minted before verification.
	MarkVerified func(ctx context.Context, accountID string) (*AccountRecord, error)
}

// RunVerifyEmail consumes a verification token. Re-verifying an already
// active account succeeds without side effects.
func RunVerifyEmail(ctx context.Context, tokenStr string, deps VerifyDeps) VerifyResult {
	claims, err := deps.ParseVerification(tokenStr)
	if err != nil {
		if deps.IsExpired(err) {
			return VerifyResult{Failure: VerifyFailureExpired, Err: err}
		}
		return VerifyResult{Failure: VerifyFailureInvalidToken, Err: err}
	}

	account, err := deps.FindByID(ctx, claims.AccountID)
	if err != nil {
		if deps.IsNotFound(err) {
			return VerifyResult{Failure: VerifyFailureAccountNotFound, Err: err}
		}
		return VerifyResult{Failure: VerifyFailureStore, Err: err}
	}

	// a token minted for a different address than the account now has is stale
	if claims.Email != "" && claims.Email != account.Email {
		return VerifyResult{Failure: VerifyFailureInvalidToken}
	}

	if account.EmailVerified {
		return VerifyResult{AlreadyVerified: true, Account: account}
	}

	updated, err := deps.MarkVerified(ctx, account.ID)
	if err != nil {
		return VerifyResult{Failure: VerifyFailureStore, Err: err}
	}

	return VerifyResult{Account: updated}
}
