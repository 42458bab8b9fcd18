package flows

import "context"

// ForgotFailureKind classifies forgot-password failures. An unknown email
// is not a failure: the flow reports silent success to keep account
// existence unobservable.
type ForgotFailureKind int

const (
	ForgotFailureNone ForgotFailureKind = iota
	ForgotFailureValidation
	ForgotFailureStore
	ForgotFailureIssueToken
)

// ForgotResult carries the issued reset token or failure metadata.
type ForgotResult struct {
	Failure ForgotFailureKind
	Err     error
	// Silent marks the unknown-email path: the caller sees success,
	// nothing was issued.
	Silent     bool
	Account    *AccountRecord
	ResetToken string
}

// ForgotDeps captures forgot-password flow dependencies.
type ForgotDeps struct {
	FindByEmail func(ctx context.Context, email string) (*AccountRecord, error)
	IsNotFound  func(err error) bool
	// IssueReset binds the token to the account's current security stamp
	// so completing a reset invalidates any other outstanding reset token.
	IssueReset func(accountID, stamp string) (string, error)
	SendReset  func(accountID, email, token string)
}

// RunForgotPassword issues a reset token for a known email and does
// nothing observable for an unknown one.
func RunForgotPassword(ctx context.Context, email string, deps ForgotDeps) ForgotResult {
	if email == "" {
		return ForgotResult{Failure: ForgotFailureValidation}
	}

	account, err := deps.FindByEmail(ctx, email)
	if err != nil {
		if deps.IsNotFound(err) {
			return ForgotResult{Silent: true}
		}
		return ForgotResult{Failure: ForgotFailureStore, Err: err}
	}

	token, err := deps.IssueReset(account.ID, account.SecurityStamp)
	if err != nil {
		return ForgotResult{Failure: ForgotFailureIssueToken, Err: err}
	}

	if deps.SendReset != nil {
		deps.SendReset(account.ID, account.Email, token)
	}

	return ForgotResult{Account: account, ResetToken: token}
}

// ResetFailureKind classifies reset-password failures.
type ResetFailureKind int

const (
	ResetFailureNone ResetFailureKind = iota
	ResetFailureValidation
	ResetFailureInvalidToken
	ResetFailureExpired
	ResetFailureAccountNotFound
	ResetFailureStampMismatch
	ResetFailureWeakPassword
	ResetFailureStore
)

// ResetResult carries the updated account or failure metadata.
type ResetResult struct {
	Failure ResetFailureKind
	Err     error
	Account *AccountRecord
}

// ResetDeps captures reset-password flow dependencies.
type ResetDeps struct {
	ParseReset     func(tokenStr string) (*TokenClaims, error)
	IsExpired      func(err error) bool
	FindByID       func(ctx context.Context, id string) (*AccountRecord, error)
	IsNotFound     func(err error) bool
	HashPassword   func(plaintext string) (string, error)
	IsWeakPassword func(err error) bool
	// UpdatePassword stores the new hash and rotates the security stamp,
	// killing every outstanding access and reset token.
	UpdatePassword func(ctx context.Context, accountID, newHash string) (*AccountRecord, error)
}

// RunResetPassword consumes a reset token. The stamp embedded in the
// token must still match the account; a reset completed in the meantime
// rotated it and makes this token dead.
func RunResetPassword(ctx context.Context, tokenStr, newPassword string, deps ResetDeps) ResetResult {
	if newPassword == "" {
		return ResetResult{Failure: ResetFailureValidation}
	}

	claims, err := deps.ParseReset(tokenStr)
	if err != nil {
		if deps.IsExpired(err) {
			return ResetResult{Failure: ResetFailureExpired, Err: err}
		}
		return ResetResult{Failure: ResetFailureInvalidToken, Err: err}
	}

	account, err := deps.FindByID(ctx, claims.AccountID)
	if err != nil {
		if deps.IsNotFound(err) {
			return ResetResult{Failure: ResetFailureAccountNotFound, Err: err}
		}
		return ResetResult{Failure: ResetFailureStore, Err: err}
	}

	if claims.Stamp != account.SecurityStamp {
		return ResetResult{Failure: ResetFailureStampMismatch}
	}

	hash, err := deps.HashPassword(newPassword)
	if err != nil {
		if deps.IsWeakPassword != nil && deps.IsWeakPassword(err) {
			return ResetResult{Failure: ResetFailureWeakPassword, Err: err}
		}
		return ResetResult{Failure: ResetFailureStore, Err: err}
	}

	updated, err := deps.UpdatePassword(ctx, account.ID, hash)
	if err != nil {
		return ResetResult{Failure: ResetFailureStore, Err: err}
	}

	return ResetResult{Account: updated}
}
