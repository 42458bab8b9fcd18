package flows

import "context"

// AuthenticateFailureKind classifies access token rejections. The root
// engine collapses all of them into one external rejection; the kind
// exists for metrics and audit only.
type AuthenticateFailureKind int

const (
	AuthenticateFailureNone AuthenticateFailureKind = iota
	AuthenticateFailureInvalidToken
	AuthenticateFailureExpired
	AuthenticateFailureBlacklisted
	AuthenticateFailureAccountNotFound
	AuthenticateFailureGate
	AuthenticateFailureStampMismatch
	AuthenticateFailureRole
	AuthenticateFailureStore
)

// AuthenticateResult carries the resolved principal or failure metadata.
type AuthenticateResult struct {
	Failure     AuthenticateFailureKind
	Err         error
	AccountID   string
	Account     *AccountRecord
	Permissions []string
}

// AuthenticateDeps captures access validation dependencies.
type AuthenticateDeps struct {
	ParseAccess       func(tokenStr string) (*TokenClaims, error)
	IsExpired         func(err error) bool
	BlacklistContains func(ctx context.Context, token string) (bool, error)
	FindByID          func(ctx context.Context, id string) (*AccountRecord, error)
	IsNotFound        func(err error) bool
	GateError         func(acct *AccountRecord) error
	// Permissions resolves the effective set for a role, failing closed
	// on unknown roles.
	Permissions func(role string) ([]string, error)
}

// RunAuthenticate validates an access token end to end: signature and
// expiry, the revocation list, account state, the security stamp, and
// the role's effective permissions.
func RunAuthenticate(ctx context.Context, tokenStr string, deps AuthenticateDeps) AuthenticateResult {
	claims, err := deps.ParseAccess(tokenStr)
	if err != nil {
		if deps.IsExpired(err) {
			return AuthenticateResult{Failure: AuthenticateFailureExpired, Err: err}
		}
		return AuthenticateResult{Failure: AuthenticateFailureInvalidToken, Err: err}
	}

	blacklisted, err := deps.BlacklistContains(ctx, tokenStr)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureStore, Err: err, AccountID: claims.AccountID}
	}
	if blacklisted {
		return AuthenticateResult{Failure: AuthenticateFailureBlacklisted, AccountID: claims.AccountID}
	}

	account, err := deps.FindByID(ctx, claims.AccountID)
	if err != nil {
		if deps.IsNotFound(err) {
			return AuthenticateResult{Failure: AuthenticateFailureAccountNotFound, Err: err, AccountID: claims.AccountID}
		}
		return AuthenticateResult{Failure: AuthenticateFailureStore, Err: err, AccountID: claims.AccountID}
	}

	if err := deps.GateError(account); err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureGate, Err: err, AccountID: account.ID, Account: account}
	}

	// a rotated stamp invalidates every token minted before the rotation
	if claims.Stamp != account.SecurityStamp {
		return AuthenticateResult{Failure: AuthenticateFailureStampMismatch, AccountID: account.ID, Account: account}
	}

	perms, err := deps.Permissions(account.Role)
	if err != nil {
		return AuthenticateResult{Failure: AuthenticateFailureRole, Err: err, AccountID: account.ID, Account: account}
	}

	return AuthenticateResult{
		AccountID:   account.ID,
		Account:     account,
		Permissions: perms,
	}
}
