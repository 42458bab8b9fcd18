package authcore

import "errors"

var (
	// ErrValidation reports malformed or missing input on a public operation.
	ErrValidation = errors.New("invalid input")
	// ErrDuplicateAccount reports a registration against an email that already has an account.
	ErrDuplicateAccount = errors.New("account already exists")
	// ErrAccountNotFound reports a lookup that matched no account.
	ErrAccountNotFound = errors.New("account not found")
	// ErrInvalidCredentials covers both unknown email and wrong password on login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, forged, wrong-kind, and unknown tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpired reports a structurally valid token past its expiry.
	ErrExpired = errors.New("token expired")
	// ErrSecurityBreach reports reuse of an already-rotated refresh token. The
	// whole family is revoked before this is returned.
	ErrSecurityBreach = errors.New("refresh token reuse detected")
	// ErrStampMismatch reports a token carrying a stale security stamp.
	ErrStampMismatch = errors.New("security stamp mismatch")
	// ErrUnauthorized is the generic rejection for authenticated requests.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAccountUnverified reports a login before email verification.
	ErrAccountUnverified = errors.New("account unverified")
	// ErrAccountLocked reports a login against a locked account.
	ErrAccountLocked = errors.New("account locked")
	// ErrAccountDisabled reports a login against a deactivated account.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountDeleted reports a login against a soft-deleted account.
	ErrAccountDeleted = errors.New("account deleted")
	// ErrStoreUnavailable wraps backend failures. It is never conflated with
	// not-found results.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEngineNotReady reports a call on an engine that was not built.
	ErrEngineNotReady = errors.New("engine not initialized")
)
