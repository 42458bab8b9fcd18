// Package flows holds the orchestration logic of every engine operation,
// expressed over dependency structs so the root package can wire storage,
// hashing, and token issuance without import cycles.
package flows

import "time"

// AccountRecord is the account view flows operate on. Status values
// mirror the root package: 0 pending, 1 active, 2 locked, 3 deactivated,
// 4 deleted.
type AccountRecord struct {
	ID            string
	Email         string
	PasswordHash  string
	EmailVerified bool
	Status        uint8
	Role          string
	SecurityStamp string
	Deleted       bool
}

// TokenClaims is the parsed view of a JWT flows care about.
type TokenClaims struct {
	AccountID string
	Email     string
	Stamp     string
	ExpiresAt time.Time
}

// Deps groups flow dependency sets. The root engine builds this once and
// delegates each public method to the matching flow.
type Deps struct {
	Register     RegisterDeps
	Verify       VerifyDeps
	Login        LoginDeps
	Refresh      RefreshDeps
	Logout       LogoutDeps
	Forgot       ForgotDeps
	Reset        ResetDeps
	Authenticate AuthenticateDeps
}
