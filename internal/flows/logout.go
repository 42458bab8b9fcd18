package flows

import (
	"context"
	"time"
)

// LogoutResult reports what logout actually did. Logout is idempotent:
// unknown tokens are tolerated, only store failures surface as errors.
type LogoutResult struct {
	Err error
	// Blacklisted is true when the access token still had lifetime left
	// and entered the revocation list.
	Blacklisted bool
	// RefreshRevoked is true when the refresh token changed state.
	RefreshRevoked bool
	AccountID      string
}

// LogoutDeps captures logout flow dependencies.
type LogoutDeps struct {
	// ParseForLogout verifies the signature but tolerates expiry,
	// returning the claims so the remaining lifetime can be computed.
	ParseForLogout func(tokenStr string) (*TokenClaims, error)
	Now            func() time.Time
	BlacklistAdd   func(ctx context.Context, token string, ttl time.Duration) error
	// RevokeRefresh revokes exactly the presented token. No family
	// cascade: logout is not a breach signal.
	RevokeRefresh func(ctx context.Context, raw string) (bool, error)
}

// RunLogout blacklists the access token for its remaining lifetime and
// revokes the presented refresh token. An already-expired access token
// needs no blacklisting; an invalid one is ignored.
func RunLogout(ctx context.Context, accessToken, refreshRaw string, deps LogoutDeps) LogoutResult {
	result := LogoutResult{}

	if accessToken != "" {
		if claims, err := deps.ParseForLogout(accessToken); err == nil {
			result.AccountID = claims.AccountID
			remaining := claims.ExpiresAt.Sub(deps.Now())
			if remaining > 0 {
				if err := deps.BlacklistAdd(ctx, accessToken, remaining); err != nil {
					return LogoutResult{Err: err, AccountID: result.AccountID}
				}
				result.Blacklisted = true
			}
		}
	}

	if refreshRaw != "" {
		revoked, err := deps.RevokeRefresh(ctx, refreshRaw)
		if err != nil {
			return LogoutResult{Err: err, AccountID: result.AccountID, Blacklisted: result.Blacklisted}
		}
		result.RefreshRevoked = revoked
	}

	return result
}
