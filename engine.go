package authcore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/arnabpal2022/authcore/blacklist"
	internalaudit "github.com/arnabpal2022/authcore/internal/audit"
	"github.com/arnabpal2022/authcore/internal/flows"
	"github.com/arnabpal2022/authcore/internal/ids"
	"github.com/arnabpal2022/authcore/notify"
	"github.com/arnabpal2022/authcore/password"
	"github.com/arnabpal2022/authcore/permission"
	"github.com/arnabpal2022/authcore/refresh"
	"github.com/arnabpal2022/authcore/token"
)

// RegisterRequest is the input of [Engine.Register].
type RegisterRequest struct {
	Email       string
	Password    string
	FirstName   string
	LastName    string
	PhoneNumber string
}

// Engine is the identity and session core. Construct one with [Builder];
// the zero value rejects every call with [ErrEngineNotReady].
//
// All methods are safe for concurrent use.
type Engine struct {
	config    Config
	accounts  AccountStore
	refresh   *refresh.Manager
	blacklist blacklist.Store
	issuer    *token.Issuer
	hasher    *password.Hasher
	registry  *permission.Registry
	roles     *permission.RoleManager
	audit     *internalaudit.Dispatcher
	notify    *notify.Dispatcher
	metrics   *Metrics
	logger    *slog.Logger
	flows     flows.Service
	now       func() time.Time
}

func (e *Engine) ready() bool {
	return e != nil && e.flows.Initialized()
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}

func normalizeEmail(email string) string {
	return strings.TrimSpace(strings.ToLower(email))
}

// Register creates a pending account and dispatches its verification
// token. The account cannot log in until VerifyEmail succeeds.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*Account, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res := e.flows.Register(ctx, flows.RegisterRequest{
		Email:       req.Email,
		Password:    req.Password,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	})

	switch res.Failure {
	case flows.RegisterFailureNone:
	case flows.RegisterFailureValidation:
		return nil, ErrValidation
	case flows.RegisterFailureDuplicate:
		e.metrics.Inc(MetricRegisterDuplicate)
		return nil, ErrDuplicateAccount
	case flows.RegisterFailureWeakPassword:
		return nil, fmt.Errorf("%w: %v", ErrValidation, res.Err)
	case flows.RegisterFailureStore:
		return nil, storeErr(res.Err)
	default:
		return nil, res.Err
	}

	account, err := e.accounts.FindByID(ctx, res.Account.ID)
	if err != nil {
		return nil, storeErr(err)
	}

	e.metrics.Inc(MetricRegisterSuccess)
	e.emit(ctx, internalaudit.TypeRegistered, account.ID, account.Email, true, nil, nil)
	return account, nil
}

// VerifyEmail consumes a verification token, activates the account, and
// rotates its security stamp. Re-verifying an active account succeeds
// without side effects.
func (e *Engine) VerifyEmail(ctx context.Context, verificationToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := e.flows.VerifyEmail(ctx, verificationToken)

	switch res.Failure {
	case flows.VerifyFailureNone:
	case flows.VerifyFailureExpired:
		e.metrics.Inc(MetricVerifyFailure)
		return ErrExpired
	case flows.VerifyFailureInvalidToken, flows.VerifyFailureAccountNotFound:
		e.metrics.Inc(MetricVerifyFailure)
		return ErrInvalidToken
	default:
		return storeErr(res.Err)
	}

	e.metrics.Inc(MetricVerifySuccess)
	if !res.AlreadyVerified {
		e.emit(ctx, internalaudit.TypeEmailVerified, res.Account.ID, res.Account.Email, true, nil, nil)
	}
	return nil
}

// Login authenticates credentials and issues an access token plus a
// refresh token in a fresh family. Unknown email and wrong password are
// indistinguishable to the caller.
func (e *Engine) Login(ctx context.Context, email, plaintext string) (*TokenPair, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res := e.flows.Login(ctx, normalizeEmail(email), plaintext)

	switch res.Failure {
	case flows.LoginFailureNone:
	case flows.LoginFailureValidation:
		return nil, ErrValidation
	case flows.LoginFailureBadCredentials:
		e.metrics.Inc(MetricLoginFailure)
		e.emitFailed(ctx, internalaudit.TypeLogin, res.Account, ErrInvalidCredentials)
		return nil, ErrInvalidCredentials
	case flows.LoginFailureGate:
		e.metrics.Inc(MetricLoginFailure)
		e.emitFailed(ctx, internalaudit.TypeLogin, res.Account, res.Err)
		return nil, res.Err
	case flows.LoginFailureStore:
		return nil, storeErr(res.Err)
	default:
		return nil, res.Err
	}

	e.metrics.Inc(MetricLoginSuccess)
	e.emit(ctx, internalaudit.TypeLogin, res.Account.ID, res.Account.Email, true, nil, nil)
	return &TokenPair{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		AccessExpiresAt:  res.AccessExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
	}, nil
}

// Refresh exchanges a refresh token for a new pair. Presenting an
// already-rotated token revokes every descendant in its family and
// returns [ErrSecurityBreach].
func (e *Engine) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	res := e.flows.Refresh(ctx, refreshToken)

	switch res.Failure {
	case flows.RefreshFailureNone:
	case flows.RefreshFailureValidation:
		return nil, ErrValidation
	case flows.RefreshFailureReuse:
		e.metrics.Inc(MetricRefreshFailure)
		e.metrics.Inc(MetricRefreshReuseDetected)
		e.logger.WarnContext(ctx, "refresh token reuse detected, family revoked",
			slog.String("account_id", res.AccountID),
			slog.String("ip", clientIPFromContext(ctx)))
		e.emit(ctx, internalaudit.TypeBreach, res.AccountID, "", false, ErrSecurityBreach, nil)
		return nil, ErrSecurityBreach
	case flows.RefreshFailureExpired:
		e.metrics.Inc(MetricRefreshFailure)
		return nil, ErrExpired
	case flows.RefreshFailureNotFound, flows.RefreshFailureAccountNotFound:
		e.metrics.Inc(MetricRefreshFailure)
		return nil, ErrInvalidToken
	case flows.RefreshFailureGate:
		e.metrics.Inc(MetricRefreshFailure)
		e.emitFailed(ctx, internalaudit.TypeRefresh, res.Account, res.Err)
		return nil, res.Err
	case flows.RefreshFailureStore:
		return nil, storeErr(res.Err)
	default:
		return nil, res.Err
	}

	e.metrics.Inc(MetricRefreshSuccess)
	e.emit(ctx, internalaudit.TypeRefresh, res.AccountID, res.Account.Email, true, nil, nil)
	return &TokenPair{
		AccessToken:      res.AccessToken,
		RefreshToken:     res.RefreshToken,
		AccessExpiresAt:  res.AccessExpiresAt,
		RefreshExpiresAt: res.RefreshExpiresAt,
	}, nil
}

// Logout blacklists the access token for its remaining lifetime and
// revokes the presented refresh token. Unknown or expired tokens are
// tolerated; logout is idempotent.
func (e *Engine) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := e.flows.Logout(ctx, accessToken, refreshToken)
	if res.Err != nil {
		return storeErr(res.Err)
	}

	e.metrics.Inc(MetricLogout)
	e.emit(ctx, internalaudit.TypeLogout, res.AccountID, "", true, nil, map[string]string{
		"blacklisted":     fmt.Sprintf("%t", res.Blacklisted),
		"refresh_revoked": fmt.Sprintf("%t", res.RefreshRevoked),
	})
	return nil
}

// ForgotPassword issues a reset token for a known email and does nothing
// observable for an unknown one. The caller sees success either way.
func (e *Engine) ForgotPassword(ctx context.Context, email string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := e.flows.ForgotPassword(ctx, normalizeEmail(email))

	switch res.Failure {
	case flows.ForgotFailureNone:
	case flows.ForgotFailureValidation:
		return ErrValidation
	case flows.ForgotFailureStore:
		return storeErr(res.Err)
	default:
		return res.Err
	}

	e.metrics.Inc(MetricResetRequest)
	if !res.Silent {
		e.emit(ctx, internalaudit.TypeResetRequested, res.Account.ID, res.Account.Email, true, nil, nil)
	}
	return nil
}

// ResetPassword consumes a reset token, stores the new password hash,
// rotates the security stamp, and revokes every refresh session of the
// account. A completed reset makes all other outstanding reset tokens
// dead via the stamp.
func (e *Engine) ResetPassword(ctx context.Context, resetToken, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	res := e.flows.ResetPassword(ctx, resetToken, newPassword)

	switch res.Failure {
	case flows.ResetFailureNone:
	case flows.ResetFailureValidation:
		e.metrics.Inc(MetricResetFailure)
		return ErrValidation
	case flows.ResetFailureExpired:
		e.metrics.Inc(MetricResetFailure)
		return ErrExpired
	case flows.ResetFailureInvalidToken, flows.ResetFailureAccountNotFound:
		e.metrics.Inc(MetricResetFailure)
		return ErrInvalidToken
	case flows.ResetFailureStampMismatch:
		e.metrics.Inc(MetricResetFailure)
		e.metrics.Inc(MetricStampMismatch)
		return ErrStampMismatch
	case flows.ResetFailureWeakPassword:
		e.metrics.Inc(MetricResetFailure)
		return fmt.Errorf("%w: %v", ErrValidation, res.Err)
	default:
		return storeErr(res.Err)
	}

	// Existing sessions die with the password. The reset itself is already
	// committed, so a revocation error is recorded but not surfaced.
	revoked, revokeErr := e.refresh.RevokeAccount(ctx, res.Account.ID)

	e.metrics.Inc(MetricResetSuccess)
	meta := map[string]string{"sessions_revoked": fmt.Sprintf("%d", revoked)}
	if revokeErr != nil {
		meta["revoke_error"] = revokeErr.Error()
	}
	e.emit(ctx, internalaudit.TypeResetCompleted, res.Account.ID, res.Account.Email, true, nil, meta)
	return nil
}

// Authenticate validates an access token end to end and resolves the
// caller's principal with its effective permissions.
func (e *Engine) Authenticate(ctx context.Context, accessToken string) (*Principal, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	start := e.now()
	res := e.flows.Authenticate(ctx, accessToken)
	e.metrics.Observe(MetricAuthenticateLatency, e.now().Sub(start))

	switch res.Failure {
	case flows.AuthenticateFailureNone:
	case flows.AuthenticateFailureExpired:
		e.rejectAuth(ctx, res.AccountID, "expired")
		return nil, ErrExpired
	case flows.AuthenticateFailureInvalidToken, flows.AuthenticateFailureAccountNotFound:
		e.rejectAuth(ctx, res.AccountID, "invalid")
		return nil, ErrInvalidToken
	case flows.AuthenticateFailureBlacklisted:
		e.metrics.Inc(MetricBlacklistHit)
		e.rejectAuth(ctx, res.AccountID, "blacklisted")
		return nil, ErrUnauthorized
	case flows.AuthenticateFailureStampMismatch:
		e.metrics.Inc(MetricStampMismatch)
		e.rejectAuth(ctx, res.AccountID, "stamp_mismatch")
		return nil, ErrStampMismatch
	case flows.AuthenticateFailureGate, flows.AuthenticateFailureRole:
		e.rejectAuth(ctx, res.AccountID, "gate")
		return nil, ErrUnauthorized
	default:
		return nil, storeErr(res.Err)
	}

	e.metrics.Inc(MetricAuthenticateSuccess)
	return &Principal{
		AccountID:   res.Account.ID,
		Email:       res.Account.Email,
		Role:        res.Account.Role,
		Permissions: res.Permissions,
	}, nil
}

// RevokeAllSessions revokes every refresh token of an account across all
// families and returns how many records changed state. Outstanding access
// tokens live until expiry unless blacklisted separately.
func (e *Engine) RevokeAllSessions(ctx context.Context, accountID string) (int, error) {
	if !e.ready() {
		return 0, ErrEngineNotReady
	}
	if accountID == "" {
		return 0, ErrValidation
	}

	n, err := e.refresh.RevokeAccount(ctx, accountID)
	if err != nil {
		return 0, storeErr(err)
	}

	e.emit(ctx, internalaudit.TypeRevokeAll, accountID, "", true, nil, map[string]string{
		"sessions_revoked": fmt.Sprintf("%d", n),
	})
	return n, nil
}

// EffectivePermissions resolves the full permission set of a role through
// its parent chain, sorted and deduplicated. Unknown roles fail closed.
func (e *Engine) EffectivePermissions(role string) ([]string, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	perms, err := e.roles.EffectivePermissions(role)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return perms, nil
}

// MetricsSnapshot returns a point-in-time copy of the engine's counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}

// Close drains and stops the audit and notification dispatchers and the
// in-memory blacklist janitor, if one is running.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
	e.notify.Close()
	if closer, ok := e.blacklist.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (e *Engine) emit(ctx context.Context, eventType, accountID, email string, success bool, cause error, metadata map[string]string) {
	if e.audit == nil {
		return
	}
	event := internalaudit.Event{
		Timestamp: e.now(),
		EventType: eventType,
		AccountID: accountID,
		Email:     email,
		IP:        clientIPFromContext(ctx),
		UserAgent: userAgentFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if cause != nil {
		event.Error = cause.Error()
	}
	e.audit.Emit(ctx, event)
}

func (e *Engine) emitFailed(ctx context.Context, eventType string, acct *flows.AccountRecord, cause error) {
	var id, email string
	if acct != nil {
		id, email = acct.ID, acct.Email
	}
	e.emit(ctx, eventType, id, email, false, cause, nil)
}

func (e *Engine) rejectAuth(ctx context.Context, accountID, reason string) {
	e.metrics.Inc(MetricAuthenticateFailure)
	e.emit(ctx, internalaudit.TypeAuthRejected, accountID, "", false, nil, map[string]string{"reason": reason})
}

// gateError names the first reason an account may not hold a session.
// Soft deletion outranks every other state.
func (e *Engine) gateError(acct *flows.AccountRecord) error {
	switch {
	case acct.Deleted || acct.Status == uint8(StatusDeleted):
		return ErrAccountDeleted
	case acct.Status == uint8(StatusLocked):
		return ErrAccountLocked
	case acct.Status == uint8(StatusDeactivated):
		return ErrAccountDisabled
	case e.config.Account.RequireVerified && !acct.EmailVerified:
		return ErrAccountUnverified
	default:
		return nil
	}
}

func accountRecord(a *Account) *flows.AccountRecord {
	return &flows.AccountRecord{
		ID:            a.ID,
		Email:         a.Email,
		PasswordHash:  a.PasswordHash,
		EmailVerified: a.EmailVerified,
		Status:        uint8(a.Status),
		Role:          a.Role,
		SecurityStamp: a.SecurityStamp,
		Deleted:       a.DeletedAt != nil,
	}
}

func tokenClaims(c *token.Claims) *flows.TokenClaims {
	tc := &flows.TokenClaims{
		AccountID: c.AccountID(),
		Email:     c.Email,
		Stamp:     c.Stamp,
	}
	if c.ExpiresAt != nil {
		tc.ExpiresAt = c.ExpiresAt.Time
	}
	return tc
}

// buildFlows wires every flow dependency to the engine's subsystems.
// Closures capture e; all per-call state travels through arguments.
func (e *Engine) buildFlows() flows.Service {
	findByID := func(ctx context.Context, id string) (*flows.AccountRecord, error) {
		account, err := e.accounts.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return accountRecord(account), nil
	}
	findByEmail := func(ctx context.Context, email string) (*flows.AccountRecord, error) {
		account, err := e.accounts.FindByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		return accountRecord(account), nil
	}
	isAccountNotFound := func(err error) bool { return errors.Is(err, ErrAccountNotFound) }
	isTokenExpired := func(err error) bool { return errors.Is(err, token.ErrExpired) }
	isWeakPassword := func(err error) bool { return errors.Is(err, password.ErrTooShort) }
	issueAccess := func(acct *flows.AccountRecord) (string, time.Time, error) {
		return e.issuer.IssueAccess(acct.ID, acct.Email, acct.SecurityStamp)
	}

	return flows.New(flows.Deps{
		Register: flows.RegisterDeps{
			EmailExists: func(ctx context.Context, email string) (bool, error) {
				_, err := e.accounts.FindByEmail(ctx, email)
				if errors.Is(err, ErrAccountNotFound) {
					return false, nil
				}
				if err != nil {
					return false, err
				}
				return true, nil
			},
			HashPassword:   e.hasher.Hash,
			IsWeakPassword: isWeakPassword,
			CreateAccount: func(ctx context.Context, req flows.RegisterRequest, passwordHash string) (*flows.AccountRecord, error) {
				now := e.now()
				account := &Account{
					ID:            ids.New(),
					Email:         req.Email,
					PasswordHash:  passwordHash,
					FirstName:     req.FirstName,
					LastName:      req.LastName,
					PhoneNumber:   req.PhoneNumber,
					Status:        StatusPending,
					Role:          e.config.Account.DefaultRole,
					SecurityStamp: uuid.NewString(),
					CreatedAt:     now,
					UpdatedAt:     now,
				}
				if err := e.accounts.Save(ctx, account); err != nil {
					return nil, err
				}
				return accountRecord(account), nil
			},
			IssueVerification: func(accountID, email string) (string, error) {
				t, _, err := e.issuer.IssueVerification(accountID, email)
				return t, err
			},
			SendVerification: func(accountID, email, verificationToken string) {
				e.notify.Enqueue(notify.Message{
					Kind:      notify.KindVerifyEmail,
					AccountID: accountID,
					Email:     email,
					Token:     verificationToken,
				})
			},
		},
		Verify: flows.VerifyDeps{
			ParseVerification: func(tokenStr string) (*flows.TokenClaims, error) {
				claims, err := e.issuer.Parse(tokenStr, token.KindVerifyEmail)
				if err != nil {
					return nil, err
				}
				return tokenClaims(claims), nil
			},
			IsExpired:  isTokenExpired,
			FindByID:   findByID,
			IsNotFound: isAccountNotFound,
			MarkVerified: func(ctx context.Context, accountID string) (*flows.AccountRecord, error) {
				account, err := e.accounts.FindByID(ctx, accountID)
				if err != nil {
					return nil, err
				}
				account.EmailVerified = true
				if account.Status == StatusPending {
					account.Status = StatusActive
				}
				account.SecurityStamp = uuid.NewString()
				account.UpdatedAt = e.now()
				if err := e.accounts.Save(ctx, account); err != nil {
					return nil, err
				}
				return accountRecord(account), nil
			},
		},
		Login: flows.LoginDeps{
			FindByEmail:    findByEmail,
			IsNotFound:     isAccountNotFound,
			GateError:      e.gateError,
			VerifyPassword: e.hasher.Verify,
			RehashIfNeeded: func(ctx context.Context, acct *flows.AccountRecord, plaintext string) {
				stale, err := e.hasher.NeedsRehash(acct.PasswordHash)
				if err != nil || !stale {
					return
				}
				newHash, err := e.hasher.Hash(plaintext)
				if err != nil {
					return
				}
				account, err := e.accounts.FindByID(ctx, acct.ID)
				if err != nil {
					return
				}
				account.PasswordHash = newHash
				account.UpdatedAt = e.now()
				_ = e.accounts.Save(ctx, account)
			},
			IssueAccess: issueAccess,
			IssueRefresh: func(ctx context.Context, accountID string) (string, time.Time, error) {
				raw, rec, err := e.refresh.Issue(ctx, accountID, refresh.Metadata{
					IP:          clientIPFromContext(ctx),
					UserAgent:   userAgentFromContext(ctx),
					Fingerprint: fingerprintFromContext(ctx),
				})
				if err != nil {
					return "", time.Time{}, err
				}
				return raw, rec.ExpiresAt, nil
			},
		},
		Refresh: flows.RefreshDeps{
			Rotate: func(ctx context.Context, raw string) (string, string, time.Time, error) {
				newRaw, rec, err := e.refresh.Rotate(ctx, raw, refresh.Metadata{
					IP:          clientIPFromContext(ctx),
					UserAgent:   userAgentFromContext(ctx),
					Fingerprint: fingerprintFromContext(ctx),
				})
				if err != nil {
					if rec != nil {
						// reuse path carries the presented record
						return "", rec.AccountID, time.Time{}, err
					}
					return "", "", time.Time{}, err
				}
				return newRaw, rec.AccountID, rec.ExpiresAt, nil
			},
			IsTokenNotFound: func(err error) bool { return errors.Is(err, refresh.ErrNotFound) },
			IsTokenExpired:  func(err error) bool { return errors.Is(err, refresh.ErrExpired) },
			IsReuse:         func(err error) bool { return errors.Is(err, refresh.ErrReuseDetected) },
			FindByID:        findByID,
			IsNotFound:      isAccountNotFound,
			GateError:       e.gateError,
			IssueAccess:     issueAccess,
		},
		Logout: flows.LogoutDeps{
			ParseForLogout: func(tokenStr string) (*flows.TokenClaims, error) {
				claims, err := e.issuer.ParseAny(tokenStr)
				if err != nil {
					return nil, err
				}
				return tokenClaims(claims), nil
			},
			Now:          func() time.Time { return e.now() },
			BlacklistAdd: e.blacklist.Add,
			RevokeRefresh: func(ctx context.Context, raw string) (bool, error) {
				return e.refresh.Revoke(ctx, raw)
			},
		},
		Forgot: flows.ForgotDeps{
			FindByEmail: findByEmail,
			IsNotFound:  isAccountNotFound,
			IssueReset: func(accountID, stamp string) (string, error) {
				t, _, err := e.issuer.IssueReset(accountID, stamp)
				return t, err
			},
			SendReset: func(accountID, email, resetToken string) {
				e.notify.Enqueue(notify.Message{
					Kind:      notify.KindResetPassword,
					AccountID: accountID,
					Email:     email,
					Token:     resetToken,
				})
			},
		},
		Reset: flows.ResetDeps{
			ParseReset: func(tokenStr string) (*flows.TokenClaims, error) {
				claims, err := e.issuer.Parse(tokenStr, token.KindResetPassword)
				if err != nil {
					return nil, err
				}
				return tokenClaims(claims), nil
			},
			IsExpired:      isTokenExpired,
			FindByID:       findByID,
			IsNotFound:     isAccountNotFound,
			HashPassword:   e.hasher.Hash,
			IsWeakPassword: isWeakPassword,
			UpdatePassword: func(ctx context.Context, accountID, newHash string) (*flows.AccountRecord, error) {
				account, err := e.accounts.FindByID(ctx, accountID)
				if err != nil {
					return nil, err
				}
				account.PasswordHash = newHash
				account.SecurityStamp = uuid.NewString()
				account.UpdatedAt = e.now()
				if err := e.accounts.Save(ctx, account); err != nil {
					return nil, err
				}
				return accountRecord(account), nil
			},
		},
		Authenticate: flows.AuthenticateDeps{
			ParseAccess: func(tokenStr string) (*flows.TokenClaims, error) {
				claims, err := e.issuer.Parse(tokenStr, token.KindAccess)
				if err != nil {
					return nil, err
				}
				return tokenClaims(claims), nil
			},
			IsExpired:         isTokenExpired,
			BlacklistContains: e.blacklist.Contains,
			FindByID:          findByID,
			IsNotFound:        isAccountNotFound,
			GateError:         e.gateError,
			Permissions:       e.roles.EffectivePermissions,
		},
	})
}
