package test

import (
	"context"
	"net/http"
	"testing"

	authcore "github.com/arnabpal2022/authcore"
	"github.com/arnabpal2022/authcore/middleware"
)

// This test intentionally guards public API compile-compat for consumers.
func TestPublicAPISurfaceCompile(t *testing.T) {
	_ = authcore.New

	var _ *authcore.Engine
	var _ authcore.Config
	var _ authcore.Account
	var _ authcore.RegisterRequest
	var _ *authcore.TokenPair
	var _ *authcore.Principal
	var _ authcore.AccountStore
	var _ authcore.FederatedIdentityStore
	var _ authcore.AuditSink

	var _ error = authcore.ErrValidation
	var _ error = authcore.ErrDuplicateAccount
	var _ error = authcore.ErrInvalidCredentials
	var _ error = authcore.ErrInvalidToken
	var _ error = authcore.ErrExpired
	var _ error = authcore.ErrSecurityBreach
	var _ error = authcore.ErrStampMismatch
	var _ error = authcore.ErrUnauthorized
	var _ error = authcore.ErrStoreUnavailable

	var _ func(*authcore.Engine) func(http.Handler) http.Handler = middleware.Guard
	var _ func(*authcore.Engine, string) func(http.Handler) http.Handler = middleware.RequirePermission

	var _ func(*authcore.Engine, context.Context, authcore.RegisterRequest) (*authcore.Account, error) = (*authcore.Engine).Register
	var _ func(*authcore.Engine, context.Context, string) error = (*authcore.Engine).VerifyEmail
	var _ func(*authcore.Engine, context.Context, string, string) (*authcore.TokenPair, error) = (*authcore.Engine).Login
	var _ func(*authcore.Engine, context.Context, string) (*authcore.TokenPair, error) = (*authcore.Engine).Refresh
	var _ func(*authcore.Engine, context.Context, string, string) error = (*authcore.Engine).Logout
	var _ func(*authcore.Engine, context.Context, string) error = (*authcore.Engine).ForgotPassword
	var _ func(*authcore.Engine, context.Context, string, string) error = (*authcore.Engine).ResetPassword
	var _ func(*authcore.Engine, context.Context, string) (*authcore.Principal, error) = (*authcore.Engine).Authenticate
}
