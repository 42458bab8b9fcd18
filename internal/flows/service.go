package flows

import "context"

// Service is the centralized flow runner built once by the root engine.
type Service struct {
	deps Deps
}

// New returns a flow service with immutable dependency wiring.
func New(deps Deps) Service {
	return Service{deps: deps}
}

// Initialized reports whether the service has been wired with flow deps.
func (s Service) Initialized() bool {
	return s.deps.Authenticate.ParseAccess != nil
}

func (s Service) Register(ctx context.Context, req RegisterRequest) RegisterResult {
	return RunRegister(ctx, req, s.deps.Register)
}

func (s Service) VerifyEmail(ctx context.Context, tokenStr string) VerifyResult {
	return RunVerifyEmail(ctx, tokenStr, s.deps.Verify)
}

func (s Service) Login(ctx context.Context, email, password string) LoginResult {
	return RunLogin(ctx, email, password, s.deps.Login)
}

func (s Service) Refresh(ctx context.Context, raw string) RefreshResult {
	return RunRefresh(ctx, raw, s.deps.Refresh)
}

func (s Service) Logout(ctx context.Context, accessToken, refreshRaw string) LogoutResult {
	return RunLogout(ctx, accessToken, refreshRaw, s.deps.Logout)
}

func (s Service) ForgotPassword(ctx context.Context, email string) ForgotResult {
	return RunForgotPassword(ctx, email, s.deps.Forgot)
}

func (s Service) ResetPassword(ctx context.Context, tokenStr, newPassword string) ResetResult {
	return RunResetPassword(ctx, tokenStr, newPassword, s.deps.Reset)
}

func (s Service) Authenticate(ctx context.Context, tokenStr string) AuthenticateResult {
	return RunAuthenticate(ctx, tokenStr, s.deps.Authenticate)
}
