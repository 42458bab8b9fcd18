package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	authcore "github.com/arnabpal2022/authcore"
)

type principalContextKey struct{}

// PrincipalFromContext returns the principal a guard attached to the
// request context.
func PrincipalFromContext(ctx context.Context) (*authcore.Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(*authcore.Principal)
	return p, ok
}

// Guard validates the bearer token on every request and attaches the
// resolved principal to the request context. All rejections render as the
// same 401.
func Guard(engine *authcore.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				reject(w)
				return
			}

			bearer, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject(w)
				return
			}

			ctx := requestContext(r)
			principal, err := engine.Authenticate(ctx, bearer)
			if err != nil {
				reject(w)
				return
			}

			ctx = context.WithValue(ctx, principalContextKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func reject(w http.ResponseWriter) {
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

// requestContext stamps the caller's address and user agent onto the
// context so engine audit events carry them.
func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = authcore.WithClientIP(ctx, host)
	} else if r.RemoteAddr != "" {
		ctx = authcore.WithClientIP(ctx, r.RemoteAddr)
	}
	if ua := r.UserAgent(); ua != "" {
		ctx = authcore.WithUserAgent(ctx, ua)
	}
	return ctx
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
