package middleware

import (
	"net/http"

	authcore "github.com/arnabpal2022/authcore"
)

// RequirePermission validates the bearer token and additionally requires
// the resolved principal to hold slug. A valid token without the
// permission renders a 403.
func RequirePermission(engine *authcore.Engine, slug string) func(http.Handler) http.Handler {
	guard := Guard(engine)
	return func(next http.Handler) http.Handler {
		return guard(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := PrincipalFromContext(r.Context())
			if !ok || !principal.HasPermission(slug) {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
