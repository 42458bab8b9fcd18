// Package middleware exposes HTTP adapters for authcore.Engine access
// validation.
//
// # Guards
//
//   - [Guard] — validates the bearer token and injects the [authcore.Principal].
//   - [RequirePermission] — Guard plus a permission check on the resolved principal.
//
// Each guard reads the Authorization header, records the caller's address and
// user agent on the request context, calls Engine.Authenticate, and injects the
// resolved principal for downstream handlers.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into Engine calls. It does NOT
// implement authentication logic itself. Every rejection renders as the same
// 401 so the response leaks nothing about why a token was refused.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Access Redis (Engine handles I/O).
//   - Distinguish rejection reasons in the response body or status code.
package middleware
