// Package authcore provides a token and session lifecycle engine: stateless JWT
// access tokens, rotating opaque refresh tokens with family-based breach
// detection, a revocation blacklist, security-stamp invalidation, and
// hierarchical role permissions.
//
// The package is designed for concurrent server workloads: Engine methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder], [Config], and
// value types (Account, Principal, TokenPair, MetricsSnapshot). Flow
// orchestration and audit dispatch live under internal/ and are never exported.
// Storage backends live in their own packages (refresh, blacklist, store/pg) so
// callers can swap them behind small interfaces.
//
// # What this package must NOT do
//
//   - Expose Redis clients, SQL handles, or record encodings in its public API.
//   - Perform I/O during construction (Builder is allocation-only until Build).
//   - Distinguish breach detection from ordinary token rejection in anything an
//     unauthenticated caller can observe.
//
// # Performance contract
//
// Authenticate is the hot path. It performs exactly one blacklist lookup and
// one account lookup per call; token parsing and permission resolution are
// in-memory. Refresh, Login, and the account flows are allowed one store
// round-trip per step.
package authcore
