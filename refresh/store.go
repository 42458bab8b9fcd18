package refresh

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound reports a hash with no stored record.
	ErrNotFound = errors.New("refresh token not found")
	// ErrExpired reports presentation of a token past expiry. No state
	// changes on this path.
	ErrExpired = errors.New("refresh token expired")
	// ErrReuseDetected reports presentation of an already-rotated or
	// revoked token. The whole family is revoked before this is returned.
	ErrReuseDetected = errors.New("refresh token reuse detected")
	// ErrUnavailable wraps storage backend failures.
	ErrUnavailable = errors.New("refresh store unavailable")
)

// RotateStatus is the outcome of an atomic store-level rotation.
type RotateStatus int

const (
	// RotateNotFound means no record existed for the presented hash.
	RotateNotFound RotateStatus = iota
	// RotateRevoked means the record was already revoked. In a rotation
	// race exactly one caller gets RotateOK; every other gets this.
	RotateRevoked
	// RotateExpired means the record exists but is past expiry. Nothing
	// was written.
	RotateExpired
	// RotateOK means the presented record was revoked and the successor
	// persisted, atomically.
	RotateOK
)

// Store persists refresh token records. Implementations must make Rotate
// atomic: marking the presented record revoked and saving the successor
// happen together or not at all, and at most one concurrent Rotate per
// record returns RotateOK.
//
// ttl arguments bound record visibility and already include the retention
// window that keeps expired records distinguishable from unknown ones.
type Store interface {
	Save(ctx context.Context, rec *Record, ttl time.Duration) error
	FindByHash(ctx context.Context, hash string) (*Record, error)
	Rotate(ctx context.Context, presentedHash string, successor *Record, ttl time.Duration) (RotateStatus, error)
	RevokeByHash(ctx context.Context, hash string) (bool, error)
	RevokeFamily(ctx context.Context, familyID string) (int, error)
	RevokeAccount(ctx context.Context, accountID string) (int, error)
}
