// Package blacklist tracks revoked access tokens until their natural
// expiry. Entries are keyed by token hash; a token never enters the list
// with a non-positive remaining lifetime.
package blacklist

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
)

// ErrUnavailable wraps storage backend failures. A failed lookup is never
// reported as "not blacklisted".
var ErrUnavailable = errors.New("blacklist store unavailable")

// Store is the revocation list. Add is idempotent and a no-op for ttl <= 0,
// since such a token is already unusable.
type Store interface {
	Add(ctx context.Context, token string, ttl time.Duration) error
	Contains(ctx context.Context, token string) (bool, error)
}

func hashKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
