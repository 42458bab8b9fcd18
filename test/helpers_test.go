//go:build integration
// +build integration

package test

import (
	"testing"
	"time"

	"github.com/arnabpal2022/authcore/refresh"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newIntegrationStore(t *testing.T) (*refresh.RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	store, err := refresh.NewRedisStore(rdb, "ac")
	if err != nil {
		t.Fatalf("NewRedisStore failed: %v", err)
	}
	return store, mr
}

func makeRecord(id, accountID, familyID, hash string) *refresh.Record {
	now := time.Now()
	return &refresh.Record{
		ID:        id,
		AccountID: accountID,
		FamilyID:  familyID,
		Hash:      hash,
		IssuedAt:  now,
		ExpiresAt: now.Add(time.Hour),
	}
}
