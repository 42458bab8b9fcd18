package refresh

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	luaStatusNotFound int64 = 0
	luaStatusRevoked  int64 = 1
	luaStatusExpired  int64 = 2
	luaStatusRotated  int64 = 3
)

// Rotation is one script so the revoke of the presented record and the
// write of its successor are indivisible. The revoked flag lives at byte
// 2 and expires-at at bytes 11..18 of the record blob (1-indexed here).
const rotateScript = `
local function read_be64(s, i)
  local v = 0
  for off = 0, 7 do
    local b = string.byte(s, i + off)
    if not b then
      return nil
    end
    v = v * 256 + b
  end
  return v
end

local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if string.byte(data, 2) == 1 then
  return 1
end
local expires = read_be64(data, 11)
if not expires then
  return 1
end
if expires <= tonumber(ARGV[1]) then
  return 2
end

redis.call("SET", KEYS[1], string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3), "KEEPTTL")
redis.call("SET", KEYS[2], ARGV[2], "PX", ARGV[3])
redis.call("SADD", KEYS[3], ARGV[4])
redis.call("PEXPIRE", KEYS[3], ARGV[3])
redis.call("SADD", KEYS[4], ARGV[4])
redis.call("PEXPIRE", KEYS[4], ARGV[3])
return 3
`

const revokeScript = `
local data = redis.call("GET", KEYS[1])
if not data then
  return 0
end
if string.byte(data, 2) == 1 then
  return 1
end
redis.call("SET", KEYS[1], string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3), "KEEPTTL")
return 2
`

// revokeSetScript flips the revoked flag on every live record whose hash
// is a member of the set. Returns how many records changed state.
const revokeSetScript = `
local flipped = 0
local members = redis.call("SMEMBERS", KEYS[1])
for _, hash in ipairs(members) do
  local key = ARGV[1] .. hash
  local data = redis.call("GET", key)
  if data and string.byte(data, 2) == 0 then
    redis.call("SET", key, string.sub(data, 1, 1) .. string.char(1) .. string.sub(data, 3), "KEEPTTL")
    flipped = flipped + 1
  end
end
return flipped
`

var (
	rotateLua    = redis.NewScript(rotateScript)
	revokeLua    = redis.NewScript(revokeScript)
	revokeSetLua = redis.NewScript(revokeSetScript)
)

// RedisStore keeps refresh records in Redis. Records expire by key TTL;
// family and account sets index record hashes for bulk revocation.
type RedisStore struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisStore wires a store over client. prefix namespaces every key.
func NewRedisStore(client redis.UniversalClient, prefix string) (*RedisStore, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if prefix == "" {
		return nil, errors.New("key prefix must not be empty")
	}
	return &RedisStore{redis: client, prefix: prefix}, nil
}

func (s *RedisStore) tokenKey(hash string) string {
	return s.prefix + ":t:" + hash
}

func (s *RedisStore) tokenKeyPrefix() string {
	return s.prefix + ":t:"
}

func (s *RedisStore) familyKey(familyID string) string {
	return s.prefix + ":f:" + familyID
}

func (s *RedisStore) accountKey(accountID string) string {
	return s.prefix + ":a:" + accountID
}

// Save persists rec and indexes its hash in the family and account sets.
func (s *RedisStore) Save(ctx context.Context, rec *Record, ttl time.Duration) error {
	if ttl <= 0 {
		return errors.New("ttl must be > 0")
	}

	blob := encodeRecord(rec)

	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.tokenKey(rec.Hash), blob, ttl)
		pipe.SAdd(ctx, s.familyKey(rec.FamilyID), rec.Hash)
		pipe.PExpire(ctx, s.familyKey(rec.FamilyID), ttl)
		pipe.SAdd(ctx, s.accountKey(rec.AccountID), rec.Hash)
		pipe.PExpire(ctx, s.accountKey(rec.AccountID), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// FindByHash loads and decodes the record for hash.
func (s *RedisStore) FindByHash(ctx context.Context, hash string) (*Record, error) {
	data, err := s.redis.Get(ctx, s.tokenKey(hash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return rec, nil
}

// Rotate runs the atomic revoke-and-replace script.
func (s *RedisStore) Rotate(ctx context.Context, presentedHash string, successor *Record, ttl time.Duration) (RotateStatus, error) {
	blob := encodeRecord(successor)

	keys := []string{
		s.tokenKey(presentedHash),
		s.tokenKey(successor.Hash),
		s.familyKey(successor.FamilyID),
		s.accountKey(successor.AccountID),
	}
	args := []interface{}{
		time.Now().UnixMilli(),
		blob,
		ttl.Milliseconds(),
		successor.Hash,
	}

	status, err := rotateLua.Run(ctx, s.redis, keys, args...).Int64()
	if err != nil {
		return RotateNotFound, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	switch status {
	case luaStatusRotated:
		return RotateOK, nil
	case luaStatusRevoked:
		return RotateRevoked, nil
	case luaStatusExpired:
		return RotateExpired, nil
	default:
		return RotateNotFound, nil
	}
}

// RevokeByHash flips one record to revoked. Reports false for unknown and
// already-revoked records.
func (s *RedisStore) RevokeByHash(ctx context.Context, hash string) (bool, error) {
	status, err := revokeLua.Run(ctx, s.redis, []string{s.tokenKey(hash)}).Int64()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return status == 2, nil
}

// RevokeFamily revokes every live record in the family.
func (s *RedisStore) RevokeFamily(ctx context.Context, familyID string) (int, error) {
	return s.revokeSet(ctx, s.familyKey(familyID))
}

// RevokeAccount revokes every live record belonging to the account.
func (s *RedisStore) RevokeAccount(ctx context.Context, accountID string) (int, error) {
	return s.revokeSet(ctx, s.accountKey(accountID))
}

func (s *RedisStore) revokeSet(ctx context.Context, setKey string) (int, error) {
	count, err := revokeSetLua.Run(ctx, s.redis, []string{setKey}, s.tokenKeyPrefix()).Int64()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return int(count), nil
}
