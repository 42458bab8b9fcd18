// Package refresh implements opaque rotating refresh tokens with
// family-based reuse detection. Raw tokens never touch storage; every
// store operation addresses records by SHA-256 hash.
package refresh

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"time"
)

const rawTokenSize = 32

// Record is the stored state of one refresh token. Tokens issued by
// rotation share the FamilyID of the token they replaced; a fresh login
// starts a new family.
type Record struct {
	ID          string
	AccountID   string
	FamilyID    string
	Hash        string
	Revoked     bool
	IssuedAt    time.Time
	ExpiresAt   time.Time
	IP          string
	UserAgent   string
	Fingerprint string
}

// Expired reports whether the record is past expiry at now.
func (r *Record) Expired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}

// NewRawToken returns a fresh opaque token: 32 random bytes, base64url
// without padding.
func NewRawToken() (string, error) {
	var buf [rawTokenSize]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf[:]), nil
}

// HashToken returns the hex SHA-256 of the raw token string. This is the
// only form a token takes in storage.
func HashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

/*
====================================
BINARY CODEC
====================================

Layout, version 1:

	[0]     version
	[1]     revoked flag
	[2:10]  issued-at, unix milliseconds, big endian
	[10:18] expires-at, unix milliseconds, big endian
	then length-prefixed strings (uint16 big endian):
	id, account id, family id, hash, ip, user agent, fingerprint

The revoked flag sits at a fixed offset so the Redis scripts can flip it
without decoding, and expires-at at a fixed offset so they can compare it.
*/

const (
	codecVersion      = 1
	headerSize        = 18
	revokedFlagOffset = 1
	expiresAtOffset   = 10

	// maxFieldBytes is the largest string the uint16 length prefix can
	// describe. IP, user agent, and fingerprint come straight from the
	// client; anything longer is clamped at encode time so the prefix
	// always matches the bytes written.
	maxFieldBytes = 1<<16 - 1
)

func clampField(s string) string {
	if len(s) > maxFieldBytes {
		return s[:maxFieldBytes]
	}
	return s
}

func encodeRecord(r *Record) []byte {
	strs := [...]string{r.ID, r.AccountID, r.FamilyID, r.Hash, r.IP, r.UserAgent, r.Fingerprint}
	for i, s := range strs {
		strs[i] = clampField(s)
	}

	size := headerSize
	for _, s := range strs {
		size += 2 + len(s)
	}

	buf := make([]byte, headerSize, size)
	buf[0] = codecVersion
	if r.Revoked {
		buf[revokedFlagOffset] = 1
	}
	binary.BigEndian.PutUint64(buf[2:10], uint64(r.IssuedAt.UnixMilli()))
	binary.BigEndian.PutUint64(buf[expiresAtOffset:18], uint64(r.ExpiresAt.UnixMilli()))

	for _, s := range strs {
		var l [2]byte
		binary.BigEndian.PutUint16(l[:], uint16(len(s)))
		buf = append(buf, l[:]...)
		buf = append(buf, s...)
	}

	return buf
}

func decodeRecord(data []byte) (*Record, error) {
	if len(data) < headerSize {
		return nil, errors.New("refresh record too short")
	}
	if data[0] != codecVersion {
		return nil, errors.New("unsupported refresh record version")
	}

	r := &Record{
		Revoked:   data[revokedFlagOffset] == 1,
		IssuedAt:  time.UnixMilli(int64(binary.BigEndian.Uint64(data[2:10]))),
		ExpiresAt: time.UnixMilli(int64(binary.BigEndian.Uint64(data[expiresAtOffset:18]))),
	}

	rest := data[headerSize:]
	fields := [...]*string{&r.ID, &r.AccountID, &r.FamilyID, &r.Hash, &r.IP, &r.UserAgent, &r.Fingerprint}
	for _, field := range fields {
		if len(rest) < 2 {
			return nil, errors.New("refresh record truncated")
		}
		n := int(binary.BigEndian.Uint16(rest[:2]))
		rest = rest[2:]
		if len(rest) < n {
			return nil, errors.New("refresh record truncated")
		}
		*field = string(rest[:n])
		rest = rest[n:]
	}
	if len(rest) != 0 {
		return nil, errors.New("refresh record has trailing bytes")
	}

	return r, nil
}
