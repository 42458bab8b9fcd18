// Package password hashes credentials with argon2id and encodes them in
// PHC string format.
package password

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	minMemoryKiB   uint32 = 8 * 1024
	minSaltLength  uint32 = 16
	minKeyLength   uint32 = 16
	algorithmID           = "argon2id"
	defaultMinPass        = 8
)

// ErrTooShort reports a plaintext password below the configured minimum.
var ErrTooShort = errors.New("password too short")

// Config carries argon2id cost parameters. Memory is in KiB.
type Config struct {
	Memory      uint32
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MinLength is the minimum plaintext length in bytes. Zero means 8.
	MinLength int
}

// Hasher hashes and verifies passwords. Safe for concurrent use.
type Hasher struct {
	config Config
}

// New validates cfg against the argon2id parameter floors and returns a
// hasher.
func New(cfg Config) (*Hasher, error) {
	if cfg.Memory < minMemoryKiB {
		return nil, errors.New("memory must be >= 8192 KiB")
	}
	if cfg.Time < 1 {
		return nil, errors.New("time cost must be >= 1")
	}
	if cfg.Parallelism < 1 {
		return nil, errors.New("parallelism must be >= 1")
	}
	if cfg.SaltLength < minSaltLength {
		return nil, errors.New("salt length must be >= 16")
	}
	if cfg.KeyLength < minKeyLength {
		return nil, errors.New("key length must be >= 16")
	}
	if cfg.MinLength == 0 {
		cfg.MinLength = defaultMinPass
	}
	if cfg.MinLength < 1 {
		return nil, errors.New("minimum password length must be >= 1")
	}

	return &Hasher{config: cfg}, nil
}

// Hash derives a fresh salt and returns the PHC-encoded digest. The
// plaintext is used byte for byte, without Unicode normalization.
func (h *Hasher) Hash(plaintext string) (string, error) {
	if len(plaintext) < h.config.MinLength {
		return "", ErrTooShort
	}

	salt := make([]byte, h.config.SaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}

	digest := argon2.IDKey(
		[]byte(plaintext),
		salt,
		h.config.Time,
		h.config.Memory,
		h.config.Parallelism,
		h.config.KeyLength,
	)

	return fmt.Sprintf(
		"$%s$v=%d$m=%d,t=%d,p=%d$%s$%s",
		algorithmID,
		argon2.Version,
		h.config.Memory,
		h.config.Time,
		h.config.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(digest),
	), nil
}

// Verify recomputes the digest under the parameters embedded in encoded
// and compares in constant time. A parse failure is an error, not a
// mismatch.
func (h *Hasher) Verify(plaintext, encoded string) (bool, error) {
	memory, timeCost, parallelism, salt, digest, err := decode(encoded)
	if err != nil {
		return false, err
	}

	computed := argon2.IDKey(
		[]byte(plaintext),
		salt,
		timeCost,
		memory,
		parallelism,
		uint32(len(digest)),
	)

	return subtle.ConstantTimeCompare(computed, digest) == 1, nil
}

// NeedsRehash reports whether encoded was produced with weaker parameters
// than the hasher's current configuration. Callers rehash on the next
// successful verify.
func (h *Hasher) NeedsRehash(encoded string) (bool, error) {
	memory, timeCost, parallelism, _, digest, err := decode(encoded)
	if err != nil {
		return false, err
	}

	switch {
	case h.config.Memory > memory:
		return true, nil
	case h.config.Time > timeCost:
		return true, nil
	case h.config.Parallelism > parallelism:
		return true, nil
	case h.config.KeyLength != uint32(len(digest)):
		return true, nil
	}
	return false, nil
}

func decode(encoded string) (memory, timeCost uint32, parallelism uint8, salt, digest []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return 0, 0, 0, nil, nil, errors.New("invalid PHC format")
	}
	if parts[1] != algorithmID {
		return 0, 0, 0, nil, nil, errors.New("unsupported algorithm")
	}

	var version int
	if _, err = fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return 0, 0, 0, nil, nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return 0, 0, 0, nil, nil, errors.New("unsupported argon2 version")
	}

	if _, err = fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &timeCost, &parallelism); err != nil {
		return 0, 0, 0, nil, nil, errors.New("invalid parameter format")
	}

	salt, err = base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || uint32(len(salt)) < minSaltLength {
		return 0, 0, 0, nil, nil, errors.New("invalid salt")
	}

	digest, err = base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(digest) == 0 {
		return 0, 0, 0, nil, nil, errors.New("invalid digest")
	}

	return memory, timeCost, parallelism, salt, digest, nil
}
