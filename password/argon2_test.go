package password

import (
	"errors"
	"strings"
	"testing"
)

func testHasher(t *testing.T) *Hasher {
	t.Helper()
	h, err := New(Config{
		Memory:      8 * 1024,
		Time:        1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return h
}

func TestHashAndVerify(t *testing.T) {
	h := testHasher(t)

	encoded, err := h.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected encoding: %q", encoded)
	}

	ok, err := h.Verify("correct horse battery", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("correct password rejected")
	}

	ok, err = h.Verify("wrong password", encoded)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("wrong password accepted")
	}
}

func TestHashSaltsDiffer(t *testing.T) {
	h := testHasher(t)

	a, err := h.Hash("same password!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	b, err := h.Hash("same password!")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if a == b {
		t.Fatal("two hashes of the same password are identical")
	}
}

func TestHashRejectsShortPassword(t *testing.T) {
	h := testHasher(t)

	if _, err := h.Hash("short"); !errors.Is(err, ErrTooShort) {
		t.Fatalf("err = %v, want ErrTooShort", err)
	}
}

func TestVerifyRejectsMalformedEncoding(t *testing.T) {
	h := testHasher(t)

	for _, bad := range []string{"", "plaintext", "$argon2id$broken", "$bcrypt$v=19$m=8192,t=1,p=1$AAAA$BBBB"} {
		if _, err := h.Verify("whatever", bad); err == nil {
			t.Fatalf("Verify(%q) accepted malformed encoding", bad)
		}
	}
}

func TestNeedsRehash(t *testing.T) {
	weak := testHasher(t)

	encoded, err := weak.Hash("correct horse battery")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}

	strong, err := New(Config{
		Memory:      16 * 1024,
		Time:        2,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   16,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	need, err := strong.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash: %v", err)
	}
	if !need {
		t.Fatal("stronger config should require rehash")
	}

	need, err = weak.NeedsRehash(encoded)
	if err != nil {
		t.Fatalf("NeedsRehash: %v", err)
	}
	if need {
		t.Fatal("same config should not require rehash")
	}
}
