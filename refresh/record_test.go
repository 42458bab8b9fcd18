package refresh

import (
	"strings"
	"testing"
	"time"
)

func sampleRecord() *Record {
	now := time.Now().Truncate(time.Millisecond)
	return &Record{
		ID:          "01J8ZACD4R5T6Y7U8I9O0P1Q2W",
		AccountID:   "acct-42",
		FamilyID:    "3f2b1a9c-0000-4000-8000-deadbeef0001",
		Hash:        HashToken("raw-token"),
		Revoked:     false,
		IssuedAt:    now,
		ExpiresAt:   now.Add(7 * 24 * time.Hour),
		IP:          "192.0.2.7",
		UserAgent:   "test-agent/1.0",
		Fingerprint: "fp-9c2d",
	}
}

func TestRecordCodecRoundTrip(t *testing.T) {
	want := sampleRecord()

	got, err := decodeRecord(encodeRecord(want))
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}

	if got.ID != want.ID || got.AccountID != want.AccountID || got.FamilyID != want.FamilyID {
		t.Fatalf("identity fields differ: %+v", got)
	}
	if got.Hash != want.Hash || got.IP != want.IP || got.UserAgent != want.UserAgent || got.Fingerprint != want.Fingerprint {
		t.Fatalf("string fields differ: %+v", got)
	}
	if got.Revoked != want.Revoked {
		t.Fatalf("revoked = %v", got.Revoked)
	}
	if !got.IssuedAt.Equal(want.IssuedAt) || !got.ExpiresAt.Equal(want.ExpiresAt) {
		t.Fatalf("timestamps differ: got %v/%v want %v/%v",
			got.IssuedAt, got.ExpiresAt, want.IssuedAt, want.ExpiresAt)
	}
}

func TestRecordCodecRevokedFlag(t *testing.T) {
	rec := sampleRecord()
	rec.Revoked = true

	blob := encodeRecord(rec)
	if blob[revokedFlagOffset] != 1 {
		t.Fatalf("revoked flag byte = %d", blob[revokedFlagOffset])
	}

	got, err := decodeRecord(blob)
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if !got.Revoked {
		t.Fatal("revoked flag lost in round trip")
	}

	// the scripts flip the flag in place without re-encoding
	blob[revokedFlagOffset] = 0
	got, err = decodeRecord(blob)
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if got.Revoked {
		t.Fatal("in-place flip not observed by decode")
	}
}

func TestDecodeRejectsBadInput(t *testing.T) {
	blob := encodeRecord(sampleRecord())

	cases := map[string][]byte{
		"empty":      {},
		"header cut": blob[:headerSize-1],
		"body cut":   blob[:len(blob)-3],
		"trailing":   append(append([]byte{}, blob...), 0xFF),
	}
	for name, data := range cases {
		if _, err := decodeRecord(data); err == nil {
			t.Fatalf("%s: decode accepted", name)
		}
	}

	versioned := append([]byte{}, blob...)
	versioned[0] = 99
	if _, err := decodeRecord(versioned); err == nil {
		t.Fatal("unknown version accepted")
	}
}

func TestEncodeClampsOversizedMetadata(t *testing.T) {
	rec := sampleRecord()
	rec.UserAgent = strings.Repeat("u", 70000)
	rec.Fingerprint = strings.Repeat("f", maxFieldBytes+1)

	got, err := decodeRecord(encodeRecord(rec))
	if err != nil {
		t.Fatalf("decodeRecord: %v", err)
	}
	if len(got.UserAgent) != maxFieldBytes {
		t.Fatalf("user agent length = %d, want %d", len(got.UserAgent), maxFieldBytes)
	}
	if got.UserAgent != rec.UserAgent[:maxFieldBytes] {
		t.Fatal("user agent not a prefix of the original")
	}
	if len(got.Fingerprint) != maxFieldBytes {
		t.Fatalf("fingerprint length = %d, want %d", len(got.Fingerprint), maxFieldBytes)
	}
	if got.ID != rec.ID || got.AccountID != rec.AccountID || got.Hash != rec.Hash {
		t.Fatalf("identity fields disturbed: %+v", got)
	}
}

func TestNewRawTokenUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 64)
	for i := 0; i < 64; i++ {
		raw, err := NewRawToken()
		if err != nil {
			t.Fatalf("NewRawToken: %v", err)
		}
		if _, dup := seen[raw]; dup {
			t.Fatal("duplicate raw token")
		}
		seen[raw] = struct{}{}
	}
}

func TestHashTokenIsStable(t *testing.T) {
	if HashToken("abc") != HashToken("abc") {
		t.Fatal("hash not deterministic")
	}
	if HashToken("abc") == HashToken("abd") {
		t.Fatal("distinct tokens collide")
	}
	if len(HashToken("abc")) != 64 {
		t.Fatalf("hash length = %d", len(HashToken("abc")))
	}
}

func FuzzDecodeRecord(f *testing.F) {
	f.Add(encodeRecord(sampleRecord()))
	f.Add([]byte{})
	f.Add([]byte{codecVersion})
	f.Add(make([]byte, headerSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		rec, err := decodeRecord(data)
		if err != nil {
			return
		}
		// whatever decodes must re-encode to the same bytes
		reencoded := encodeRecord(rec)
		if len(reencoded) != len(data) {
			t.Fatalf("re-encode length %d != %d", len(reencoded), len(data))
		}
		for i := range data {
			if reencoded[i] != data[i] {
				t.Fatalf("re-encode differs at byte %d", i)
			}
		}
	})
}
