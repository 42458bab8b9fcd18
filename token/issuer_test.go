package token

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"
	"time"
)

func testConfig() Config {
	return Config{
		Issuer:          "authcore-test",
		AccessTTL:       15 * time.Minute,
		VerificationTTL: 24 * time.Hour,
		ResetTTL:        30 * time.Minute,
		SigningMethod:   MethodHS256,
		SigningKey:      []byte("0123456789abcdef0123456789abcdef"),
	}
}

func newTestIssuer(t *testing.T) *Issuer {
	t.Helper()
	iss, err := NewIssuer(testConfig())
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	return iss
}

func TestIssueAndParseAccess(t *testing.T) {
	iss := newTestIssuer(t)

	signed, expiresAt, err := iss.IssueAccess("acct-1", "a@example.com", "stamp-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expiry not in the future: %v", expiresAt)
	}

	claims, err := iss.Parse(signed, KindAccess)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.AccountID() != "acct-1" {
		t.Fatalf("subject = %q, want acct-1", claims.AccountID())
	}
	if claims.Email != "a@example.com" {
		t.Fatalf("email = %q", claims.Email)
	}
	if claims.Stamp != "stamp-1" {
		t.Fatalf("stamp = %q", claims.Stamp)
	}
	if claims.Kind() != KindAccess {
		t.Fatalf("kind = %q", claims.Kind())
	}
}

func TestKindsAreNotInterchangeable(t *testing.T) {
	iss := newTestIssuer(t)

	access, _, err := iss.IssueAccess("acct-1", "a@example.com", "stamp-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}
	verify, _, err := iss.IssueVerification("acct-1", "a@example.com")
	if err != nil {
		t.Fatalf("IssueVerification: %v", err)
	}
	reset, _, err := iss.IssueReset("acct-1", "stamp-1")
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}

	cases := []struct {
		token  string
		expect Kind
	}{
		{access, KindVerifyEmail},
		{access, KindResetPassword},
		{verify, KindAccess},
		{verify, KindResetPassword},
		{reset, KindAccess},
		{reset, KindVerifyEmail},
	}
	for _, tc := range cases {
		if _, err := iss.Parse(tc.token, tc.expect); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Parse(%q as %s) err = %v, want ErrInvalid", tc.token[:12], tc.expect, err)
		}
	}
}

func TestParseRejectsForeignSignature(t *testing.T) {
	iss := newTestIssuer(t)

	otherCfg := testConfig()
	otherCfg.SigningKey = []byte("ffffffffffffffffffffffffffffffff")
	other, err := NewIssuer(otherCfg)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	forged, _, err := other.IssueAccess("acct-1", "a@example.com", "stamp-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := iss.Parse(forged, KindAccess); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Parse of foreign token err = %v, want ErrInvalid", err)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	iss := newTestIssuer(t)

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		if _, err := iss.Parse(bad, KindAccess); !errors.Is(err, ErrInvalid) {
			t.Fatalf("Parse(%q) err = %v, want ErrInvalid", bad, err)
		}
	}
}

func TestParseExpiredIsDistinct(t *testing.T) {
	iss := newTestIssuer(t)

	signed, _, err := iss.IssueAccess("acct-1", "a@example.com", "stamp-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	iss.now = func() time.Time { return time.Now().Add(16 * time.Minute) }

	if _, err := iss.Parse(signed, KindAccess); !errors.Is(err, ErrExpired) {
		t.Fatalf("Parse of expired token err = %v, want ErrExpired", err)
	}
}

func TestExpiresAtSurvivesExpiry(t *testing.T) {
	iss := newTestIssuer(t)

	signed, wantExp, err := iss.IssueAccess("acct-1", "a@example.com", "stamp-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	iss.now = func() time.Time { return time.Now().Add(time.Hour) }

	got, err := iss.ExpiresAt(signed)
	if err != nil {
		t.Fatalf("ExpiresAt: %v", err)
	}
	if got.Unix() != wantExp.Unix() {
		t.Fatalf("ExpiresAt = %v, want %v", got, wantExp)
	}
}

func TestExpiresAtStillVerifiesSignature(t *testing.T) {
	iss := newTestIssuer(t)

	otherCfg := testConfig()
	otherCfg.SigningKey = []byte("ffffffffffffffffffffffffffffffff")
	other, err := NewIssuer(otherCfg)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	forged, _, err := other.IssueAccess("acct-1", "a@example.com", "stamp-1")
	if err != nil {
		t.Fatalf("IssueAccess: %v", err)
	}

	if _, err := iss.ExpiresAt(forged); !errors.Is(err, ErrInvalid) {
		t.Fatalf("ExpiresAt of foreign token err = %v, want ErrInvalid", err)
	}
}

func TestEd25519RoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	cfg := testConfig()
	cfg.SigningMethod = MethodEd25519
	cfg.SigningKey = priv
	cfg.VerifyKey = pub

	iss, err := NewIssuer(cfg)
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}

	signed, _, err := iss.IssueReset("acct-2", "stamp-9")
	if err != nil {
		t.Fatalf("IssueReset: %v", err)
	}
	claims, err := iss.Parse(signed, KindResetPassword)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.AccountID() != "acct-2" || claims.Stamp != "stamp-9" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestNewIssuerRejectsShortHSKey(t *testing.T) {
	cfg := testConfig()
	cfg.SigningKey = []byte("short")
	if _, err := NewIssuer(cfg); err == nil {
		t.Fatal("expected error for short hs256 key")
	}
}

func BenchmarkIssueAccess(b *testing.B) {
	iss, err := NewIssuer(testConfig())
	if err != nil {
		b.Fatalf("NewIssuer: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := iss.IssueAccess("acct-1", "a@example.com", "stamp-1"); err != nil {
			b.Fatalf("IssueAccess: %v", err)
		}
	}
}

func BenchmarkParseAccess(b *testing.B) {
	iss, err := NewIssuer(testConfig())
	if err != nil {
		b.Fatalf("NewIssuer: %v", err)
	}
	signed, _, err := iss.IssueAccess("acct-1", "a@example.com", "stamp-1")
	if err != nil {
		b.Fatalf("IssueAccess: %v", err)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := iss.Parse(signed, KindAccess); err != nil {
			b.Fatalf("Parse: %v", err)
		}
	}
}
