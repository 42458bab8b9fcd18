package refresh

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// memStore is a mutex-guarded in-memory Store with the same atomicity
// contract as the real backends.
type memStore struct {
	mu      sync.Mutex
	records map[string]*Record
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]*Record)}
}

func (s *memStore) Save(_ context.Context, rec *Record, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rec
	s.records[rec.Hash] = &cp
	return nil
}

func (s *memStore) FindByHash(_ context.Context, hash string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[hash]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (s *memStore) Rotate(_ context.Context, presentedHash string, successor *Record, _ time.Duration) (RotateStatus, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok := s.records[presentedHash]
	if !ok {
		return RotateNotFound, nil
	}
	if old.Revoked {
		return RotateRevoked, nil
	}
	if old.Expired(time.Now()) {
		return RotateExpired, nil
	}

	old.Revoked = true
	cp := *successor
	s.records[successor.Hash] = &cp
	return RotateOK, nil
}

func (s *memStore) RevokeByHash(_ context.Context, hash string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[hash]
	if !ok || rec.Revoked {
		return false, nil
	}
	rec.Revoked = true
	return true, nil
}

func (s *memStore) RevokeFamily(_ context.Context, familyID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.records {
		if rec.FamilyID == familyID && !rec.Revoked {
			rec.Revoked = true
			count++
		}
	}
	return count, nil
}

func (s *memStore) RevokeAccount(_ context.Context, accountID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, rec := range s.records {
		if rec.AccountID == accountID && !rec.Revoked {
			rec.Revoked = true
			count++
		}
	}
	return count, nil
}

func (s *memStore) familyState(familyID string) (live, revoked int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.FamilyID != familyID {
			continue
		}
		if rec.Revoked {
			revoked++
		} else {
			live++
		}
	}
	return live, revoked
}

func newTestManager(t *testing.T, store Store) *Manager {
	t.Helper()
	m, err := NewManager(store, Config{TTL: time.Hour, RetentionWindow: time.Hour})
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	return m
}

func TestIssueStoresHashedRecord(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	raw, rec, err := m.Issue(ctx, "acct-1", Metadata{IP: "192.0.2.1", UserAgent: "ua"})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec.Hash != HashToken(raw) {
		t.Fatal("stored hash does not match raw token")
	}
	if rec.FamilyID == "" || rec.ID == "" {
		t.Fatalf("missing identifiers: %+v", rec)
	}

	stored, err := store.FindByHash(ctx, rec.Hash)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if stored.Revoked {
		t.Fatal("fresh record is revoked")
	}
	if stored.IP != "192.0.2.1" || stored.UserAgent != "ua" {
		t.Fatalf("metadata lost: %+v", stored)
	}
}

func TestIssueStartsNewFamilies(t *testing.T) {
	m := newTestManager(t, newMemStore())
	ctx := context.Background()

	_, a, err := m.Issue(ctx, "acct-1", Metadata{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	_, b, err := m.Issue(ctx, "acct-1", Metadata{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if a.FamilyID == b.FamilyID {
		t.Fatal("independent logins share a family")
	}
}

func TestRotateHappyPath(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	raw, old, err := m.Issue(ctx, "acct-1", Metadata{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	newRaw, successor, err := m.Rotate(ctx, raw, Metadata{})
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if newRaw == raw {
		t.Fatal("rotation returned the same raw token")
	}
	if successor.FamilyID != old.FamilyID {
		t.Fatal("successor left the family")
	}

	oldStored, err := store.FindByHash(ctx, old.Hash)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if !oldStored.Revoked {
		t.Fatal("presented token not revoked after rotation")
	}

	newStored, err := store.FindByHash(ctx, successor.Hash)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if newStored.Revoked {
		t.Fatal("successor is revoked")
	}
}

func TestReuseRevokesWholeFamily(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	raw, rec, err := m.Issue(ctx, "acct-1", Metadata{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	// rotate twice legitimately, then replay the first token
	second, _, err := m.Rotate(ctx, raw, Metadata{})
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if _, _, err := m.Rotate(ctx, second, Metadata{}); err != nil {
		t.Fatalf("Rotate: %v", err)
	}

	_, replayed, err := m.Rotate(ctx, raw, Metadata{})
	if !errors.Is(err, ErrReuseDetected) {
		t.Fatalf("replay err = %v, want ErrReuseDetected", err)
	}
	if replayed == nil || replayed.AccountID != "acct-1" {
		t.Fatalf("breach record = %+v, want account acct-1", replayed)
	}
	if replayed.FamilyID != rec.FamilyID {
		t.Fatalf("breach family = %q, want %q", replayed.FamilyID, rec.FamilyID)
	}

	live, revoked := store.familyState(rec.FamilyID)
	if live != 0 {
		t.Fatalf("family has %d live records after breach", live)
	}
	if revoked != 3 {
		t.Fatalf("family revoked = %d, want 3", revoked)
	}

	// the still-active descendant must now be dead too
	if _, _, err := m.Rotate(ctx, second, Metadata{}); !errors.Is(err, ErrReuseDetected) {
		t.Fatalf("descendant err = %v, want ErrReuseDetected", err)
	}
}

func TestExpiredRotationHasNoSideEffects(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	raw, rec, err := m.Issue(ctx, "acct-1", Metadata{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, _, err := m.Rotate(ctx, raw, Metadata{}); !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}

	// expiry is not a breach: the record stays unrevoked and the family untouched
	stored, err := store.FindByHash(ctx, rec.Hash)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if stored.Revoked {
		t.Fatal("expired rotation revoked the record")
	}
}

func TestRotateUnknownToken(t *testing.T) {
	m := newTestManager(t, newMemStore())

	if _, _, err := m.Rotate(context.Background(), "never-issued", Metadata{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	m := newTestManager(t, newMemStore())
	ctx := context.Background()

	raw, _, err := m.Issue(ctx, "acct-1", Metadata{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	changed, err := m.Revoke(ctx, raw)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if !changed {
		t.Fatal("first revoke reported no change")
	}

	changed, err = m.Revoke(ctx, raw)
	if err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if changed {
		t.Fatal("second revoke reported a change")
	}

	// revoking an unknown token is a quiet no-op as well
	if _, err := m.Revoke(ctx, "never-issued"); err != nil {
		t.Fatalf("Revoke unknown: %v", err)
	}
}

func TestRevokeAccountSpansFamilies(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	if _, _, err := m.Issue(ctx, "acct-1", Metadata{}); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := m.Issue(ctx, "acct-1", Metadata{}); err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, _, err := m.Issue(ctx, "acct-2", Metadata{}); err != nil {
		t.Fatalf("Issue: %v", err)
	}

	count, err := m.RevokeAccount(ctx, "acct-1")
	if err != nil {
		t.Fatalf("RevokeAccount: %v", err)
	}
	if count != 2 {
		t.Fatalf("revoked %d records, want 2", count)
	}
}

func TestConcurrentRotationSingleWinner(t *testing.T) {
	store := newMemStore()
	m := newTestManager(t, store)
	ctx := context.Background()

	raw, rec, err := m.Issue(ctx, "acct-1", Metadata{})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	const racers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	results := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, _, err := m.Rotate(ctx, raw, Metadata{})
			results[i] = err
		}(i)
	}

	close(start)
	wg.Wait()

	winners := 0
	for i, err := range results {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, ErrReuseDetected):
		default:
			t.Fatalf("racer %d unexpected err: %v", i, err)
		}
	}
	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}

	// breach handling: once any racer lost, the whole family is revoked,
	// winner's successor included
	live, _ := store.familyState(rec.FamilyID)
	if live != 0 {
		t.Fatalf("family has %d live records after race", live)
	}
}
