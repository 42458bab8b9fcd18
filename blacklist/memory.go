package blacklist

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local revocation list for tests and
// single-node deployments. A janitor goroutine sweeps expired entries;
// lookups also check expiry so a hit never outlives its token.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewMemoryStore starts the janitor with the given sweep interval.
func NewMemoryStore(sweepInterval time.Duration) *MemoryStore {
	if sweepInterval <= 0 {
		sweepInterval = time.Minute
	}

	s := &MemoryStore{
		entries: make(map[string]time.Time),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	go s.janitor(sweepInterval)
	return s
}

func (s *MemoryStore) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.done:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, expiry := range s.entries {
		if !expiry.After(now) {
			delete(s.entries, key)
		}
	}
}

// Add marks the token revoked for its remaining lifetime.
func (s *MemoryStore) Add(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[hashKey(token)] = s.now().Add(ttl)
	return nil
}

// Contains reports whether the token is currently revoked.
func (s *MemoryStore) Contains(_ context.Context, token string) (bool, error) {
	s.mu.RLock()
	expiry, ok := s.entries[hashKey(token)]
	s.mu.RUnlock()

	if !ok {
		return false, nil
	}
	if !expiry.After(s.now()) {
		// expired but not yet swept
		return false, nil
	}
	return true, nil
}

// Close stops the janitor. Idempotent.
func (s *MemoryStore) Close() {
	s.once.Do(func() {
		close(s.done)
	})
}
