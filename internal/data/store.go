package data

import (
	"context"
	"sync"
	"time"

	"rebalance-backtest/internal/backtest"

	"github.com/google/uuid"
)

// StoreEntry is one stored backtest run.
type StoreEntry struct {
	ID        string
	Result    *backtest.Result
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ResultStore keeps recent API results in memory so their ledgers can be
// fetched after the run. Entries expire after the TTL.
type ResultStore struct {
	mu    sync.RWMutex
	store map[string]*StoreEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultStore{
		store: make(map[string]*StoreEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores a result under a new random ID and returns the ID.
func (s *ResultStore) Put(res *backtest.Result) string {
	id := uuid.NewString()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.store[id] = &StoreEntry{
		ID:        id,
		Result:    res,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	return id
}

// Get retrieves a stored result if present and not expired.
func (s *ResultStore) Get(id string) (*backtest.Result, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.store[id]
	if !ok || s.now().After(entry.ExpiresAt) {
		return nil, false
	}
	return entry.Result, true
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// Sweep removes expired entries and reports how many were dropped.
func (s *ResultStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, entry := range s.store {
		if now.After(entry.ExpiresAt) {
			delete(s.store, id)
			n++
		}
	}
	return n
}

// Run sweeps expired entries every interval until ctx is done.
func (s *ResultStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}
