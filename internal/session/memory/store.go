package memory

import (
	"context"
	"sync"
	"time"

	"github.com/mcoot/agame/internal/dependencies/clock"
	"github.com/mcoot/agame/internal/model"
	"github.com/mcoot/agame/internal/session"
)

type entry struct {
	data      session.Data
	expiresAt time.Time
}

// Store is an in-memory session store with lazy expiry
type Store struct {
	clock clock.Clock

	mu      sync.RWMutex
	entries map[string]entry
}

// Ensure Store implements the interface
var _ session.Store = (*Store)(nil)

// New creates a new in-memory session store
func New(clk clock.Clock) *Store {
	return &Store{
		clock:   clk,
		entries: make(map[string]entry),
	}
}

func (s *Store) Load(ctx context.Context, key string) (*session.Data, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return nil, model.ErrSessionNotFound
	}

	if !s.clock.Now().Before(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, model.ErrSessionNotFound
	}

	data := e.data
	return &data, nil
}

func (s *Store) Save(ctx context.Context, key string, data *session.Data, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry{
		data:      *data,
		expiresAt: s.clock.Now().Add(ttl),
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// CleanExpired removes expired entries (call periodically)
func (s *Store) CleanExpired() {
	now := s.clock.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, key)
		}
	}
}

// Len returns the number of stored entries, expired or not
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
