package tracker

import (
	"context"
	"sync"
	"time"

	"touristid/internal/issuance/models"
	"touristid/internal/sentinel"
)

// InMemoryStore keeps issuance histories in process memory. Entries expire
// after the configured TTL: reads skip them and Sweep releases them.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

type memoryEntry struct {
	issuance  *models.Issuance
	expiresAt time.Time
}

func NewInMemory(ttl time.Duration) *InMemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InMemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *InMemoryStore) Save(_ context.Context, issuance *models.Issuance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[issuance.ID] = memoryEntry{
		issuance:  cloneIssuance(issuance),
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id string) (*models.Issuance, error) {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok || !s.now().Before(entry.expiresAt) {
		return nil, sentinel.ErrNotFound
	}
	return cloneIssuance(entry.issuance), nil
}

// Sweep removes expired entries and returns how many were dropped.
func (s *InMemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, entry := range s.entries {
		if !now.Before(entry.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
