package store

import (
	"context"
	"sync"

	"touristid/internal/credential/models"
	"touristid/internal/sentinel"
)

// InMemoryStore keeps credentials keyed by user id then record id.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]map[string]models.StoredCredentialRecord
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[string]map[string]models.StoredCredentialRecord)}
}

func (s *InMemoryStore) Save(ctx context.Context, userID string, vc *models.VerifiableCredential, metadata models.Metadata) (string, error) {
	record, err := newRecord(ctx, userID, vc, metadata)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	byUser, ok := s.records[userID]
	if !ok {
		byUser = make(map[string]models.StoredCredentialRecord)
		s.records[userID] = byUser
	}
	if _, exists := byUser[record.ID]; exists {
		return "", sentinel.ErrAlreadyExists
	}
	byUser[record.ID] = *record
	return record.ID, nil
}

func (s *InMemoryStore) Get(_ context.Context, userID, recordID string) (*models.StoredCredentialRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[userID][recordID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	record.Credential = cloneCredential(record.Credential)
	return &record, nil
}
