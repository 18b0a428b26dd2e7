package keystore

import (
	"context"
	"slices"
	"sync"

	"github.com/samber/lo"

	"touristid/internal/identity/models"
	"touristid/internal/sentinel"
)

// MemoryKeyStore keeps key material in process memory. Keys are lost on restart.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys map[string]models.StoredKey
}

func NewMemory() *MemoryKeyStore {
	return &MemoryKeyStore{keys: make(map[string]models.StoredKey)}
}

func (s *MemoryKeyStore) Put(_ context.Context, key models.StoredKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[key.DID]; ok {
		return ErrKeyExists
	}
	s.keys[key.DID] = cloneKey(key)
	return nil
}

func (s *MemoryKeyStore) Get(_ context.Context, did string) (*models.StoredKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	key, ok := s.keys[did]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := cloneKey(key)
	return &out, nil
}

// List returns the registered DIDs in lexical order.
func (s *MemoryKeyStore) List(_ context.Context) ([]string, error) {
	s.mu.RLock()
	dids := lo.Keys(s.keys)
	s.mu.RUnlock()
	slices.Sort(dids)
	return dids, nil
}

func cloneKey(k models.StoredKey) models.StoredKey {
	k.PublicKey = slices.Clone(k.PublicKey)
	k.PrivateKey = slices.Clone(k.PrivateKey)
	return k
}
