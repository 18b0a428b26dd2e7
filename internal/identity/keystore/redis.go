package keystore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/redis/go-redis/v9"

	"touristid/internal/identity/models"
	"touristid/internal/sentinel"
)

const (
	keyPrefix = "touristid:keys:"
	keyIndex  = "touristid:keys"
)

// RedisKeyStore persists key material in Redis so identities survive restarts.
// Each DID is stored once under touristid:keys:<did> and indexed in a set.
type RedisKeyStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisKeyStore {
	return &RedisKeyStore{client: client}
}

func (s *RedisKeyStore) Put(ctx context.Context, key models.StoredKey) error {
	payload, err := json.Marshal(key)
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	ok, err := s.client.SetNX(ctx, keyPrefix+key.DID, payload, 0).Result()
	if err != nil {
		return fmt.Errorf("store key: %w", err)
	}
	if !ok {
		return ErrKeyExists
	}
	if err := s.client.SAdd(ctx, keyIndex, key.DID).Err(); err != nil {
		return fmt.Errorf("index key: %w", err)
	}
	return nil
}

func (s *RedisKeyStore) Get(ctx context.Context, did string) (*models.StoredKey, error) {
	payload, err := s.client.Get(ctx, keyPrefix+did).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load key: %w", err)
	}
	var key models.StoredKey
	if err := json.Unmarshal(payload, &key); err != nil {
		return nil, fmt.Errorf("decode key: %w", err)
	}
	return &key, nil
}

func (s *RedisKeyStore) List(ctx context.Context) ([]string, error) {
	dids, err := s.client.SMembers(ctx, keyIndex).Result()
	if err != nil {
		return nil, fmt.Errorf("list keys: %w", err)
	}
	slices.Sort(dids)
	return dids, nil
}
