package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"touristid/internal/issuance/models"
	"touristid/internal/sentinel"
)

const keyPrefix = "touristid:issuance:"

// Hash fields.
const (
	fieldID         = "id"
	fieldUserID     = "userId"
	fieldRecordID   = "vcId"
	fieldState      = "state"
	fieldFailedStep = "failedStep"
	fieldError      = "error"
	fieldSteps      = "steps"
	fieldCreatedAt  = "createdAt"
	fieldUpdatedAt  = "updatedAt"
)

// RedisStore keeps one hash per issuance under touristid:issuance:<id>.
// Every save refreshes the TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedis(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) Save(ctx context.Context, issuance *models.Issuance) error {
	steps, err := json.Marshal(issuance.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	key := keyPrefix + issuance.ID
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, map[string]any{
			fieldID:         issuance.ID,
			fieldUserID:     issuance.UserID,
			fieldRecordID:   issuance.RecordID,
			fieldState:      string(issuance.State),
			fieldFailedStep: issuance.FailedStep,
			fieldError:      issuance.Error,
			fieldSteps:      string(steps),
			fieldCreatedAt:  issuance.CreatedAt.UTC().Format(time.RFC3339Nano),
			fieldUpdatedAt:  issuance.UpdatedAt.UTC().Format(time.RFC3339Nano),
		})
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save issuance: %w", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Issuance, error) {
	fields, err := s.client.HGetAll(ctx, keyPrefix+id).Result()
	if err != nil {
		return nil, fmt.Errorf("load issuance: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	return fromHash(fields)
}

func fromHash(fields map[string]string) (*models.Issuance, error) {
	issuance := &models.Issuance{
		ID:         fields[fieldID],
		UserID:     fields[fieldUserID],
		RecordID:   fields[fieldRecordID],
		State:      models.State(fields[fieldState]),
		FailedStep: fields[fieldFailedStep],
		Error:      fields[fieldError],
	}
	if raw := fields[fieldSteps]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &issuance.Steps); err != nil {
			return nil, fmt.Errorf("decode steps: %w", err)
		}
	}
	var err error
	if issuance.CreatedAt, err = parseTime(fields[fieldCreatedAt]); err != nil {
		return nil, err
	}
	if issuance.UpdatedAt, err = parseTime(fields[fieldUpdatedAt]); err != nil {
		return nil, err
	}
	return issuance, nil
}

func parseTime(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("decode timestamp: %w", err)
	}
	return t, nil
}
