//go:build integration

package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"touristid/internal/issuance/models"
	"touristid/internal/sentinel"
	"touristid/pkg/testutil/containers"
)

type RedisTrackerSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *RedisStore
}

func TestRedisTrackerSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisTrackerSuite))
}

func (s *RedisTrackerSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = NewRedis(s.redis.Client, time.Hour)
}

func (s *RedisTrackerSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisTrackerSuite) TestRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	iss := sampleIssuance(now)
	iss.RecordID = "vc_1_abc"
	iss.Fail(models.StepRenderDocument, errors.New("render failed"), now.Add(time.Second))

	s.Require().NoError(s.store.Save(ctx, iss))

	got, err := s.store.Get(ctx, iss.ID)
	s.Require().NoError(err)
	s.Equal(iss.UserID, got.UserID)
	s.Equal(iss.RecordID, got.RecordID)
	s.Equal(models.StateFailed, got.State)
	s.Equal(models.StepRenderDocument, got.FailedStep)
	s.Len(got.Steps, 3)
	s.True(iss.CreatedAt.Equal(got.CreatedAt))
}

func (s *RedisTrackerSuite) TestTTLApplied() {
	ctx := context.Background()
	iss := sampleIssuance(time.Now())
	s.Require().NoError(s.store.Save(ctx, iss))

	ttl, err := s.redis.Client.TTL(ctx, keyPrefix+iss.ID).Result()
	s.Require().NoError(err)
	s.Greater(ttl, 59*time.Minute)
	s.LessOrEqual(ttl, time.Hour)
}

func (s *RedisTrackerSuite) TestGetUnknown() {
	_, err := s.store.Get(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
