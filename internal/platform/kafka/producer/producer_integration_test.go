//go:build integration

package producer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"touristid/internal/platform/config"
	"touristid/internal/platform/kafka/producer"
	"touristid/pkg/testutil/containers"
)

type ProducerIntegrationSuite struct {
	suite.Suite
	kafka    *containers.KafkaContainer
	producer *producer.Producer
}

func TestProducerIntegrationSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(ProducerIntegrationSuite))
}

func (s *ProducerIntegrationSuite) SetupSuite() {
	s.kafka = containers.GetManager().GetKafka(s.T())

	prod, err := producer.New(config.KafkaConfig{
		Brokers: s.kafka.Brokers,
		Acks:    "all",
		Retries: 3,
	}, nil)
	s.Require().NoError(err)
	s.producer = prod
}

func (s *ProducerIntegrationSuite) TearDownSuite() {
	if s.producer != nil {
		_ = s.producer.Close()
	}
}

func (s *ProducerIntegrationSuite) consume(topic, group, key string) *kgo.Record {
	ctx := context.Background()
	consumer, err := s.kafka.NewConsumer(ctx, group, topic)
	s.Require().NoError(err)
	defer consumer.Close()

	return s.kafka.WaitForMessage(ctx, consumer, 10*time.Second, func(r *kgo.Record) bool {
		return string(r.Key) == key
	})
}

// Produce only returns after the broker acknowledged the record.
func (s *ProducerIntegrationSuite) TestProduceDeliversMessageWithHeaders() {
	ctx := context.Background()
	topic := "touristid-produce-sync"
	s.Require().NoError(s.kafka.CreateTopic(ctx, topic, 1, 1))

	err := s.producer.Produce(ctx, &producer.Message{
		Topic: topic,
		Key:   []byte("user_1"),
		Value: []byte(`{"action":"vc_issued"}`),
		Headers: map[string]string{
			"event_type": "vc_issued",
			"request_id": "req-123",
		},
	})
	s.Require().NoError(err)

	record := s.consume(topic, "produce-sync-group", "user_1")
	s.Require().NotNil(record, "message should be consumable")
	s.JSONEq(`{"action":"vc_issued"}`, string(record.Value))

	headers := make(map[string]string)
	for _, h := range record.Headers {
		headers[h.Key] = string(h.Value)
	}
	s.Equal("vc_issued", headers["event_type"])
	s.Equal("req-123", headers["request_id"])
}

func (s *ProducerIntegrationSuite) TestProduceAsyncDeliversAfterClose() {
	topic := "touristid-produce-async"

	prod, err := producer.New(config.KafkaConfig{Brokers: s.kafka.Brokers, Acks: "1", Retries: 1}, nil)
	s.Require().NoError(err)

	s.Require().NoError(prod.ProduceAsync(&producer.Message{
		Topic: topic,
		Key:   []byte("async-key"),
		Value: []byte("async-value"),
	}))
	s.Require().NoError(prod.Close())

	s.ErrorIs(prod.ProduceAsync(&producer.Message{Topic: topic}), producer.ErrClosed)

	record := s.consume(topic, "produce-async-group", "async-key")
	s.Require().NotNil(record, "buffered message should be flushed on close")
	s.Equal("async-value", string(record.Value))
}

func (s *ProducerIntegrationSuite) TestHealth() {
	s.NoError(s.producer.Health(context.Background()))
}
