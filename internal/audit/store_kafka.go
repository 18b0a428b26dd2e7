package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"touristid/internal/platform/kafka/producer"
)

// MessageProducer is the subset of the Kafka producer used by KafkaStore.
type MessageProducer interface {
	Produce(ctx context.Context, msg *producer.Message) error
}

// KafkaStore publishes audit events to a Kafka topic keyed by user id, so
// all events for one user land on the same partition in order.
type KafkaStore struct {
	producer MessageProducer
	topic    string
}

func NewKafkaStore(p MessageProducer, topic string) *KafkaStore {
	return &KafkaStore{producer: p, topic: topic}
}

func (s *KafkaStore) Append(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal audit event: %w", err)
	}
	msg := &producer.Message{
		Topic: s.topic,
		Key:   []byte(event.UserID),
		Value: payload,
		Headers: map[string]string{
			"event_type": event.Action,
		},
	}
	if event.RequestID != "" {
		msg.Headers["request_id"] = event.RequestID
	}
	if err := s.producer.Produce(ctx, msg); err != nil {
		return fmt.Errorf("publish audit event: %w", err)
	}
	return nil
}
