package usecase

import (
	"context"

	"IndexPulse/internal/domain/models"
	pkgkafka "IndexPulse/pkg/kafka"
)

// KafkaOutcomePublisher publishes evaluated predictions to the outcomes
// topic. One evaluation pass goes out as one batch; messages are keyed
// by index so one index stays on one partition.
type KafkaOutcomePublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaOutcomePublisher(producer *pkgkafka.Producer, topic string) *KafkaOutcomePublisher {
	return &KafkaOutcomePublisher{producer: producer, topic: topic}
}

func (p *KafkaOutcomePublisher) PublishOutcomes(ctx context.Context, entries []models.PredictionEntry) error {
	if len(entries) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(entries))
	for _, e := range entries {
		msgs = append(msgs, pkgkafka.Message{Key: []byte(e.IndexID), Value: e})
	}
	return p.producer.PublishBatch(ctx, p.topic, msgs)
}

var _ OutcomePublisher = (*KafkaOutcomePublisher)(nil)
