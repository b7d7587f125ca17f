package repository

import (
	"context"

	"MacroTilt/internal/domain/models"
	domrepo "MacroTilt/internal/domain/repository"
	pkgkafka "MacroTilt/pkg/kafka"
)

// KafkaPublisher publishes recommendations keyed by ticker.
type KafkaPublisher struct {
	producer *pkgkafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *pkgkafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) Publish(ctx context.Context, rec *models.Recommendation) error {
	return p.producer.Publish(ctx, p.topic, []byte(rec.Ticker), rec)
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ domrepo.RecommendationPublisher = (*KafkaPublisher)(nil)
