package repository

import (
	"context"

	"marketpulse/pkg/kafka"
)

// SnapshotPublisher sends assembled snapshots to a fixed Kafka topic for
// downstream consumers.
type SnapshotPublisher struct {
	producer *kafka.Producer
	topic    string
}

// NewSnapshotPublisher binds a producer to the snapshot topic.
func NewSnapshotPublisher(producer *kafka.Producer, topic string) *SnapshotPublisher {
	return &SnapshotPublisher{producer: producer, topic: topic}
}

func (p *SnapshotPublisher) Publish(ctx context.Context, key []byte, value interface{}) error {
	return p.producer.Publish(ctx, p.topic, key, value)
}

func (p *SnapshotPublisher) Close() error {
	return p.producer.Close()
}
