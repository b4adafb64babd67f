package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// OutboxTopicPublisher публикует outbox-сообщения в заданный Kafka topic.
type OutboxTopicPublisher struct {
	producer *Producer
	topic    string
	now      func() time.Time
}

// NewOutboxPublisher создаёт Kafka-паблишер для transactional outbox.
func NewOutboxPublisher(producer *Producer, topic string) *OutboxTopicPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OutboxTopicPublisher{
		producer: producer,
		topic:    topic,
		now:      time.Now,
	}
}

// Publish отправляет сообщение с ключом по заказу, чтобы события одного заказа
// попадали в одну партицию.
func (p *OutboxTopicPublisher) Publish(ctx context.Context, event domain.OutboxMessage) error {
	if p == nil || p.producer == nil {
		return fmt.Errorf("kafka outbox publisher is not initialized")
	}

	key := event.AggregateID
	if key == "" {
		key = event.ID
	}

	value, err := json.Marshal(NewEnvelope(event, p.now()))
	if err != nil {
		return fmt.Errorf("marshal outbox envelope %s: %w", event.ID, err)
	}

	return p.producer.Publish(ctx, p.topic, key, value, map[string]string{
		HeaderMessageID:     event.ID,
		HeaderEventType:     event.EventType,
		HeaderAggregateType: event.AggregateType,
	})
}

var _ domain.OutboxPublisher = (*OutboxTopicPublisher)(nil)
