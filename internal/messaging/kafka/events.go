package kafka

import (
	"encoding/json"
	"time"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

// TopicOrderEvents — topic по умолчанию для событий заказов.
const TopicOrderEvents = "marketplace.order.events"

const dlqSuffix = ".dlq"

// DLQTopic возвращает topic для сообщений, исчерпавших попытки публикации в topic.
func DLQTopic(topic string) string {
	return topic + dlqSuffix
}

// Kafka headers, дублирующие метаданные outbox-сообщения.
const (
	HeaderMessageID     = "x-message-id"
	HeaderEventType     = "x-event-type"
	HeaderAggregateType = "x-aggregate-type"
)

// Envelope — формат сообщения в topic: метаданные outbox плюс исходный payload.
type Envelope struct {
	ID            string          `json:"id"`
	AggregateType string          `json:"aggregate_type"`
	AggregateID   string          `json:"aggregate_id"`
	EventType     string          `json:"event_type"`
	Payload       json.RawMessage `json:"payload"`
	PublishedAt   time.Time       `json:"published_at"`
}

// NewEnvelope упаковывает outbox-сообщение; пустой payload кодируется как null.
func NewEnvelope(msg domain.OutboxMessage, publishedAt time.Time) Envelope {
	payload := json.RawMessage(msg.Payload)
	if len(payload) == 0 {
		payload = json.RawMessage("null")
	}
	return Envelope{
		ID:            msg.ID,
		AggregateType: msg.AggregateType,
		AggregateID:   msg.AggregateID,
		EventType:     msg.EventType,
		Payload:       payload,
		PublishedAt:   publishedAt.UTC(),
	}
}
