package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/marketplace/internal/domain"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	t.Parallel()

	publishedAt := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var envelope Envelope
		if err := json.Unmarshal(val, &envelope); err != nil {
			return err
		}
		if envelope.ID != "outbox-1" || envelope.EventType != domain.EventTypeOrderCreated {
			return errors.New("unexpected envelope metadata")
		}
		if string(envelope.Payload) != `{"order_id":"order-123"}` {
			return errors.New("unexpected payload " + string(envelope.Payload))
		}
		if !envelope.PublishedAt.Equal(publishedAt) {
			return errors.New("unexpected published_at")
		}
		return nil
	})

	producer := NewProducerFromSync(mockProducer, log.WithField("component", "kafka-outbox-publisher-test"))
	publisher := NewOutboxPublisher(producer, "")
	publisher.now = func() time.Time { return publishedAt }

	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "outbox-1",
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-123",
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{"order_id":"order-123"}`),
	})
	if err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishProducerError(t *testing.T) {
	t.Parallel()

	mockProducer := mocks.NewSyncProducer(t, nil)
	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	publisher := NewOutboxPublisher(NewProducerFromSync(mockProducer, nil), TopicOrderEvents)

	err := publisher.Publish(context.Background(), domain.OutboxMessage{
		ID:            "outbox-2",
		AggregateType: domain.AggregateTypeOrder,
		AggregateID:   "order-234",
		EventType:     domain.EventTypeOrderCreated,
		Payload:       []byte(`{}`),
	})
	if err == nil {
		t.Fatal("expected publish error, got nil")
	}

	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOutboxPublisher_PublishNilProducer(t *testing.T) {
	t.Parallel()

	publisher := NewOutboxPublisher(nil, TopicOrderEvents)
	if err := publisher.Publish(context.Background(), domain.OutboxMessage{ID: "outbox-3"}); err == nil {
		t.Fatal("expected error for nil producer")
	}
}

func TestNewEnvelope_EmptyPayload(t *testing.T) {
	t.Parallel()

	envelope := NewEnvelope(domain.OutboxMessage{ID: "outbox-4"}, time.Now())

	raw, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if decoded["payload"] != nil {
		t.Fatalf("expected null payload, got %v", decoded["payload"])
	}
}
